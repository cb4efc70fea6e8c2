package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxops/console/internal/domain/model"
	"github.com/sandboxops/console/internal/listview"
)

type recordingSource[T any] struct {
	mu     sync.Mutex
	params []listview.QueryParams
	result listview.ListResult[T]
	err    error
}

func (s *recordingSource[T]) FetchPage(_ context.Context, p listview.QueryParams) (listview.ListResult[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, p)
	return s.result, s.err
}

func (s *recordingSource[T]) last() listview.QueryParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params[len(s.params)-1]
}

func history(n int) []model.Task {
	incidents := []string{model.IncidentNone, model.IncidentMalware, model.IncidentPhishing}
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	out := make([]model.Task, n)
	for i := range out {
		out[i] = model.Task{
			ID:           fmt.Sprintf("t-%02d", i),
			FileName:     fmt.Sprintf("sample-%02d.bin", i),
			SHA256:       fmt.Sprintf("%064x", i),
			Category:     model.TaskCategoryFile,
			Status:       model.TaskStatusCompleted,
			IncidentType: incidents[i%len(incidents)],
			CreatedAt:    model.Timestamp{Time: start.AddDate(0, 0, i)},
		}
	}
	return out
}

func allSources() Sources {
	return Sources{
		ActiveTasks:     &recordingSource[model.Task]{result: listview.Paged([]model.Task{}, 0)},
		TaskHistory:     &recordingSource[model.Task]{result: listview.Unbounded(history(30))},
		Signatures:      &recordingSource[model.Signature]{},
		Users:           &recordingSource[model.User]{},
		VirtualMachines: &recordingSource[model.VirtualMachine]{},
	}
}

func settle(t *testing.T, h Handle) Page {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := h.Settle(ctx)
	require.NoError(t, err)
	return p
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(allSources(), Options{})
	require.NoError(t, err)

	var slugs []string
	for _, info := range r.Screens() {
		slugs = append(slugs, info.Slug)
	}
	assert.Equal(t, []string{SlugActiveTasks, SlugTaskHistory, SlugSignatures, SlugUsers, SlugVirtualMachines}, slugs)
	assert.Len(t, Infos(), len(slugs))

	info, ok := r.Lookup(SlugActiveTasks)
	require.True(t, ok)
	assert.Equal(t, listview.ServerPaginated, info.Mode)
	assert.Equal(t, "/1/cape/tasks/list/active", info.Endpoint)

	_, ok = r.Lookup("dashboard")
	assert.False(t, ok)
}

func TestNewRegistry_SkipsMissingSources(t *testing.T) {
	r, err := NewRegistry(Sources{Users: &recordingSource[model.User]{}}, Options{})
	require.NoError(t, err)

	assert.Len(t, r.Screens(), 1)
	_, err = r.Open(SlugSignatures, nil)
	assert.True(t, errors.Is(err, ErrUnknownScreen))
}

func TestNewRegistry_RejectsPageSize(t *testing.T) {
	_, err := NewRegistry(allSources(), Options{PageSize: 25})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page size 25")
}

func TestDefinitionsValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{SlugActiveTasks, activeTasks.schema("").Validate(activeTasks.info.Mode)},
		{SlugTaskHistory, taskHistory.schema("").Validate(taskHistory.info.Mode)},
		{SlugSignatures, signatures.schema("").Validate(signatures.info.Mode)},
		{SlugUsers, users.schema("").Validate(users.info.Mode)},
		{SlugVirtualMachines, virtualMachines.schema("").Validate(virtualMachines.info.Mode)},
	} {
		assert.NoError(t, tc.err, tc.name)
	}
}

func TestActiveTasks_SendsFiltersToServer(t *testing.T) {
	src := allSources()
	active := src.ActiveTasks.(*recordingSource[model.Task])
	r, err := NewRegistry(src, Options{PageSize: 20, WildcardToken: "all"})
	require.NoError(t, err)

	h, err := r.Open(SlugActiveTasks, nil)
	require.NoError(t, err)
	h.Mount(context.Background())
	defer h.Close()
	settle(t, h)

	q := "invoice"
	h.Apply(listview.Changes{Search: &q, Dimensions: map[string]string{"status": "Analyzing"}})
	p := settle(t, h)

	params := active.last()
	assert.Equal(t, "analyzing", params.Get("status"))
	assert.Equal(t, "all", params.Get("category"))
	assert.Equal(t, "invoice", params.Get("q"))
	assert.Equal(t, "20", params.Get("limit"))
	assert.Equal(t, "1", params.Get("page"))

	assert.Equal(t, "server", p.Mode)
	assert.True(t, p.Searchable)
	assert.Equal(t, 1, p.ActiveFilters)
	assert.Equal(t, DefaultPageSizes, p.PageSizes)
}

func TestTaskHistory_FiltersLocally(t *testing.T) {
	src := allSources()
	hist := src.TaskHistory.(*recordingSource[model.Task])
	r, err := NewRegistry(src, Options{})
	require.NoError(t, err)

	h, err := r.Open(SlugTaskHistory, nil)
	require.NoError(t, err)
	h.Mount(context.Background())
	defer h.Close()

	p := settle(t, h)
	assert.Equal(t, 30, p.Pagination.TotalItems)
	assert.Equal(t, 3, p.Pagination.TotalPages)

	h.SetDimension("incidentType", "malware")
	h.SetDimension("dateFrom", "2024-05-10")
	p = settle(t, h)

	// Tasks 9..29 are dated on or after May 10; every third one is malware.
	assert.Equal(t, 7, p.Pagination.TotalItems)
	require.Len(t, p.Rows, 7)
	for _, row := range p.Rows {
		assert.Equal(t, model.IncidentMalware, row.Cells[4])
	}
	assert.Equal(t, "t-10", p.Rows[0].ID)
	assert.Equal(t, 2, p.ActiveFilters)
	assert.Zero(t, hist.last().Len(), "local filters are not sent")

	var incident Dimension
	for _, d := range p.Dimensions {
		if d.Name == "incidentType" {
			incident = d
		}
	}
	assert.Equal(t, "Malware", incident.Value)
	assert.True(t, incident.Active())
	assert.Equal(t, DimensionSelect, incident.Kind)
}

func TestPage_RendersError(t *testing.T) {
	src := allSources()
	src.Users = &recordingSource[model.User]{err: errors.New("connection refused")}
	r, err := NewRegistry(src, Options{})
	require.NoError(t, err)

	h, err := r.Open(SlugUsers, nil)
	require.NoError(t, err)
	h.Mount(context.Background())
	defer h.Close()

	p := settle(t, h)
	assert.Equal(t, listview.StatusError, p.Status)
	require.NotNil(t, p.Err)
	assert.Contains(t, p.Err.Message, "connection refused")
	assert.Empty(t, p.Rows)
	assert.Equal(t, 1, p.Pagination.TotalPages)
}

func TestRows(t *testing.T) {
	created := model.MustTimestamp("2024-05-01 10:00:00")
	sig := signatures.row(model.Signature{ID: "s1", Name: "Emotet loader", Type: model.SignatureTypeYARA, CreatedAt: created, Status: model.StatusActive})
	assert.Equal(t, []string{"Emotet loader", "YARA", "-", "2024-05-01 10:00:00", "-", "Active"}, sig.Cells)

	vm := virtualMachines.row(model.VirtualMachine{ID: "vm1", Name: "win10-x64", OSType: "Windows 10", Status: model.VMStatusStopped})
	assert.Equal(t, "vm1", vm.ID)
	assert.Equal(t, "-", vm.Cells[3])

	task := activeTasks.row(model.Task{ID: "t1", FileName: "https://example.test", Category: model.TaskCategoryURL, Status: model.TaskStatusPending})
	assert.Equal(t, model.IncidentUnknown, task.Cells[3])
	assert.Len(t, task.Cells, len(activeTasks.info.Columns))
	assert.Len(t, taskHistory.row(model.Task{}).Cells, len(taskHistory.info.Columns))
	assert.Len(t, users.row(model.User{}).Cells, len(users.info.Columns))
}
