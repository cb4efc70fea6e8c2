package screens

import (
	"time"

	"github.com/sandboxops/console/internal/domain/model"
	"github.com/sandboxops/console/internal/listview"
)

// Screen slugs.
const (
	SlugActiveTasks     = "active-tasks"
	SlugTaskHistory     = "task-history"
	SlugSignatures      = "signatures"
	SlugUsers           = "users"
	SlugVirtualMachines = "virtual-machines"
)

var activeTasks = definition[model.Task]{
	info: Info{
		Slug:     SlugActiveTasks,
		Title:    "Active Tasks",
		Mode:     listview.ServerPaginated,
		Endpoint: "/1/cape/tasks/list/active",
		Columns: []Column{
			{Key: "filename", Title: "File / URL"},
			{Key: "category", Title: "Type"},
			{Key: "status", Title: "Status"},
			{Key: "incidentType", Title: "Incident"},
			{Key: "createdTime", Title: "Submitted"},
		},
	},
	serverSide: true,
	dimensions: []dimensionDef[model.Task]{
		{Label: "Status", Dimension: listview.Dimension[model.Task]{
			Name: "status", Kind: listview.KindEnum, ServerSide: true, Lowercase: true,
			Options: []string{string(model.TaskStatusRunning), string(model.TaskStatusPending), string(model.TaskStatusAnalyzing)},
		}},
		{Label: "Type", Dimension: listview.Dimension[model.Task]{
			Name: "category", Kind: listview.KindEnum, ServerSide: true, Lowercase: true,
			Options: []string{string(model.TaskCategoryFile), string(model.TaskCategoryURL)},
		}},
		{Label: "Incident", Dimension: listview.Dimension[model.Task]{
			Name: "incidentType", Kind: listview.KindEnum, ServerSide: true, Lowercase: true,
			Options: []string{model.IncidentUnknown, model.IncidentMalware, model.IncidentRansomware, model.IncidentPhishing},
		}},
	},
	row: func(t model.Task) Row {
		return Row{ID: t.ID, Cells: []string{
			t.FileName,
			string(t.Category),
			string(t.Status),
			t.Incident(),
			t.CreatedAt.Display(),
		}}
	},
}

var taskHistory = definition[model.Task]{
	info: Info{
		Slug:     SlugTaskHistory,
		Title:    "Task History",
		Mode:     listview.ClientPaginated,
		Endpoint: "/1/cape/tasks/list/history",
		Columns: []Column{
			{Key: "filename", Title: "File / URL"},
			{Key: "sha256", Title: "SHA-256"},
			{Key: "category", Title: "Type"},
			{Key: "status", Title: "Status"},
			{Key: "incidentType", Title: "Incident"},
			{Key: "fileSize", Title: "Size"},
			{Key: "createdTime", Title: "Submitted"},
			{Key: "completedTime", Title: "Completed"},
		},
	},
	search: model.Task.SearchFields,
	dimensions: []dimensionDef[model.Task]{
		{Label: "Type", Dimension: listview.Dimension[model.Task]{
			Name: "category", Kind: listview.KindEnum,
			Options: []string{string(model.TaskCategoryFile), string(model.TaskCategoryURL)},
			Value:   func(t model.Task) string { return string(t.Category) },
		}},
		{Label: "Incident", Dimension: listview.Dimension[model.Task]{
			Name: "incidentType", Kind: listview.KindEnum,
			Options: []string{model.IncidentNone, model.IncidentMalware, model.IncidentRansomware, model.IncidentPhishing},
			Value:   model.Task.Incident,
		}},
		{Label: "Status", Dimension: listview.Dimension[model.Task]{
			Name: "status", Kind: listview.KindEnum,
			Options: []string{string(model.TaskStatusCompleted), string(model.TaskStatusFailed)},
			Value:   func(t model.Task) string { return string(t.Status) },
		}},
		{Label: "From", Dimension: listview.Dimension[model.Task]{
			Name: "dateFrom", Kind: listview.KindDateFrom, Time: taskCreated,
		}},
		{Label: "To", Dimension: listview.Dimension[model.Task]{
			Name: "dateTo", Kind: listview.KindDateTo, Time: taskCreated,
		}},
	},
	row: func(t model.Task) Row {
		return Row{ID: t.ID, Cells: []string{
			t.FileName,
			t.SHA256,
			string(t.Category),
			string(t.Status),
			t.Incident(),
			orDash(t.FileSize),
			t.CreatedAt.Display(),
			t.CompletedAt.Display(),
		}}
	},
}

func taskCreated(t model.Task) time.Time { return t.CreatedAt.Time }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
