package sandboxapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/listview"
)

// Default envelope expressions. Most list endpoints answer either a bare
// array or {"data": [...], "totalItems": N}.
const (
	DefaultItemsExpr = "not_null(data, items, @)"
	DefaultTotalExpr = "not_null(totalItems, total)"
)

// SourceConfig binds a Source to one endpoint.
type SourceConfig struct {
	Path string
	// Items is a JMESPath expression selecting the record array.
	// Defaults to DefaultItemsExpr.
	Items string
	// Total is a JMESPath expression selecting the server total. Empty
	// means the endpoint reports no total.
	Total string
}

type searchFunc func(data any) (any, error)

// Source implements listview.Source[T] over one backend endpoint.
type Source[T any] struct {
	client *Client
	path   string
	items  searchFunc
	total  searchFunc
}

var _ listview.Source[struct{}] = (*Source[struct{}])(nil)

// NewSource compiles the envelope expressions of cfg.
func NewSource[T any](client *Client, cfg SourceConfig) (*Source[T], error) {
	if client == nil {
		return nil, fmt.Errorf("source %s: client is required", cfg.Path)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("source: path is required")
	}
	itemsExpr := strings.TrimSpace(cfg.Items)
	if itemsExpr == "" {
		itemsExpr = DefaultItemsExpr
	}
	items, err := compile(itemsExpr)
	if err != nil {
		return nil, fmt.Errorf("source %s: items expression: %w", cfg.Path, err)
	}
	s := &Source[T]{client: client, path: cfg.Path, items: items}
	if expr := strings.TrimSpace(cfg.Total); expr != "" {
		if s.total, err = compile(expr); err != nil {
			return nil, fmt.Errorf("source %s: total expression: %w", cfg.Path, err)
		}
	}
	return s, nil
}

func compile(expr string) (searchFunc, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiled.Search, nil
}

// Path returns the endpoint path.
func (s *Source[T]) Path() string { return s.path }

// FetchPage requests the endpoint with params and extracts the records and
// total from the response envelope.
func (s *Source[T]) FetchPage(ctx context.Context, params listview.QueryParams) (listview.ListResult[T], error) {
	body, err := s.client.Get(ctx, s.path, params.Values())
	if err != nil {
		return listview.ListResult[T]{}, err
	}
	return s.decode(body)
}

func (s *Source[T]) decode(body []byte) (listview.ListResult[T], error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "The sandbox backend returned malformed JSON.")
	}

	raw, err := s.items(doc)
	if err != nil {
		return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "Could not locate records in the response.")
	}
	items := []T{}
	switch raw.(type) {
	case nil:
	case []any:
		b, err := json.Marshal(raw)
		if err != nil {
			return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "Could not read records.")
		}
		if err := json.Unmarshal(b, &items); err != nil {
			return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "Records have an unexpected shape.")
		}
	default:
		return listview.ListResult[T]{}, apperrors.Wrapf(fmt.Errorf("records are %T", raw), apperrors.ErrCodeDecode,
			"Expected a list of records from %s.", s.path)
	}

	res := listview.ListResult[T]{Items: items}
	if s.total == nil {
		return res, nil
	}
	v, err := s.total(doc)
	if err != nil {
		return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "Could not locate the total in the response.")
	}
	total, ok, err := toTotal(v)
	if err != nil {
		return listview.ListResult[T]{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "The response total is not a count.")
	}
	if ok {
		res.ServerTotal = &total
	}
	return res, nil
}

// toTotal converts a decoded JSON value to a record count. A null value is
// reported as absent.
func toTotal(v any) (int, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, false, fmt.Errorf("invalid total %v", n)
		}
		return int(n), true, nil
	default:
		return 0, false, fmt.Errorf("total is %T", v)
	}
}
