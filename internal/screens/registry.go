package screens

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sandboxops/console/internal/domain/model"
	"github.com/sandboxops/console/internal/listview"
)

// ErrUnknownScreen is returned by Open for a slug that is not registered.
var ErrUnknownScreen = errors.New("unknown screen")

// DefaultPageSizes are the page sizes offered on every screen.
var DefaultPageSizes = []int{10, 20, 50, 100}

// Info is the static description of a screen.
type Info struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Mode     listview.Mode `json:"-"`
	Endpoint string        `json:"endpoint"`
	Columns  []Column      `json:"columns"`
}

// Sources holds the data source of every screen.
type Sources struct {
	ActiveTasks     listview.Source[model.Task]
	TaskHistory     listview.Source[model.Task]
	Signatures      listview.Source[model.Signature]
	Users           listview.Source[model.User]
	VirtualMachines listview.Source[model.VirtualMachine]
}

// Options configures the controllers created by a Registry.
type Options struct {
	Logger *slog.Logger
	// PageSize is the initial page size of every screen.
	PageSize  int
	PageSizes []int
	// WildcardToken is sent for server-side dimensions left at All.
	WildcardToken string
	Observer      func(listview.FetchEvent)
}

type opener func(urls listview.URLSync) (Handle, error)

// Registry creates screen handles by slug.
type Registry struct {
	infos   []Info
	openers map[string]opener
}

// Infos returns the static descriptions of every screen in menu order.
func Infos() []Info {
	return []Info{
		activeTasks.info,
		taskHistory.info,
		signatures.info,
		users.info,
		virtualMachines.info,
	}
}

// NewRegistry binds every screen to its source. A screen whose source is
// nil is left out.
func NewRegistry(src Sources, opts Options) (*Registry, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = DefaultPageSizes
	}
	if opts.PageSize == 0 {
		opts.PageSize = opts.PageSizes[0]
	}
	if !slices.Contains(opts.PageSizes, opts.PageSize) {
		return nil, fmt.Errorf("page size %d is not one of %v", opts.PageSize, opts.PageSizes)
	}

	r := &Registry{openers: make(map[string]opener)}
	var errs []error
	errs = append(errs,
		register(r, activeTasks, src.ActiveTasks, opts),
		register(r, taskHistory, src.TaskHistory, opts),
		register(r, signatures, src.Signatures, opts),
		register(r, users, src.Users, opts),
		register(r, virtualMachines, src.VirtualMachines, opts),
	)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T any](r *Registry, def definition[T], src listview.Source[T], opts Options) error {
	if src == nil {
		return nil
	}
	schema := def.schema(opts.WildcardToken)
	if err := schema.Validate(def.info.Mode); err != nil {
		return fmt.Errorf("screen %s: %w", def.info.Slug, err)
	}
	r.infos = append(r.infos, def.info)
	r.openers[def.info.Slug] = func(urls listview.URLSync) (Handle, error) {
		ctrl, err := listview.New(listview.Options[T]{
			Name:      def.info.Slug,
			Mode:      def.info.Mode,
			Schema:    schema,
			Source:    src,
			URLSync:   urls,
			PageSize:  opts.PageSize,
			PageSizes: opts.PageSizes,
			Logger:    opts.Logger,
			Observer:  opts.Observer,
		})
		if err != nil {
			return nil, fmt.Errorf("screen %s: %w", def.info.Slug, err)
		}
		return &screen[T]{def: def, ctrl: ctrl}, nil
	}
	return nil
}

// Screens returns the registered screens in menu order.
func (r *Registry) Screens() []Info { return slices.Clone(r.infos) }

// Lookup returns the description of slug.
func (r *Registry) Lookup(slug string) (Info, bool) {
	for _, info := range r.infos {
		if info.Slug == slug {
			return info, true
		}
	}
	return Info{}, false
}

// Open creates an unmounted handle for slug. urls may be nil.
func (r *Registry) Open(slug string, urls listview.URLSync) (Handle, error) {
	open, ok := r.openers[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, slug)
	}
	return open(urls)
}
