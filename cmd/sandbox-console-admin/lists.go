package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sandboxops/console/internal/adapters/urlsync"
	"github.com/sandboxops/console/internal/bootstrap"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/screens"
)

const defaultListTimeout = 30 * time.Second

type listOptions struct {
	Screen   string
	Search   string
	Filters  filterFlags
	Page     int
	PageSize int
	JSON     bool
	Timeout  time.Duration
}

// filterFlags collects repeated -filter name=value flags.
type filterFlags map[string]string

func (f filterFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (f filterFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("filter %q must be name=value", raw)
	}
	f[name] = strings.TrimSpace(value)
	return nil
}

func parseListFlags(args []string, stderr io.Writer) (listOptions, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := listOptions{Filters: filterFlags{}}
	var search string
	fs.StringVar(&search, "q", "", "Search text (screens with search support only)")
	fs.Var(opts.Filters, "filter", "Filter as name=value; repeatable")
	fs.IntVar(&opts.Page, "page", 1, "Page number (clamped to the last page)")
	fs.IntVar(&opts.PageSize, "page-size", 0, "Records per page (default from LISTS_PAGE_SIZE)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the page as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultListTimeout, "Maximum time to wait for the page")

	// Accept the screen before or after the flags.
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		opts.Screen = args[0]
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Screen == "" {
		opts.Screen = fs.Arg(0)
	}
	if opts.Screen == "" {
		return listOptions{}, errors.New("screen is required: list <screen> [flags]")
	}
	if opts.Page < 1 {
		return listOptions{}, fmt.Errorf("page must be positive, got %d", opts.Page)
	}
	if opts.PageSize < 0 {
		return listOptions{}, fmt.Errorf("page-size must not be negative, got %d", opts.PageSize)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultListTimeout
	}
	opts.Search = strings.TrimSpace(search)
	return opts, nil
}

func (o listOptions) changes() (listview.Changes, bool) {
	var ch listview.Changes
	if o.Search != "" {
		s := o.Search
		ch.Search = &s
	}
	if len(o.Filters) > 0 {
		ch.Dimensions = map[string]string(o.Filters)
	}
	ch.PageSize = o.PageSize
	return ch, ch.Search != nil || ch.Dimensions != nil || ch.PageSize > 0
}

func runScreens(cmdCtx *commandContext, _ []string) error {
	reg, err := bootstrap.BuildRegistry(bootstrap.RegistryDeps{
		Config: &cmdCtx.Config,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	return printScreens(cmdCtx.Out, reg)
}

func printScreens(out io.Writer, reg *screens.Registry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Screen\tTitle\tMode\tEndpoint\tFilters"); err != nil {
		return fmt.Errorf("write screens header: %w", err)
	}
	for _, info := range reg.Screens() {
		h, err := reg.Open(info.Slug, urlsync.NewHistory(0, urlsync.Replace))
		if err != nil {
			return err
		}
		page := h.Page()
		h.Close()

		filters := make([]string, 0, len(page.Dimensions)+1)
		if page.Searchable {
			filters = append(filters, "q")
		}
		for _, d := range page.Dimensions {
			filters = append(filters, d.Name)
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n",
			info.Slug, info.Title, info.Mode, info.Endpoint, strings.Join(filters, ","),
		); err != nil {
			return fmt.Errorf("write screen %q: %w", info.Slug, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush screens: %w", err)
	}
	return nil
}

func runList(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	reg, err := bootstrap.BuildRegistry(bootstrap.RegistryDeps{
		Config: &cmdCtx.Config,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	page, err := fetchPage(cmdCtx.Ctx, reg, opts)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(page); err != nil {
			return fmt.Errorf("encode page: %w", err)
		}
	} else if err := printPage(cmdCtx.Out, page); err != nil {
		return err
	}
	if page.Err != nil {
		return fmt.Errorf("load %s: %s", page.Screen, page.Err.Message)
	}
	return nil
}

// fetchPage mounts the screen, applies the requested filters and page, and
// waits for the list to settle.
func fetchPage(ctx context.Context, reg *screens.Registry, opts listOptions) (screens.Page, error) {
	h, err := reg.Open(opts.Screen, urlsync.NewHistory(0, urlsync.Replace))
	if err != nil {
		return screens.Page{}, err
	}
	defer h.Close()

	ch, hasChanges := opts.changes()
	if hasChanges {
		if err := h.Check(ch); err != nil {
			return screens.Page{}, fmt.Errorf("%s: %w", opts.Screen, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	h.Mount(ctx)
	if hasChanges {
		h.Apply(ch)
	}
	if opts.Page > 1 {
		// The first page has to settle so the page can be clamped to the
		// real total.
		if _, err := h.Settle(ctx); err != nil {
			return screens.Page{}, fmt.Errorf("wait for %s: %w", opts.Screen, err)
		}
		h.SetPage(opts.Page)
	}
	page, err := h.Settle(ctx)
	if err != nil {
		return screens.Page{}, fmt.Errorf("wait for %s: %w", opts.Screen, err)
	}
	return page, nil
}

func printPage(out io.Writer, page screens.Page) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	titles := make([]string, len(page.Columns))
	for i, c := range page.Columns {
		titles[i] = c.Title
	}
	if err := writeln(w, strings.Join(titles, "\t")); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, row := range page.Rows {
		if err := writeln(w, strings.Join(row.Cells, "\t")); err != nil {
			return fmt.Errorf("write row %q: %w", row.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	p := page.Pagination
	switch {
	case page.Err != nil:
		return nil
	case p.TotalItems == 0:
		return writeln(out, "\nNo records found.")
	}
	return writef(out, "\nShowing %d-%d of %d (page %d of %d)\n",
		p.StartIndex, p.EndIndex, p.TotalItems, p.PageNumber, p.TotalPages)
}
