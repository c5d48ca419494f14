// Package listview drives one paginated, filterable table from a remote source.
//
// A Controller runs the fetch -> render cycle for a single kind of entity. Every
// load is tagged with a token that increases per container; starting a newer load
// cancels the older one, and a response that is no longer the latest is dropped
// instead of overwriting newer content.
package listview

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/pagination"
	"district-growth/cmd/web/trace"
)

// Request is the query for one render cycle.
type Request struct {
	Page   int
	Search string
	Filter string
}

// Normalize clamps Page to at least 1 and trims the text fields.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	r.Search = strings.TrimSpace(r.Search)
	r.Filter = strings.TrimSpace(r.Filter)
	return r
}

// Result is one page of items. A newer Result replaces, never merges with, an older one.
type Result[T any] struct {
	Items      []T
	Pagination pagination.Info
}

// Fetcher issues the remote read for req.
type Fetcher[T any] func(ctx context.Context, req Request) (Result[T], error)

// Renderer writes the table and navigation for a non-empty page.
type Renderer[T any] func(w io.Writer, items []T, nav pagination.Widget) error

// Sink is the region a list is rendered into.
type Sink interface {
	Replace(content template.HTML)
}

// Buffer is an in-memory Sink holding the latest content.
type Buffer struct {
	mu      sync.Mutex
	content template.HTML
}

func (b *Buffer) Replace(content template.HTML) {
	b.mu.Lock()
	b.content = content
	b.mu.Unlock()
}

func (b *Buffer) Content() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Outcome is what a Load ended up showing.
type Outcome int

const (
	OutcomeRendered Outcome = iota
	OutcomeEmpty
	OutcomeFailed
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Placeholders are the static texts shown instead of a table.
type Placeholders struct {
	Loading string
	Empty   string
	Failed  string
}

// DefaultPlaceholders builds the usual texts for a plural noun such as "users".
func DefaultPlaceholders(noun string) Placeholders {
	return Placeholders{
		Loading: fmt.Sprintf("Loading %s...", noun),
		Empty:   fmt.Sprintf("No %s found.", noun),
		Failed:  fmt.Sprintf("Failed to load %s.", noun),
	}
}

var placeholderTmpl = template.Must(template.New("placeholder").Parse(`<div class="loading-placeholder">{{.}}</div>`))

// Placeholder renders text as an escaped placeholder block.
func Placeholder(text string) template.HTML {
	var buf bytes.Buffer
	if err := placeholderTmpl.Execute(&buf, text); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}

// Controller runs the load cycle for one entity kind.
type Controller[T any] struct {
	name         string
	fetch        Fetcher[T]
	render       Renderer[T]
	href         func(Request) string
	placeholders Placeholders
}

// New builds a Controller. href maps a request back to the URL that reloads this
// view, which is how navigation controls stay bound to the same view.
func New[T any](name string, fetch Fetcher[T], render Renderer[T], href func(Request) string, placeholders Placeholders) *Controller[T] {
	return &Controller[T]{
		name:         name,
		fetch:        fetch,
		render:       render,
		href:         href,
		placeholders: placeholders,
	}
}

// Name is the container key this controller loads into.
func (c *Controller[T]) Name() string {
	return c.name
}

// Load fetches req and replaces the sink's content. It never panics and never
// returns an error: every failure ends as placeholder content.
func (c *Controller[T]) Load(ctx context.Context, tracker *Tracker, req Request, sink Sink) Outcome {
	req = req.Normalize()

	loadCtx, token := tracker.begin(ctx, c.name)
	defer tracker.release(c.name, token)

	tracker.commit(c.name, token, func() {
		sink.Replace(Placeholder(c.placeholders.Loading))
	})

	content, outcome, err := c.cycle(loadCtx, req)
	if !tracker.commit(c.name, token, func() { sink.Replace(content) }) {
		outcome = OutcomeSuperseded
	}
	c.logOutcome(ctx, req, token, outcome, err)
	return outcome
}

// Settle loads req into a sink that only this call writes to, such as a page
// being rendered. Loads still in flight for the container are superseded as
// with Load, but a later load cannot supersede Settle: it always ends with a
// table or a terminal placeholder.
func (c *Controller[T]) Settle(ctx context.Context, tracker *Tracker, req Request, sink Sink) Outcome {
	req = req.Normalize()
	token := tracker.supersede(c.name)

	sink.Replace(Placeholder(c.placeholders.Loading))
	content, outcome, err := c.cycle(ctx, req)
	sink.Replace(content)

	c.logOutcome(ctx, req, token, outcome, err)
	return outcome
}

// cycle runs the fetch and turns its result into final content.
func (c *Controller[T]) cycle(ctx context.Context, req Request) (template.HTML, Outcome, error) {
	res, err := c.safeFetch(ctx, req)
	switch {
	case err != nil:
		return Placeholder(c.placeholders.Failed), OutcomeFailed, err
	case len(res.Items) == 0:
		return Placeholder(c.placeholders.Empty), OutcomeEmpty, nil
	}
	html, err := c.Render(req, res)
	if err != nil {
		return Placeholder(c.placeholders.Failed), OutcomeFailed, err
	}
	return html, OutcomeRendered, nil
}

func (c *Controller[T]) logOutcome(ctx context.Context, req Request, token uint64, outcome Outcome, err error) {
	fields := logger.Fields{
		"view":       c.name,
		"page":       req.Page,
		"token":      token,
		"outcome":    outcome.String(),
		"request_id": trace.RequestIDFromContext(ctx),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	if outcome == OutcomeFailed {
		logger.ErrorWithFields("list load failed", fields)
	} else {
		logger.DebugWithFields("list load finished", fields)
	}
}

// Render produces the table and pagination for res. It is a pure function of
// its inputs; callers normally go through Load.
func (c *Controller[T]) Render(req Request, res Result[T]) (template.HTML, error) {
	if len(res.Items) == 0 {
		return Placeholder(c.placeholders.Empty), nil
	}
	nav := pagination.Build(res.Pagination, func(page int) string {
		next := req
		next.Page = page
		return c.href(next)
	})
	var buf bytes.Buffer
	if err := c.render(&buf, res.Items, nav); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (c *Controller[T]) safeFetch(ctx context.Context, req Request) (res Result[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listview %s: fetch panicked: %v", c.name, r)
		}
	}()
	return c.fetch(ctx, req)
}
