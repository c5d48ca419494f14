// Package views renders the HTML pages and list fragments of the frontend.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"district-growth/cmd/web/alert"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/pagination"
)

//go:embed templates static
var assets embed.FS

// Static returns the embedded stylesheet and script.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page names.
const (
	PageHome           = "home"
	PageLogin          = "login"
	PageRegister       = "register"
	PageProfile        = "profile"
	PageSearch         = "search"
	PageAnalytics      = "analytics"
	PageFeedback       = "feedback"
	PageAdminLogin     = "admin_login"
	PageAdminDashboard = "admin_dashboard"
)

var pageNames = []string{
	PageHome, PageLogin, PageRegister, PageProfile, PageSearch,
	PageAnalytics, PageFeedback, PageAdminLogin, PageAdminDashboard,
}

// PageData is what every page template receives.
type PageData struct {
	Title string
	Alert *alert.Message
	// CSRF is the hidden form field, empty when protection is off.
	CSRF    template.HTML
	Admin   bool
	Content any
}

var funcs = template.FuncMap{
	"check": func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	},
	"barStyle": func(width float64) template.CSS {
		return template.CSS(fmt.Sprintf("width: %.1f%%", width))
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout").Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/partials/*.html",
			path.Join("templates/pages", name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("views: parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(assets, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse fragments: %w", err)
	}
	r.fragments = fragments
	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Page renders a full page. The output is buffered so a template failure never
// leaves a half-written response.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Fragment renders one partial template on its own.
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	return r.fragments.ExecuteTemplate(w, name, data)
}

// FragmentHTML renders a partial into a string for embedding in a page.
func (r *Renderer) FragmentHTML(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Fragment(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type tableData[T any] struct {
	Rows []T
	Nav  pagination.Widget
	CSRF template.HTML
}

// UsersTable returns the users list renderer. csrf is embedded in every row action form.
func (r *Renderer) UsersTable(csrf template.HTML) func(io.Writer, []dto.UserRow, pagination.Widget) error {
	return func(w io.Writer, rows []dto.UserRow, nav pagination.Widget) error {
		return r.Fragment(w, "users_table", tableData[dto.UserRow]{Rows: rows, Nav: nav, CSRF: csrf})
	}
}

func (r *Renderer) ProfilesTable(csrf template.HTML) func(io.Writer, []dto.ProfileRow, pagination.Widget) error {
	return func(w io.Writer, rows []dto.ProfileRow, nav pagination.Widget) error {
		return r.Fragment(w, "profiles_table", tableData[dto.ProfileRow]{Rows: rows, Nav: nav, CSRF: csrf})
	}
}

func (r *Renderer) FeedbackTable(csrf template.HTML) func(io.Writer, []dto.FeedbackRow, pagination.Widget) error {
	return func(w io.Writer, rows []dto.FeedbackRow, nav pagination.Widget) error {
		return r.Fragment(w, "feedback_table", tableData[dto.FeedbackRow]{Rows: rows, Nav: nav, CSRF: csrf})
	}
}

// SearchResults returns the renderer of public search result cards.
func (r *Renderer) SearchResults(csrf template.HTML) func(io.Writer, []dto.SearchCard, pagination.Widget) error {
	return func(w io.Writer, cards []dto.SearchCard, nav pagination.Widget) error {
		return r.Fragment(w, "search_results", tableData[dto.SearchCard]{Rows: cards, Nav: nav, CSRF: csrf})
	}
}
