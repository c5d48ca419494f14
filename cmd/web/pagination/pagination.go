// Package pagination turns an upstream page descriptor into a bounded set of
// navigation controls for a list view.
package pagination

import "fmt"

// windowRadius is how many page numbers are shown on each side of the current page.
const windowRadius = 2

// Info is the pagination block returned by every upstream list endpoint.
type Info struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	StartItem   int `json:"start_item"`
	EndItem     int `json:"end_item"`
	TotalItems  int `json:"total_items"`
}

// Empty reports whether the descriptor describes an empty result.
func (i Info) Empty() bool {
	return i.TotalPages == 0
}

// Link is one navigation control.
type Link struct {
	Label  string
	Page   int
	Href   string
	Active bool
}

// Widget is the rendered navigation block. The zero Widget renders nothing.
type Widget struct {
	Previous *Link
	Pages    []Link
	Next     *Link
	Caption  string
}

// Visible reports whether the widget has anything to show.
func (w Widget) Visible() bool {
	return len(w.Pages) > 0
}

// HrefFunc maps a page number to the URL that loads that page of the same view.
type HrefFunc func(page int) string

// Build computes the navigation widget for info. It returns the zero Widget when
// there is at most one page. The caption uses the item fields verbatim.
func Build(info Info, href HrefFunc) Widget {
	if info.TotalPages <= 1 {
		return Widget{}
	}
	if href == nil {
		href = func(int) string { return "" }
	}

	var w Widget
	if info.CurrentPage > 1 {
		p := info.CurrentPage - 1
		w.Previous = &Link{Label: "Previous", Page: p, Href: href(p)}
	}

	first, last := Window(info.CurrentPage, info.TotalPages)
	w.Pages = make([]Link, 0, last-first+1)
	for p := first; p <= last; p++ {
		w.Pages = append(w.Pages, Link{
			Label:  fmt.Sprint(p),
			Page:   p,
			Href:   href(p),
			Active: p == info.CurrentPage,
		})
	}

	if info.CurrentPage < info.TotalPages {
		p := info.CurrentPage + 1
		w.Next = &Link{Label: "Next", Page: p, Href: href(p)}
	}

	w.Caption = Caption(info)
	return w
}

// Window returns the inclusive range of page numbers shown around current.
func Window(current, total int) (first, last int) {
	first = max(1, current-windowRadius)
	last = min(total, current+windowRadius)
	return first, last
}

// Caption is the "Showing a-b of n items" line under the controls.
func Caption(info Info) string {
	return fmt.Sprintf("Showing %d-%d of %d items", info.StartItem, info.EndItem, info.TotalItems)
}

// Paginate slices an already-loaded result set into one page and describes it
// the same way the upstream list endpoints do. page is clamped into range.
func Paginate[T any](items []T, page, perPage int) ([]T, Info) {
	if perPage < 1 {
		perPage = 1
	}
	total := len(items)
	if total == 0 {
		return nil, Info{}
	}
	pages := (total + perPage - 1) / perPage
	page = min(max(page, 1), pages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return items[start:end], Info{
		CurrentPage: page,
		TotalPages:  pages,
		StartItem:   start + 1,
		EndItem:     end,
		TotalItems:  total,
	}
}
