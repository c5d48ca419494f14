// Package dashboard holds the tab model of the admin dashboard.
package dashboard

import "district-growth/cmd/web/listview"

type Tab string

const (
	TabUsers     Tab = "users"
	TabProfiles  Tab = "profiles"
	TabFeedback  Tab = "feedback"
	TabAnalytics Tab = "analytics"
	TabExport    Tab = "export"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabUsers, TabProfiles, TabFeedback, TabAnalytics, TabExport}

var titles = map[Tab]string{
	TabUsers:     "Users",
	TabProfiles:  "Profiles",
	TabFeedback:  "Feedback",
	TabAnalytics: "Analytics",
	TabExport:    "Export",
}

// ParseTab maps a query value to a tab, falling back to the users tab.
func ParseTab(s string) Tab {
	t := Tab(s)
	if _, ok := titles[t]; ok {
		return t
	}
	return TabUsers
}

func (t Tab) Title() string { return titles[t] }

// Listed reports whether the tab is backed by a paginated list.
func (t Tab) Listed() bool {
	return t == TabUsers || t == TabProfiles || t == TabFeedback
}

// TabState is the dashboard's navigation state. Exactly one tab is active.
type TabState struct {
	Active  Tab
	Request listview.Request
}

// NewTabState opens the dashboard on tab with the given query.
func NewTabState(tab Tab, req listview.Request) TabState {
	return TabState{Active: ParseTab(string(tab)), Request: req.Normalize()}
}

// SwitchTab activates tab. Switching always starts a fresh request at page 1;
// re-selecting the active tab keeps the current query.
func (s TabState) SwitchTab(tab Tab) TabState {
	tab = ParseTab(string(tab))
	if tab == s.Active {
		return s
	}
	return TabState{Active: tab, Request: listview.Request{Page: 1}}
}

// Item is one entry of the tab strip.
type Item struct {
	Tab    Tab
	Title  string
	Href   string
	Active bool
}

// Nav builds the tab strip for s.
func (s TabState) Nav() []Item {
	items := make([]Item, 0, len(Tabs))
	for _, t := range Tabs {
		items = append(items, Item{
			Tab:    t,
			Title:  t.Title(),
			Href:   "/admin/dashboard?tab=" + string(t),
			Active: t == s.Active,
		})
	}
	return items
}
