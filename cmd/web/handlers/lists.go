package handlers

import (
	"context"
	"html/template"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dashboard"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/listview"
	"district-growth/cmd/web/services"
	"district-growth/cmd/web/views"
)

// list is a listview.Controller with its item type erased.
type list interface {
	Name() string
	Load(ctx context.Context, tracker *listview.Tracker, req listview.Request, sink listview.Sink) listview.Outcome
	Settle(ctx context.Context, tracker *listview.Tracker, req listview.Request, sink listview.Sink) listview.Outcome
}

// newList builds the controller behind a listed dashboard tab. Controllers are
// cheap and built per request so row forms carry this request's CSRF token; the
// stale-load tokens live in the visitor's tracker under the tab name. When
// professions is not nil a profiles load stores the counts of its own page there.
func newList(tab dashboard.Tab, svc *services.AdminService, v *views.Renderer, csrf template.HTML, professions *[]directoryclient.Bucket) list {
	href := func(req listview.Request) string { return dashboardURL(tab, req) }
	switch tab {
	case dashboard.TabProfiles:
		fetch := func(ctx context.Context, req listview.Request) (listview.Result[dto.ProfileRow], error) {
			res, buckets, err := svc.ProfilesPage(ctx, req)
			if err == nil && professions != nil {
				*professions = buckets
			}
			return res, err
		}
		return listview.New(string(tab), fetch, v.ProfilesTable(csrf), href, listview.DefaultPlaceholders("profiles"))
	case dashboard.TabFeedback:
		return listview.New(string(tab), svc.Feedback, v.FeedbackTable(csrf), href, listview.DefaultPlaceholders("feedback"))
	default:
		return listview.New(string(dashboard.TabUsers), svc.Users, v.UsersTable(csrf), href, listview.DefaultPlaceholders("users"))
	}
}

func listQuery(req listview.Request) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(req.Page, 1)))
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Filter != "" {
		q.Set("filter", req.Filter)
	}
	return q
}

// dashboardURL is the full-page address of a tab and query.
func dashboardURL(tab dashboard.Tab, req listview.Request) string {
	q := listQuery(req)
	q.Set("tab", string(tab))
	return "/admin/dashboard?" + q.Encode()
}

// fragmentURL is where the page script reloads the list container from. The
// script appends the query of the clicked pagination link.
func fragmentURL(tab dashboard.Tab) string {
	return "/admin/fragments/" + string(tab)
}

func listRequest(c *gin.Context) listview.Request {
	return listview.Request{
		Page:   pageParam(c),
		Search: c.Query("search"),
		Filter: c.Query("filter"),
	}.Normalize()
}
