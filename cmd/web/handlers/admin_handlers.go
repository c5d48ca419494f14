package handlers

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dashboard"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/listview"
	"district-growth/cmd/web/middleware"
	"district-growth/cmd/web/services"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/trace"
	"district-growth/cmd/web/views"
)

var adminLogin = views.LoginView{Heading: "Admin Login", Action: "/admin/login"}

func AdminLoginPageHandler(v *views.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderPage(c, v, http.StatusOK, views.PageAdminLogin, "Admin Login", adminLogin)
	}
}

func AdminLoginHandler(v *views.Renderer, svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form credentialsForm
		_ = c.ShouldBind(&form)
		form.Username = strings.TrimSpace(form.Username)

		view := adminLogin
		view.Username = form.Username
		if form.Username == "" || form.Password == "" {
			sess.Alert.Error("Please enter username and password.")
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageAdminLogin, "Admin Login", view)
			return
		}
		if _, err := svc.Login(c.Request.Context(), form.Username, form.Password); err != nil {
			sess.Alert.Error(directoryclient.Message(err, "Login failed. Please try again."))
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageAdminLogin, "Admin Login", view)
			return
		}
		redirect(c, "/admin/dashboard")
	}
}

func AdminLogoutHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context()); err != nil {
			logger.WarnWithFields("admin logout failed", logger.Fields{
				"error":      err.Error(),
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			_ = session.Current(c).ResetUpstream()
		}
		redirect(c, "/admin/login")
	}
}

// -------------------- Dashboard --------------------

func filterOptions(tab dashboard.Tab, selected string, professions []directoryclient.Bucket) []dto.Option {
	switch tab {
	case dashboard.TabUsers:
		return services.StatusOptions(selected)
	case dashboard.TabProfiles:
		return services.ProfessionOptions(professions, selected)
	}
	return nil
}

// AdminDashboardHandler renders the dashboard with one tab open. A listed tab
// settles through its list controller: fragment loads still in flight for the
// tab are superseded, and the page itself always gets final content.
func AdminDashboardHandler(v *views.Renderer, svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := session.Current(c)
		admin, _ := middleware.CurrentAdmin(c)
		state := dashboard.NewTabState(dashboard.ParseTab(c.Query("tab")), listRequest(c))

		view := views.DashboardView{
			Welcome:     services.Welcome(admin),
			Tabs:        state.Nav(),
			Active:      state.Active,
			ExportTypes: directoryclient.ExportTypes,
			CSRF:        csrfField(c),
		}
		stats, err := svc.Stats(ctx)
		if err != nil {
			view.StatsFailed = true
		} else {
			view.Stats = stats
		}

		switch {
		case state.Active.Listed():
			var (
				buf         listview.Buffer
				professions []directoryclient.Bucket
			)
			newList(state.Active, svc, v, view.CSRF, &professions).Settle(ctx, sess.Lists, state.Request, &buf)
			view.List = buf.Content()
			view.FragmentURL = fragmentURL(state.Active)
			view.Search = state.Request.Search
			view.Filters = filterOptions(state.Active, state.Request.Filter, professions)
		case state.Active == dashboard.TabAnalytics:
			view.Analytics = analyticsHTML(c, v, svc)
		}
		renderPage(c, v, http.StatusOK, views.PageAdminDashboard, "Admin Dashboard", view)
	}
}

func analyticsHTML(c *gin.Context, v *views.Renderer, svc *services.AdminService) (html template.HTML) {
	failed := listview.Placeholder("Failed to load analytics.")
	a, err := svc.Analytics(c.Request.Context())
	if err != nil {
		return failed
	}
	html, err = v.FragmentHTML("analytics", a)
	if err != nil {
		return failed
	}
	return html
}

// AdminFragmentHandler renders only the list container of a tab. A load that
// was overtaken by a newer one for the same visitor answers 204 so the page
// keeps the newer content.
func AdminFragmentHandler(v *views.Renderer, svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tab := dashboard.Tab(c.Param("tab"))
		if tab == dashboard.TabAnalytics {
			c.Data(http.StatusOK, htmlContentType, []byte(analyticsHTML(c, v, svc)))
			return
		}
		if !tab.Listed() {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "unknown_list"})
			return
		}

		var buf listview.Buffer
		outcome := newList(tab, svc, v, csrfField(c), nil).Load(c.Request.Context(), session.Current(c).Lists, listRequest(c), &buf)
		c.Header(middleware.HeaderListOutcome, outcome.String())
		if outcome == listview.OutcomeSuperseded {
			c.Status(http.StatusNoContent)
			return
		}
		c.Data(http.StatusOK, htmlContentType, []byte(buf.Content()))
	}
}

// -------------------- Row actions --------------------

func ToggleUserStatusHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		sess := session.Current(c)
		if err := svc.ToggleUserStatus(c.Request.Context(), id, c.PostForm("current_status")); err != nil {
			sess.Alert.Error(directoryclient.Message(err, "Failed to update user status."))
		} else {
			sess.Alert.Success(services.StatusUpdatedMessage)
		}
		redirect(c, dashboardURL(dashboard.TabUsers, listview.Request{Page: 1}))
	}
}

// ViewRecordHandler acknowledges the "View" row action of a list.
func ViewRecordHandler(tab dashboard.Tab, noun string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		session.Current(c).Alert.Info(fmt.Sprintf("View %s details for ID: %d", noun, id))
		redirect(c, dashboardURL(tab, listview.Request{Page: pageFromReferer(c)}))
	}
}

func RespondFeedbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		session.Current(c).Alert.Success(fmt.Sprintf("Response sent for feedback ID: %d", id))
		redirect(c, dashboardURL(dashboard.TabFeedback, listview.Request{Page: pageFromReferer(c)}))
	}
}

// pageFromReferer keeps the list page the action was taken on.
func pageFromReferer(c *gin.Context) int {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil {
		return 1
	}
	page, err := strconv.Atoi(ref.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// -------------------- Export --------------------

// @Summary Export a data set as CSV
// @Tags admin
// @Produce text/csv
// @Param type path string true "users, profiles or feedback"
// @Success 200 {file} file
// @Failure 303 "Redirect back to the export tab with an error alert"
// @Router /admin/export/{type} [get]
func ExportHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dataType := c.Param("type")
		sess := session.Current(c)
		back := dashboardURL(dashboard.TabExport, listview.Request{Page: 1})

		exp, filename, err := svc.Export(c.Request.Context(), dataType)
		if err != nil {
			logger.WarnWithFields("export failed", logger.Fields{
				"type":       dataType,
				"error":      err.Error(),
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			sess.Alert.Error("Export failed. Please try again.")
			redirect(c, back)
			return
		}
		defer exp.Body.Close()

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Header("Content-Type", exp.ContentType)
		if exp.Length >= 0 {
			c.Header("Content-Length", strconv.FormatInt(exp.Length, 10))
		}
		c.Status(http.StatusOK)
		// a download never navigates, so there is no page to show a success alert on
		if _, err := io.Copy(c.Writer, exp.Body); err != nil {
			logger.WarnWithFields("export stream interrupted", logger.Fields{"type": dataType, "error": err.Error()})
		}
	}
}
