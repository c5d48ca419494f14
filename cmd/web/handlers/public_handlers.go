package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/listview"
	"district-growth/cmd/web/middleware"
	"district-growth/cmd/web/services"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/trace"
	"district-growth/cmd/web/views"
)

func HomeHandler(v *views.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderPage(c, v, http.StatusOK, views.PageHome, "Home", nil)
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthDTO
// @Router /health [get]
func HealthHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthDTO{Status: "ok", Visitors: store.Len()})
	}
}

// -------------------- Login --------------------

var visitorLogin = views.LoginView{Heading: "Login", Action: "/login"}

type credentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func LoginPageHandler(v *views.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderPage(c, v, http.StatusOK, views.PageLogin, "Login", visitorLogin)
	}
}

func LoginHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form credentialsForm
		_ = c.ShouldBind(&form)
		form.Username = strings.TrimSpace(form.Username)

		view := visitorLogin
		view.Username = form.Username
		if form.Username == "" || form.Password == "" {
			sess.Alert.Error("Please enter username and password.")
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageLogin, "Login", view)
			return
		}
		if _, err := svc.Login(c.Request.Context(), form.Username, form.Password); err != nil {
			sess.Alert.Error(directoryclient.Message(err, "Login failed. Please try again."))
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageLogin, "Login", view)
			return
		}
		sess.SignIn(form.Username)
		sess.Alert.Success("Login successful!")
		redirect(c, "/profile")
	}
}

func LogoutHandler(svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		if err := svc.Logout(c.Request.Context()); err != nil {
			// the API session may still be alive; drop our copy of its cookie
			logger.WarnWithFields("directory logout failed", logger.Fields{
				"error":      err.Error(),
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			_ = sess.ResetUpstream()
		}
		sess.SignOut()
		redirect(c, "/")
	}
}

// -------------------- Profile --------------------

type profileForm struct {
	FullName        string `form:"full_name"`
	ProfileEmail    string `form:"profile_email"`
	Profession      string `form:"profession"`
	Education       string `form:"education"`
	Experience      string `form:"experience"`
	Skills          string `form:"skills"`
	CurrentLocation string `form:"current_location"`
	Phone           string `form:"phone"`
	Company         string `form:"company"`
	SalaryRange     string `form:"salary_range"`
	Availability    string `form:"availability"`
}

func availabilityOptions(selected string) []dto.Option {
	return options(selected,
		"Available", "Available",
		"Not Available", "Not Available",
		"Open to Opportunities", "Open to Opportunities",
	)
}

// requireVisitor sends anonymous visitors to the login page.
func requireVisitor(c *gin.Context) bool {
	if session.Current(c).Username() != "" {
		return true
	}
	redirect(c, "/login")
	return false
}

func ProfilePageHandler(v *views.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireVisitor(c) {
			return
		}
		renderPage(c, v, http.StatusOK, views.PageProfile, "Profile", views.ProfileView{
			Availability: availabilityOptions("Available"),
		})
	}
}

func SaveProfileHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireVisitor(c) {
			return
		}
		sess := session.Current(c)
		var form profileForm
		_ = c.ShouldBind(&form)

		err := svc.SaveProfile(c.Request.Context(), services.ProfileInput(form))
		if err != nil {
			msg := directoryclient.Message(err, "Profile update failed. Please try again.")
			if errors.Is(err, services.ErrInvalidExperience) {
				msg = err.Error()
			}
			sess.Alert.Error(msg)
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageProfile, "Profile", views.ProfileView{
				FullName:        form.FullName,
				ProfileEmail:    form.ProfileEmail,
				Profession:      form.Profession,
				Education:       form.Education,
				Experience:      form.Experience,
				Skills:          form.Skills,
				CurrentLocation: form.CurrentLocation,
				Phone:           form.Phone,
				Company:         form.Company,
				SalaryRange:     form.SalaryRange,
				Availability:    availabilityOptions(form.Availability),
			})
			return
		}
		sess.Alert.Success("Profile updated successfully!")
		redirect(c, "/profile")
	}
}

// -------------------- Search --------------------

func experienceOptions(selected string) []dto.Option {
	return options(selected,
		"", "Any Experience",
		"1", "1+ years",
		"3", "3+ years",
		"5", "5+ years",
		"10", "10+ years",
	)
}

// searchPlaceholders are the non-table states of the result list.
var searchPlaceholders = listview.Placeholders{
	Loading: "Searching...",
	Empty:   "No professionals found matching your criteria.",
	Failed:  "Search failed. Please try again.",
}

const searchFragmentURL = "/search/results"

func searchInput(c *gin.Context) services.SearchInput {
	return services.SearchInput{
		Profession: c.Query("profession"),
		Location:   c.Query("location"),
		Education:  c.Query("education"),
		Experience: c.Query("experience"),
		Page:       pageParam(c),
	}
}

// searchURL is the address of one result page for the criteria in.
func searchURL(in services.SearchInput, page int) string {
	q := url.Values{}
	for key, value := range map[string]string{
		"profession": in.Profession,
		"location":   in.Location,
		"education":  in.Education,
		"experience": in.Experience,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	q.Set("page", strconv.Itoa(page))
	return "/search?" + q.Encode()
}

// newSearchList builds the result list for one set of criteria. It shares the
// visitor's tracker with the fragment endpoint under the "search" key.
func newSearchList(svc *services.DirectoryService, v *views.Renderer, csrf template.HTML, in services.SearchInput) *listview.Controller[dto.SearchCard] {
	href := func(req listview.Request) string { return searchURL(in, req.Page) }
	return listview.New("search", svc.SearchResults(in), v.SearchResults(csrf), href, searchPlaceholders)
}

func SearchHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := searchInput(c)
		view := views.SearchView{
			Profession:  in.Profession,
			Location:    in.Location,
			Education:   in.Education,
			Experience:  experienceOptions(in.Experience),
			FragmentURL: searchFragmentURL,
		}
		if in.Empty() {
			renderPage(c, v, http.StatusOK, views.PageSearch, "Search", view)
			return
		}

		sess := session.Current(c)
		var buf listview.Buffer
		outcome := newSearchList(svc, v, csrfField(c), in).Settle(c.Request.Context(), sess.Lists, listview.Request{Page: in.Page}, &buf)
		if outcome == listview.OutcomeFailed {
			sess.Alert.Error(searchPlaceholders.Failed)
		}
		view.Searched = true
		view.Results = buf.Content()
		renderPage(c, v, http.StatusOK, views.PageSearch, "Search", view)
	}
}

// SearchFragmentHandler renders only the result list, for in-place paging. A
// load overtaken by a newer one answers 204.
func SearchFragmentHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := searchInput(c)
		if in.Empty() {
			c.Status(http.StatusNoContent)
			return
		}
		var buf listview.Buffer
		outcome := newSearchList(svc, v, csrfField(c), in).Load(c.Request.Context(), session.Current(c).Lists, listview.Request{Page: in.Page}, &buf)
		c.Header(middleware.HeaderListOutcome, outcome.String())
		if outcome == listview.OutcomeSuperseded {
			c.Status(http.StatusNoContent)
			return
		}
		c.Data(http.StatusOK, htmlContentType, []byte(buf.Content()))
	}
}

// ConnectHandler acknowledges a connection request from a search result.
func ConnectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		if username == "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "missing username"})
			return
		}
		session.Current(c).Alert.Success(fmt.Sprintf("Connection request sent to %s!", username))
		redirect(c, "/search")
	}
}

// -------------------- Analytics --------------------

func AnalyticsHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.Analytics(c.Request.Context())
		if err != nil {
			session.Current(c).Alert.Error(directoryclient.Message(err, "Failed to load analytics."))
			renderPage(c, v, http.StatusOK, views.PageAnalytics, "Analytics", views.AnalyticsView{Failed: true})
			return
		}
		renderPage(c, v, http.StatusOK, views.PageAnalytics, "Analytics", views.AnalyticsView{Analytics: a})
	}
}

// -------------------- Feedback --------------------

type feedbackForm struct {
	Name         string `form:"name"`
	Email        string `form:"email"`
	FeedbackType string `form:"feedback_type"`
	Subject      string `form:"subject"`
	Message      string `form:"message"`
	Rating       string `form:"rating"`
}

func feedbackView(form feedbackForm) views.FeedbackView {
	return views.FeedbackView{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
		Types: options(form.FeedbackType,
			"general", "General Feedback",
			"suggestion", "Suggestion",
			"complaint", "Complaint",
			"appreciation", "Appreciation",
		),
		Ratings: options(form.Rating,
			"", "No rating",
			"5", "⭐⭐⭐⭐⭐ Excellent",
			"4", "⭐⭐⭐⭐ Good",
			"3", "⭐⭐⭐ Average",
			"2", "⭐⭐ Poor",
			"1", "⭐ Very Poor",
		),
	}
}

func FeedbackPageHandler(v *views.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderPage(c, v, http.StatusOK, views.PageFeedback, "Feedback", feedbackView(feedbackForm{FeedbackType: "general"}))
	}
}

func SubmitFeedbackHandler(v *views.Renderer, svc *services.DirectoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		var form feedbackForm
		_ = c.ShouldBind(&form)

		rating, _ := strconv.Atoi(form.Rating)
		if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Email) == "" ||
			strings.TrimSpace(form.Subject) == "" || strings.TrimSpace(form.Message) == "" {
			sess.Alert.Error("Please fill in all required fields.")
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageFeedback, "Feedback", feedbackView(form))
			return
		}
		msg, err := svc.SubmitFeedback(c.Request.Context(), directoryclient.FeedbackRequest{
			Name:         form.Name,
			Email:        form.Email,
			FeedbackType: form.FeedbackType,
			Subject:      form.Subject,
			Message:      form.Message,
			Rating:       rating,
		})
		if err != nil {
			sess.Alert.Error(directoryclient.Message(err, "Feedback submission failed. Please try again."))
			renderPage(c, v, http.StatusUnprocessableEntity, views.PageFeedback, "Feedback", feedbackView(form))
			return
		}
		if msg == "" {
			msg = "Thank you for your feedback!"
		}
		sess.Alert.Success(msg)
		redirect(c, "/feedback")
	}
}
