package views

import (
	"html/template"

	"district-growth/cmd/web/dashboard"
	"district-growth/cmd/web/dto"
)

// LoginView serves both the visitor and the admin login form.
type LoginView struct {
	Heading  string
	Action   string
	Username string
}

type RegisterView struct {
	Username string
	Email    string
	Mobile   string
	OTP      string
	Status   dto.RegistrationStatusDTO
}

// OTPVisible reports whether the OTP step is shown.
func (v RegisterView) OTPVisible() bool {
	return v.Status.State != "idle" && v.Status.State != ""
}

type ProfileView struct {
	FullName        string
	ProfileEmail    string
	Profession      string
	Education       string
	Experience      string
	Skills          string
	CurrentLocation string
	Phone           string
	Company         string
	SalaryRange     string
	Availability    []dto.Option
}

type SearchView struct {
	Profession string
	Location   string
	Education  string
	Experience []dto.Option
	Searched   bool

	// Results is the settled list: result cards, or an empty or failed placeholder.
	Results     template.HTML
	FragmentURL string
}

type AnalyticsView struct {
	Analytics dto.AnalyticsView
	Failed    bool
}

type FeedbackView struct {
	Name    string
	Email   string
	Subject string
	Message string
	Types   []dto.Option
	Ratings []dto.Option
}

// DashboardView is the admin dashboard with one tab open.
type DashboardView struct {
	Welcome     string
	Stats       []dto.StatCard
	StatsFailed bool
	Tabs        []dashboard.Item
	Active      dashboard.Tab
	// List is the rendered list container of a listed tab.
	List        template.HTML
	FragmentURL string
	Search      string
	Filters     []dto.Option
	Analytics   template.HTML
	ExportTypes []string
	CSRF        template.HTML
}
