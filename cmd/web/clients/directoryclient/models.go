package directoryclient

import (
	"bytes"
	"encoding/json"
	"strconv"

	"district-growth/cmd/web/pagination"
)

// -------------------- Wire helpers --------------------

// Flag decodes a boolean sent either as JSON true/false or as a 0/1 number,
// which is how the directory database reports verification columns.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		b = []byte(s)
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = n != 0
	return nil
}

// -------------------- Entities --------------------

type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Status         string `json:"status"`
	EmailVerified  Flag   `json:"email_verified"`
	MobileVerified Flag   `json:"mobile_verified"`
	CreatedAt      string `json:"created_at"`
}

type Profile struct {
	ID              int    `json:"id"`
	UserID          int    `json:"user_id"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Profession      string `json:"profession"`
	Education       string `json:"education"`
	Experience      int    `json:"experience"`
	Skills          string `json:"skills"`
	CurrentLocation string `json:"current_location"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	SalaryRange     string `json:"salary_range"`
	Availability    string `json:"availability"`
	UpdatedAt       string `json:"updated_at"`
}

type Feedback struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	FeedbackType string `json:"feedback_type"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Rating       int    `json:"rating"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type Admin struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Bucket is one row of a grouped count. Exactly one of the label fields is set,
// depending on what was grouped.
type Bucket struct {
	Profession      string `json:"profession"`
	CurrentLocation string `json:"current_location"`
	Education       string `json:"education"`
	ExperienceLevel string `json:"experience_level"`
	Date            string `json:"date"`
	Count           int    `json:"count"`
}

// Label returns whichever grouping field is present.
func (b Bucket) Label() string {
	for _, s := range []string{b.Profession, b.CurrentLocation, b.Education, b.ExperienceLevel, b.Date} {
		if s != "" {
			return s
		}
	}
	return ""
}

// -------------------- Pages --------------------

type UserPage struct {
	Users      []User          `json:"users"`
	Pagination pagination.Info `json:"pagination"`
}

type ProfilePage struct {
	Profiles    []Profile       `json:"profiles"`
	Professions []Bucket        `json:"professions"`
	Pagination  pagination.Info `json:"pagination"`
}

type FeedbackPage struct {
	Feedback   []Feedback      `json:"feedback"`
	Pagination pagination.Info `json:"pagination"`
}

// -------------------- Stats --------------------

type Stats struct {
	TotalUsers         int `json:"total_users"`
	TotalProfiles      int `json:"total_profiles"`
	TodayRegistrations int `json:"today_registrations"`
	TotalFeedback      int `json:"total_feedback"`
}

type GrowthStats struct {
	WeeklyRegistrations   int     `json:"weekly_registrations"`
	MonthlyRegistrations  int     `json:"monthly_registrations"`
	ProfileCompletionRate float64 `json:"profile_completion_rate"`
	AvgRating             float64 `json:"avg_rating"`
}

type AdminAnalytics struct {
	GrowthStats        GrowthStats `json:"growth_stats"`
	RegistrationTrends []Bucket    `json:"registration_trends"`
}

type Analytics struct {
	ProfessionStats []Bucket `json:"profession_stats"`
	LocationStats   []Bucket `json:"location_stats"`
	EducationStats  []Bucket `json:"education_stats"`
	ExperienceStats []Bucket `json:"experience_stats"`
}

// -------------------- Requests --------------------

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type OTPRequest struct {
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Type   string `json:"type,omitempty"`
	OTP    string `json:"otp,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

type ProfileRequest struct {
	FullName        string `json:"full_name"`
	ProfileEmail    string `json:"profile_email"`
	Profession      string `json:"profession"`
	Education       string `json:"education"`
	Experience      int    `json:"experience"`
	Skills          string `json:"skills"`
	CurrentLocation string `json:"current_location"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	SalaryRange     string `json:"salary_range"`
	Availability    string `json:"availability"`
}

type FeedbackRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	FeedbackType string `json:"feedback_type"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Rating       int    `json:"rating"`
}

type StatusUpdate struct {
	UserID int    `json:"user_id"`
	Status string `json:"status"`
}

type SearchQuery struct {
	Profession string
	Location   string
	Education  string
	Experience string
}
