package services

import (
	"context"
	"fmt"
	"time"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/listview"
)

// AdminService backs the admin dashboard.
type AdminService struct {
	client *directoryclient.Client
	now    func() time.Time
}

func NewAdminService(client *directoryclient.Client) *AdminService {
	return &AdminService{client: client, now: time.Now}
}

// -------------------- Session --------------------

func (s *AdminService) Login(ctx context.Context, username, password string) (string, error) {
	return s.client.AdminLogin(ctx, directoryclient.Credentials{Username: username, Password: password})
}

func (s *AdminService) Logout(ctx context.Context) error {
	return s.client.AdminLogout(ctx)
}

// CurrentAdmin asks the API who is logged in as admin for this visitor.
func (s *AdminService) CurrentAdmin(ctx context.Context) (directoryclient.Admin, error) {
	return s.client.AdminSession(ctx)
}

// Welcome is the greeting shown in the dashboard header.
func Welcome(a directoryclient.Admin) string {
	return fmt.Sprintf("Welcome, %s (%s)", a.FullName, a.Role)
}

// -------------------- Stats --------------------

func (s *AdminService) Stats(ctx context.Context) ([]dto.StatCard, error) {
	st, err := s.client.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	return []dto.StatCard{
		{Value: formatCount(st.TotalUsers), Label: "Total Users"},
		{Value: formatCount(st.TotalProfiles), Label: "Professional Profiles"},
		{Value: formatCount(st.TodayRegistrations), Label: "Today's Registrations"},
		{Value: formatCount(st.TotalFeedback), Label: "Feedback Received"},
	}, nil
}

func (s *AdminService) Analytics(ctx context.Context) (dto.AnalyticsView, error) {
	a, err := s.client.AdminAnalytics(ctx)
	if err != nil {
		return dto.AnalyticsView{}, err
	}
	g := a.GrowthStats
	return dto.AnalyticsView{
		Cards: []dto.StatCard{
			{Value: formatCount(g.WeeklyRegistrations), Label: "This Week's Registrations"},
			{Value: formatCount(g.MonthlyRegistrations), Label: "This Month's Registrations"},
			{Value: fmt.Sprintf("%g%%", g.ProfileCompletionRate), Label: "Profile Completion Rate"},
			{Value: fmt.Sprintf("%.1f", g.AvgRating), Label: "Average User Rating"},
		},
		Charts: []dto.Chart{buildChart("Registration Trends (Last 30 Days)", a.RegistrationTrends, 0)},
	}, nil
}

// -------------------- Lists --------------------

// Users is the fetcher of the users list. Filter is the account status.
func (s *AdminService) Users(ctx context.Context, req listview.Request) (listview.Result[dto.UserRow], error) {
	page, err := s.client.AdminUsers(ctx, req.Page, req.Search, req.Filter)
	if err != nil {
		return listview.Result[dto.UserRow]{}, err
	}
	rows := make([]dto.UserRow, 0, len(page.Users))
	for _, u := range page.Users {
		rows = append(rows, dto.UserRow{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			Mobile:         orNA(u.Mobile),
			Status:         u.Status,
			StatusClass:    statusClass(u.Status),
			EmailVerified:  bool(u.EmailVerified),
			MobileVerified: bool(u.MobileVerified),
			Joined:         shortDate(u.CreatedAt),
			NextStatus:     NextStatus(u.Status),
			ToggleLabel:    toggleLabel(u.Status),
		})
	}
	return listview.Result[dto.UserRow]{Items: rows, Pagination: page.Pagination}, nil
}

// Profiles is the fetcher of the profiles list. Filter is the profession.
func (s *AdminService) Profiles(ctx context.Context, req listview.Request) (listview.Result[dto.ProfileRow], error) {
	res, _, err := s.ProfilesPage(ctx, req)
	return res, err
}

// ProfilesPage is Profiles plus the profession counts reported with the page.
func (s *AdminService) ProfilesPage(ctx context.Context, req listview.Request) (listview.Result[dto.ProfileRow], []directoryclient.Bucket, error) {
	page, err := s.client.AdminProfiles(ctx, req.Page, req.Search, req.Filter)
	if err != nil {
		return listview.Result[dto.ProfileRow]{}, nil, err
	}
	rows := make([]dto.ProfileRow, 0, len(page.Profiles))
	for _, p := range page.Profiles {
		rows = append(rows, dto.ProfileRow{
			ID:         p.ID,
			FullName:   p.FullName,
			Email:      orNA(p.Email),
			Profession: p.Profession,
			Location:   p.CurrentLocation,
			Experience: years(p.Experience),
			Company:    orNA(p.Company),
			Updated:    shortDate(p.UpdatedAt),
		})
	}
	return listview.Result[dto.ProfileRow]{Items: rows, Pagination: page.Pagination}, page.Professions, nil
}

// ProfessionOptions builds the profession filter from the counts of one
// profiles page. The selected profession stays in the list even when it no
// longer has profiles.
func ProfessionOptions(professions []directoryclient.Bucket, selected string) []dto.Option {
	opts := []dto.Option{{Value: "", Label: "All Professions", Selected: selected == ""}}
	found := selected == ""
	for _, p := range professions {
		opts = append(opts, dto.Option{
			Value:    p.Profession,
			Label:    fmt.Sprintf("%s (%d)", p.Profession, p.Count),
			Selected: p.Profession == selected,
		})
		found = found || p.Profession == selected
	}
	if !found {
		opts = append(opts, dto.Option{Value: selected, Label: selected, Selected: true})
	}
	return opts
}

// StatusOptions are the account status filters of the users list.
func StatusOptions(selected string) []dto.Option {
	opts := []dto.Option{
		{Value: "", Label: "All Status"},
		{Value: "active", Label: "Active"},
		{Value: "inactive", Label: "Inactive"},
		{Value: "suspended", Label: "Suspended"},
	}
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}
	return opts
}

func (s *AdminService) Feedback(ctx context.Context, req listview.Request) (listview.Result[dto.FeedbackRow], error) {
	page, err := s.client.AdminFeedback(ctx, req.Page)
	if err != nil {
		return listview.Result[dto.FeedbackRow]{}, err
	}
	rows := make([]dto.FeedbackRow, 0, len(page.Feedback))
	for _, f := range page.Feedback {
		rows = append(rows, dto.FeedbackRow{
			ID:          f.ID,
			Name:        f.Name,
			Email:       f.Email,
			Type:        f.FeedbackType,
			Subject:     f.Subject,
			Rating:      stars(f.Rating),
			Status:      f.Status,
			StatusClass: statusClass(f.Status),
			Created:     shortDate(f.CreatedAt),
		})
	}
	return listview.Result[dto.FeedbackRow]{Items: rows, Pagination: page.Pagination}, nil
}

// -------------------- Actions --------------------

const StatusUpdatedMessage = "User status updated successfully!"

// ToggleUserStatus suspends an active user and activates any other.
func (s *AdminService) ToggleUserStatus(ctx context.Context, userID int, current string) error {
	_, err := s.client.UpdateUserStatus(ctx, directoryclient.StatusUpdate{UserID: userID, Status: NextStatus(current)})
	return err
}

// Export opens the CSV stream for dataType and names the download.
func (s *AdminService) Export(ctx context.Context, dataType string) (*directoryclient.Export, string, error) {
	exp, err := s.client.Export(ctx, dataType)
	if err != nil {
		return nil, "", err
	}
	return exp, ExportFilename(dataType, s.now()), nil
}

// ExportFilename is district_growth_{type}_{YYYY-MM-DD}.csv.
func ExportFilename(dataType string, t time.Time) string {
	return fmt.Sprintf("district_growth_%s_%s.csv", dataType, t.Format("2006-01-02"))
}
