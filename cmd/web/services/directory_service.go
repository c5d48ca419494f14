package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/listview"
	"district-growth/cmd/web/pagination"
	"district-growth/cmd/web/registration"
)

// SearchPageSize is how many result cards one search page shows.
const SearchPageSize = 20

// ErrInvalidExperience is returned when the profile form's experience is not a whole number.
var ErrInvalidExperience = errors.New("Please enter experience in whole years.")

// DirectoryService backs the public pages.
type DirectoryService struct {
	client *directoryclient.Client
}

func NewDirectoryService(client *directoryclient.Client) *DirectoryService {
	return &DirectoryService{client: client}
}

func (s *DirectoryService) Login(ctx context.Context, username, password string) (string, error) {
	return s.client.Login(ctx, directoryclient.Credentials{Username: username, Password: password})
}

func (s *DirectoryService) Logout(ctx context.Context) error {
	return s.client.Logout(ctx)
}

// -------------------- Search --------------------

type SearchInput struct {
	Profession string
	Location   string
	Education  string
	Experience string
	Page       int
}

// Empty reports whether no criterion was given.
func (in SearchInput) Empty() bool {
	return in.Profession == "" && in.Location == "" && in.Education == "" && in.Experience == ""
}

type SearchOutput struct {
	Cards      []dto.SearchCard
	Pagination pagination.Info
}

// Search runs the query upstream and pages the matches locally, since the
// search endpoint returns every match at once.
func (s *DirectoryService) Search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	found, err := s.client.Search(ctx, directoryclient.SearchQuery{
		Profession: strings.TrimSpace(in.Profession),
		Location:   strings.TrimSpace(in.Location),
		Education:  strings.TrimSpace(in.Education),
		Experience: strings.TrimSpace(in.Experience),
	})
	if err != nil {
		return SearchOutput{}, err
	}
	page, info := pagination.Paginate(found, in.Page, SearchPageSize)
	cards := make([]dto.SearchCard, 0, len(page))
	for _, p := range page {
		cards = append(cards, dto.SearchCard{
			FullName:     p.FullName,
			Profession:   p.Profession,
			Availability: p.Availability,
			BadgeClass:   BadgeClass(p.Availability),
			Education:    p.Education,
			Experience:   years(p.Experience),
			Location:     p.CurrentLocation,
			Company:      p.Company,
			Skills:       p.Skills,
			SalaryRange:  p.SalaryRange,
			Username:     p.Username,
		})
	}
	return SearchOutput{Cards: cards, Pagination: info}, nil
}

// SearchResults is the list fetcher for the criteria in. The page of each load
// comes from the list request.
func (s *DirectoryService) SearchResults(in SearchInput) listview.Fetcher[dto.SearchCard] {
	return func(ctx context.Context, req listview.Request) (listview.Result[dto.SearchCard], error) {
		in.Page = req.Page
		out, err := s.Search(ctx, in)
		if err != nil {
			return listview.Result[dto.SearchCard]{}, err
		}
		return listview.Result[dto.SearchCard]{Items: out.Cards, Pagination: out.Pagination}, nil
	}
}

// -------------------- Analytics --------------------

func (s *DirectoryService) Analytics(ctx context.Context) (dto.AnalyticsView, error) {
	a, err := s.client.Analytics(ctx)
	if err != nil {
		return dto.AnalyticsView{}, err
	}
	total := 0
	for _, b := range a.ProfessionStats {
		total += b.Count
	}
	top := notAvailable
	if len(a.ProfessionStats) > 0 {
		top = orNA(a.ProfessionStats[0].Profession)
	}
	return dto.AnalyticsView{
		Cards: []dto.StatCard{
			{Value: formatCount(total), Label: "Total Professionals"},
			{Value: formatCount(len(a.LocationStats)), Label: "Locations Covered"},
			{Value: formatCount(len(a.ProfessionStats)), Label: "Different Professions"},
			{Value: top, Label: "Top Profession"},
		},
		Charts: []dto.Chart{
			buildChart("Top Professions", a.ProfessionStats, 10),
			buildChart("Top Locations", a.LocationStats, 10),
			buildChart("Experience Distribution", a.ExperienceStats, 0),
			buildChart("Education Distribution", a.EducationStats, 10),
		},
	}, nil
}

// -------------------- Forms --------------------

func (s *DirectoryService) SubmitFeedback(ctx context.Context, in directoryclient.FeedbackRequest) (string, error) {
	return s.client.SubmitFeedback(ctx, in)
}

// ProfileInput is the profile form as posted; Experience is parsed here.
type ProfileInput struct {
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
	Availability    string
}

func (s *DirectoryService) SaveProfile(ctx context.Context, in ProfileInput) error {
	experience, err := strconv.Atoi(strings.TrimSpace(in.Experience))
	if err != nil || experience < 0 {
		return ErrInvalidExperience
	}
	_, err = s.client.SaveProfile(ctx, directoryclient.ProfileRequest{
		FullName:        in.FullName,
		ProfileEmail:    in.ProfileEmail,
		Profession:      in.Profession,
		Education:       in.Education,
		Experience:      experience,
		Skills:          in.Skills,
		CurrentLocation: in.CurrentLocation,
		Phone:           in.Phone,
		Company:         in.Company,
		SalaryRange:     in.SalaryRange,
		Availability:    in.Availability,
	})
	return err
}

// -------------------- Registration --------------------

// RegistrationRemote adapts the directory client to registration.Remote.
type RegistrationRemote struct {
	client *directoryclient.Client
}

func (s *DirectoryService) RegistrationRemote() RegistrationRemote {
	return RegistrationRemote{client: s.client}
}

func (r RegistrationRemote) SendOTP(ctx context.Context, email, mobile string) error {
	_, err := r.client.SendOTP(ctx, directoryclient.OTPRequest{Email: email, Mobile: mobile, Type: "both"})
	return err
}

func (r RegistrationRemote) VerifyOTP(ctx context.Context, email, mobile, otp string) error {
	_, err := r.client.VerifyOTP(ctx, directoryclient.OTPRequest{Email: email, Mobile: mobile, OTP: otp})
	return err
}

func (r RegistrationRemote) Register(ctx context.Context, sub registration.Submission) error {
	_, err := r.client.Register(ctx, directoryclient.RegisterRequest{
		Username: sub.Username,
		Email:    sub.Email,
		Mobile:   sub.Mobile,
		Password: sub.Password,
		OTP:      sub.OTP,
	})
	return err
}
