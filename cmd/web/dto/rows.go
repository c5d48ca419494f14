package dto

// UserRow is one row of the admin users table.
type UserRow struct {
	ID             int
	Username       string
	Email          string
	Mobile         string
	Status         string
	StatusClass    string
	EmailVerified  bool
	MobileVerified bool
	Joined         string
	// NextStatus is what the toggle action switches the user to.
	NextStatus  string
	ToggleLabel string
}

type ProfileRow struct {
	ID         int
	FullName   string
	Email      string
	Profession string
	Location   string
	Experience string
	Company    string
	Updated    string
}

type FeedbackRow struct {
	ID          int
	Name        string
	Email       string
	Type        string
	Subject     string
	Rating      string
	Status      string
	StatusClass string
	Created     string
}

// Option is an entry of a filter dropdown.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// SearchCard is one professional in the public search results.
type SearchCard struct {
	FullName     string
	Profession   string
	Availability string
	BadgeClass   string
	Education    string
	Experience   string
	Location     string
	Company      string
	Skills       string
	SalaryRange  string
	Username     string
}
