// Package profile stores the directly-identifying career records a
// member attaches to their account: bio, work history, education,
// portfolio and skills. These are read whole for compliance export and
// removed in full by anonymization.
package profile

import "time"

// Profile is the member's free-text self-description.
type Profile struct {
	UserID    string
	Bio       string
	Headline  string
	Location  string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkEntry is one position in the member's work history.
type WorkEntry struct {
	ID        string
	UserID    string
	Company   string
	Title     string
	StartDate time.Time
	EndDate   *time.Time
	Summary   string
}

// EducationEntry is one degree or course in the member's history.
type EducationEntry struct {
	ID        string
	UserID    string
	School    string
	Degree    string
	StartYear int
	EndYear   *int
}

// PortfolioItem is one showcased piece of work.
type PortfolioItem struct {
	ID          string
	UserID      string
	Title       string
	URL         string
	Description string
	CreatedAt   time.Time
}

// Skill is one self-declared skill.
type Skill struct {
	ID     string
	UserID string
	Name   string
	Level  string
}

// Records bundles every profile record a user owns, as assembled for
// export.
type Records struct {
	Profile   *Profile
	Work      []*WorkEntry
	Education []*EducationEntry
	Portfolio []*PortfolioItem
	Skills    []*Skill
}
