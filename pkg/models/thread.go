package models

import (
	"strings"
	"time"
)

// Role is the author role of an answer as reported by the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// IsStaff reports whether the role is admin or staff. Tutors and any other
// role classify like students.
func (r Role) IsStaff() bool {
	switch Role(strings.ToLower(string(r))) {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

// Answer is a single answer posted to a question thread.
type Answer struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Role      Role      `json:"role"`
	Endorsed  bool      `json:"endorsed"`
	Content   string    `json:"-"`
}

// IsStaff reports whether the answer was written by staff or an admin.
func (a Answer) IsStaff() bool {
	return a.Role.IsStaff()
}

// Thread is a question thread loaded from a discussion export.
// Answers keep the order of the source document.
type Thread struct {
	ID             int       `json:"id"`
	Title          string    `json:"title,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory,omitempty"`
	Subsubcategory string    `json:"subsubcategory,omitempty"`
	Answers        []Answer  `json:"answers"`

	// PlatformResolved mirrors the platform's own "answered" marker.
	// It is informational; status is always derived from Answers.
	PlatformResolved bool `json:"platform_resolved"`
}

// CategoryPath joins the non-empty category levels with "-".
func (t Thread) CategoryPath() string {
	parts := []string{t.Category}
	if t.Subcategory != "" {
		parts = append(parts, t.Subcategory)
	}
	if t.Subsubcategory != "" {
		parts = append(parts, t.Subsubcategory)
	}
	return strings.Join(parts, "-")
}

// PostedOnWeekend reports whether the thread was created on a Saturday or
// Sunday in loc. A nil loc uses the timestamp's own location.
func (t Thread) PostedOnWeekend(loc *time.Location) bool {
	created := t.CreatedAt
	if loc != nil {
		created = created.In(loc)
	}
	wd := created.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
