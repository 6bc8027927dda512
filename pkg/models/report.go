package models

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects how threads are partitioned for a report.
type Mode string

const (
	ModeDetails Mode = "details"
	ModeWeek    Mode = "week"
	ModeOverall Mode = "overall"
)

// Modes lists the supported modes.
func Modes() []Mode {
	return []Mode{ModeDetails, ModeWeek, ModeOverall}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDetails, ModeWeek, ModeOverall:
		return true
	default:
		return false
	}
}

// ErrInvalidThresholds is returned for threshold lists that are not
// strictly positive and strictly ascending.
var ErrInvalidThresholds = errors.New("invalid SLO thresholds")

// ValidateThresholds checks that every threshold is positive and that the
// list is strictly ascending, which also rules out duplicates. An empty
// list is valid.
func ValidateThresholds(hours []float64) error {
	for i, h := range hours {
		if !(h > 0) {
			return fmt.Errorf("%w: threshold %v must be positive", ErrInvalidThresholds, h)
		}
		if i > 0 && h <= hours[i-1] {
			return fmt.Errorf("%w: %v does not follow %v in ascending order", ErrInvalidThresholds, h, hours[i-1])
		}
	}
	return nil
}

// DefaultThresholds are the SLO thresholds in hours used when none are configured.
func DefaultThresholds() []float64 {
	return []float64{6, 24, 48}
}

// Metadata describes how and from what a report was produced.
type Metadata struct {
	// GeneratedAt is the reference "now" used for time windows.
	GeneratedAt time.Time `json:"generated_at"`
	Timezone    string    `json:"timezone"`

	// Location is the zone named by Timezone, used for display.
	Location *time.Location `json:"-" toon:"-"`
	Source      string    `json:"source,omitempty"`
	Digest      string    `json:"digest,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	Version     string    `json:"version,omitempty"`

	// WindowStart and WindowEnd bound the week partition.
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`

	// SkippedPosts counts non-question posts dropped by the loader.
	SkippedPosts int `json:"skipped_posts"`
}

// Policy records the switches a report was computed with.
type Policy struct {
	Categorize          bool     `json:"categorize"`
	CountUnconfirmed    bool     `json:"count_unconfirmed"`
	SkipWeekends        bool     `json:"skip_weekends"`
	ExcludeWeekendPosts bool     `json:"exclude_weekend_posts"`
	Categories          []string `json:"categories,omitempty"`
}

// StatusCounts holds the number of threads per status.
type StatusCounts struct {
	Resolved    int `json:"resolved"`
	Endorsed    int `json:"endorsed"`
	Unconfirmed int `json:"unconfirmed"`
	Pending     int `json:"pending"`
}

// Add increments the counter for s.
func (c *StatusCounts) Add(s Status) {
	switch s {
	case StatusResolved:
		c.Resolved++
	case StatusEndorsed:
		c.Endorsed++
	case StatusUnconfirmed:
		c.Unconfirmed++
	case StatusPending:
		c.Pending++
	}
}

// Get returns the counter for s.
func (c StatusCounts) Get(s Status) int {
	switch s {
	case StatusResolved:
		return c.Resolved
	case StatusEndorsed:
		return c.Endorsed
	case StatusUnconfirmed:
		return c.Unconfirmed
	case StatusPending:
		return c.Pending
	default:
		return 0
	}
}

// Total returns the sum of all counters.
func (c StatusCounts) Total() int {
	return c.Resolved + c.Endorsed + c.Unconfirmed + c.Pending
}

// TimeStats summarizes response times in hours.
type TimeStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P90    float64 `json:"p90"`
}

// Compliance is the share of effectively answered threads resolved within
// a threshold. Percent is nil when there were no effectively answered threads.
type Compliance struct {
	Hours   float64  `json:"hours"`
	Within  int      `json:"within"`
	Of      int      `json:"of"`
	Percent *float64 `json:"percent"`
}

// Summary is the aggregate of one partition. Nil pointers mean "no data".
type Summary struct {
	Total               int          `json:"total"`
	Counts              StatusCounts `json:"counts"`
	EffectivelyAnswered int          `json:"effectively_answered"`
	AnsweredPercent     *float64     `json:"answered_percent"`
	ResponseTime        *TimeStats   `json:"response_time"`
	Compliance          []Compliance `json:"compliance"`
}

// CategorySummary is a Summary restricted to one category path.
type CategorySummary struct {
	Category string `json:"category"`
	Summary
}

// ThreadDetail is one row of the details view.
type ThreadDetail struct {
	ThreadID         int       `json:"thread_id"`
	Category         string    `json:"category"`
	CreatedAt        time.Time `json:"created_at"`
	Status           Status    `json:"status"`
	AnswerID         *int      `json:"answer_id"`
	ElapsedHours     *float64  `json:"elapsed_hours"`
	WeekendPost      bool      `json:"weekend_post"`
	PlatformResolved bool      `json:"platform_resolved"`
	Anomalous        bool      `json:"anomalous,omitempty"`
}

// WarningKind classifies recoverable conditions found while analysing.
type WarningKind string

const (
	WarnNegativeElapsed      WarningKind = "negative_elapsed"
	WarnWeekendPostsExcluded WarningKind = "weekend_posts_excluded"
)

// Warning is a recoverable condition reported alongside the results.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	ThreadID int         `json:"thread_id,omitempty"`
	Message  string      `json:"message"`
}

// Report is the result of one analysis run.
type Report struct {
	Mode       Mode              `json:"mode"`
	Metadata   Metadata          `json:"metadata"`
	Policy     Policy            `json:"policy"`
	Thresholds []float64         `json:"thresholds"`
	Summary    *Summary          `json:"summary,omitempty"`
	Categories []CategorySummary `json:"categories,omitempty"`
	Details    []ThreadDetail    `json:"details,omitempty"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}
