// Package slo aggregates classified, timed threads into response-time and
// SLO compliance reports.
package slo

import (
	"errors"
	"fmt"
	"time"

	"github.com/panbanda/edslo/pkg/analyzer/classify"
	"github.com/panbanda/edslo/pkg/analyzer/timing"
	"github.com/panbanda/edslo/pkg/models"
)

// WeekWindow is the length of the week-mode partition.
const WeekWindow = 7 * 24 * time.Hour

var (
	// ErrUnknownMode is returned for a mode outside details/week/overall.
	ErrUnknownMode = errors.New("unknown analysis mode")

	// ErrUnknownCategory is returned when a category filter matches no thread.
	ErrUnknownCategory = errors.New("unknown category")
)

// Analyzer classifies, times and aggregates threads.
type Analyzer struct {
	mode                models.Mode
	categorize          bool
	countUnconfirmed    bool
	skipWeekends        bool
	excludeWeekendPosts bool
	thresholds          []float64
	categories          []string
	loc                 *time.Location
	now                 time.Time
	onProgress          func()
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMode sets the partitioning mode.
func WithMode(mode models.Mode) Option {
	return func(a *Analyzer) {
		a.mode = mode
	}
}

// WithCategorize adds a per-category breakdown to statistical modes.
func WithCategorize(categorize bool) Option {
	return func(a *Analyzer) {
		a.categorize = categorize
	}
}

// WithCountUnconfirmed counts unconfirmed student answers as answered.
func WithCountUnconfirmed(count bool) Option {
	return func(a *Analyzer) {
		a.countUnconfirmed = count
	}
}

// WithSkipWeekends excludes weekend hours from response times.
func WithSkipWeekends(skip bool) Option {
	return func(a *Analyzer) {
		a.skipWeekends = skip
	}
}

// WithExcludeWeekendPosts drops threads posted on a weekend from
// statistical modes.
func WithExcludeWeekendPosts(exclude bool) Option {
	return func(a *Analyzer) {
		a.excludeWeekendPosts = exclude
	}
}

// WithThresholds sets the SLO thresholds in hours.
func WithThresholds(hours []float64) Option {
	return func(a *Analyzer) {
		a.thresholds = append([]float64(nil), hours...)
	}
}

// WithCategories restricts the analysis to threads whose category or
// category path is listed.
func WithCategories(categories []string) Option {
	return func(a *Analyzer) {
		a.categories = append([]string(nil), categories...)
	}
}

// WithLocation sets the zone used for weekday arithmetic.
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithNow sets the reference time for the week window.
func WithNow(now time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithProgress registers a callback invoked once per processed thread.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new SLO analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		mode:       models.ModeOverall,
		thresholds: models.DefaultThresholds(),
		loc:        timing.DefaultLocation(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.now.IsZero() {
		a.now = time.Now()
	}
	return a
}

// Analyze runs classification, timing and aggregation over threads.
// Configuration errors are returned before any thread is processed.
func (a *Analyzer) Analyze(threads []models.Thread) (*models.Report, error) {
	if !a.mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, a.mode)
	}
	if err := models.ValidateThresholds(a.thresholds); err != nil {
		return nil, err
	}
	if err := a.checkCategories(threads); err != nil {
		return nil, err
	}

	report := &models.Report{
		Mode: a.mode,
		Metadata: models.Metadata{
			GeneratedAt: a.now,
			Timezone:    a.loc.String(),
			Location:    a.loc,
		},
		Policy: models.Policy{
			Categorize:          a.categorize && a.mode != models.ModeDetails,
			CountUnconfirmed:    a.countUnconfirmed,
			SkipWeekends:        a.skipWeekends,
			ExcludeWeekendPosts: a.excludeWeekendPosts && a.mode != models.ModeDetails,
			Categories:          a.categories,
		},
		Thresholds: append([]float64(nil), a.thresholds...),
	}

	timed := a.Timed(a.filterCategories(threads))

	if a.mode == models.ModeDetails {
		report.Details = a.details(timed)
		report.Warnings = anomalies(timed)
		return report, nil
	}

	if a.mode == models.ModeWeek {
		start, end := a.now.Add(-WeekWindow), a.now
		report.Metadata.WindowStart = &start
		report.Metadata.WindowEnd = &end
		timed = inWindow(timed, start, a.now)
	}

	if a.excludeWeekendPosts {
		var skipped int
		timed, skipped = a.dropWeekendPosts(timed)
		if skipped > 0 {
			report.Warnings = append(report.Warnings, models.Warning{
				Kind:    models.WarnWeekendPostsExcluded,
				Message: fmt.Sprintf("skipped %d weekend posts from analysis", skipped),
			})
		}
	}
	report.Warnings = append(report.Warnings, anomalies(timed)...)

	summary := a.summarize(timed)
	report.Summary = &summary
	if a.categorize {
		report.Categories = a.byCategory(timed)
	}
	return report, nil
}

// Timed classifies and times every thread in a single pass.
func (a *Analyzer) Timed(threads []models.Thread) []models.TimedThread {
	calc := timing.New(timing.WithSkipWeekends(a.skipWeekends), timing.WithLocation(a.loc))

	timed := make([]models.TimedThread, 0, len(threads))
	for _, t := range threads {
		c := classify.Classify(t)
		hours, anomalous := calc.Elapsed(t, c.Answer)
		timed = append(timed, models.TimedThread{
			Thread:         t,
			Classification: c,
			ElapsedHours:   hours,
			Anomalous:      anomalous,
		})
		if a.onProgress != nil {
			a.onProgress()
		}
	}
	return timed
}

func (a *Analyzer) checkCategories(threads []models.Thread) error {
	for _, want := range a.categories {
		found := false
		for _, t := range threads {
			if matchesCategory(t, want) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, want)
		}
	}
	return nil
}

func (a *Analyzer) filterCategories(threads []models.Thread) []models.Thread {
	if len(a.categories) == 0 {
		return threads
	}
	var kept []models.Thread
	for _, t := range threads {
		for _, want := range a.categories {
			if matchesCategory(t, want) {
				kept = append(kept, t)
				break
			}
		}
	}
	return kept
}

func matchesCategory(t models.Thread, want string) bool {
	return t.Category == want || t.CategoryPath() == want
}

// inWindow keeps threads created within [start, end].
func inWindow(timed []models.TimedThread, start, end time.Time) []models.TimedThread {
	var kept []models.TimedThread
	for _, t := range timed {
		created := t.Thread.CreatedAt
		if !created.Before(start) && !created.After(end) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (a *Analyzer) dropWeekendPosts(timed []models.TimedThread) ([]models.TimedThread, int) {
	var kept []models.TimedThread
	for _, t := range timed {
		if !t.Thread.PostedOnWeekend(a.loc) {
			kept = append(kept, t)
		}
	}
	return kept, len(timed) - len(kept)
}

func anomalies(timed []models.TimedThread) []models.Warning {
	var warnings []models.Warning
	for _, t := range timed {
		if !t.Anomalous {
			continue
		}
		early := t.Thread.CreatedAt.Sub(t.Classification.Answer.CreatedAt).Hours()
		warnings = append(warnings, models.Warning{
			Kind:     models.WarnNegativeElapsed,
			ThreadID: t.Thread.ID,
			Message: fmt.Sprintf("thread #%d: answer %d predates the question by %.2f hours; response time clamped to 0",
				t.Thread.ID, t.Classification.Answer.ID, early),
		})
	}
	return warnings
}

func (a *Analyzer) details(timed []models.TimedThread) []models.ThreadDetail {
	rows := make([]models.ThreadDetail, 0, len(timed))
	for _, t := range timed {
		row := models.ThreadDetail{
			ThreadID:         t.Thread.ID,
			Category:         t.Thread.CategoryPath(),
			CreatedAt:        t.Thread.CreatedAt.In(a.loc),
			Status:           t.Classification.Status,
			ElapsedHours:     t.ElapsedHours,
			WeekendPost:      t.Thread.PostedOnWeekend(a.loc),
			PlatformResolved: t.Thread.PlatformResolved,
			Anomalous:        t.Anomalous,
		}
		if t.Classification.Answer != nil {
			id := t.Classification.Answer.ID
			row.AnswerID = &id
		}
		rows = append(rows, row)
	}
	return rows
}
