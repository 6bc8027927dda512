package timing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/edslo/pkg/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func elapsed(t *testing.T, c *Calculator, created, answered time.Time) (float64, bool) {
	t.Helper()
	h, anomalous := c.Elapsed(models.Thread{CreatedAt: created}, &models.Answer{CreatedAt: answered})
	require.NotNil(t, h)
	return *h, anomalous
}

// referenceWeekday steps day by day over wall-clock time.
func referenceWeekday(start, end time.Time, loc *time.Location) time.Duration {
	a, b := wallClock(start, loc), wallClock(end, loc)
	var total time.Duration
	for cur := a; cur.Before(b); {
		next := time.Date(cur.Year(), cur.Month(), cur.Day()+1, 0, 0, 0, 0, time.UTC)
		if next.After(b) {
			next = b
		}
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			total += next.Sub(cur)
		}
		cur = next
	}
	return total
}

func TestNew(t *testing.T) {
	c := New()
	assert.False(t, c.skipWeekends)
	assert.NotNil(t, c.Location())

	c = New(WithSkipWeekends(true), WithLocation(time.UTC))
	assert.True(t, c.skipWeekends)
	assert.Equal(t, time.UTC, c.Location())

	c = New(WithLocation(nil))
	assert.NotNil(t, c.Location(), "nil location must keep the default")
}

func TestElapsed_NoAnswer(t *testing.T) {
	h, anomalous := New().Elapsed(models.Thread{CreatedAt: at("2024-03-04T09:00:00Z")}, nil)
	assert.Nil(t, h)
	assert.False(t, anomalous)
}

func TestElapsed_SameDay(t *testing.T) {
	c := New(WithLocation(time.UTC))
	h, anomalous := elapsed(t, c, at("2024-03-04T09:00:00Z"), at("2024-03-04T15:00:00Z"))
	assert.Equal(t, 6.0, h)
	assert.False(t, anomalous)
}

func TestElapsed_Fractional(t *testing.T) {
	c := New(WithLocation(time.UTC))
	h, _ := elapsed(t, c, at("2024-03-04T09:00:00Z"), at("2024-03-04T09:20:00Z"))
	assert.InDelta(t, 1.0/3.0, h, 1e-12)
}

func TestElapsed_NegativeIsClamped(t *testing.T) {
	for _, skip := range []bool{false, true} {
		c := New(WithLocation(time.UTC), WithSkipWeekends(skip))
		h, anomalous := elapsed(t, c, at("2024-03-04T09:00:00Z"), at("2024-03-04T08:00:00Z"))
		assert.Equal(t, 0.0, h)
		assert.True(t, anomalous)
	}
}

func TestElapsed_SkipWeekends(t *testing.T) {
	tests := []struct {
		name     string
		created  string
		answered string
		want     float64
	}{
		{"friday evening to monday morning", "2024-03-01T18:00:00Z", "2024-03-04T10:00:00Z", 16},
		{"within a weekday", "2024-03-05T08:00:00Z", "2024-03-05T12:30:00Z", 4.5},
		{"saturday to sunday", "2024-03-02T10:00:00Z", "2024-03-03T20:00:00Z", 0},
		{"saturday to monday", "2024-03-02T10:00:00Z", "2024-03-04T02:00:00Z", 2},
		{"friday to saturday", "2024-03-01T20:00:00Z", "2024-03-02T15:00:00Z", 4},
		{"full week", "2024-03-04T09:00:00Z", "2024-03-11T09:00:00Z", 120},
		{"two weeks and change", "2024-03-06T12:00:00Z", "2024-03-21T12:00:00Z", 11 * 24},
	}

	c := New(WithLocation(time.UTC), WithSkipWeekends(true))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, anomalous := elapsed(t, c, at(tt.created), at(tt.answered))
			assert.InDelta(t, tt.want, h, 1e-9)
			assert.False(t, anomalous)
		})
	}
}

func TestElapsed_SkipWeekendsInLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	c := New(WithLocation(ny), WithSkipWeekends(true))

	// Friday 18:00 to Monday 10:00 New York time, across the March DST change.
	created := time.Date(2024, 3, 8, 18, 0, 0, 0, ny)
	answered := time.Date(2024, 3, 11, 10, 0, 0, 0, ny)
	h, _ := elapsed(t, c, created.UTC(), answered.UTC())
	assert.InDelta(t, 16.0, h, 1e-9)

	raw, _ := elapsed(t, New(WithLocation(ny)), created, answered)
	assert.InDelta(t, 63.0, raw, 1e-9)
}

func TestWeekdayDuration_MatchesReference(t *testing.T) {
	locs := []*time.Location{time.UTC, time.FixedZone("UTC+9", 9*3600), time.FixedZone("UTC-5", -5*3600)}
	if ny, err := time.LoadLocation("America/New_York"); err == nil {
		locs = append(locs, ny)
	}

	rng := rand.New(rand.NewSource(42))
	origin := at("2023-01-01T00:00:00Z")
	for _, loc := range locs {
		for i := 0; i < 500; i++ {
			start := origin.Add(time.Duration(rng.Int63n(int64(2 * 365 * day))))
			end := start.Add(time.Duration(rng.Int63n(int64(30 * day))))

			got := WeekdayDuration(start, end, loc)
			want := referenceWeekday(start, end, loc)
			require.Equal(t, want, got, "loc=%s start=%s end=%s", loc, start, end)
		}
	}
}

func TestWeekdayDuration_WeekdayOffsetChange(t *testing.T) {
	// Egypt ended DST at midnight between Thursday 2023-10-26 and Friday
	// 2023-10-27, so the wall clock repeats an hour on a weekday.
	cairo, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	start := time.Date(2023, 10, 26, 20, 0, 0, 0, cairo)
	end := start.Add(13 * time.Hour)
	assert.Equal(t, 13*time.Hour, WeekdayDuration(start, end, cairo))

	h, _ := elapsed(t, New(WithLocation(cairo), WithSkipWeekends(true)), start, end)
	assert.InDelta(t, 13.0, h, 1e-9)
}

func TestWeekdayDuration_EmptySpan(t *testing.T) {
	ts := at("2024-03-04T09:00:00Z")
	assert.Equal(t, time.Duration(0), WeekdayDuration(ts, ts, time.UTC))
	assert.Equal(t, time.Duration(0), WeekdayDuration(ts, ts.Add(-time.Hour), time.UTC))
}

func TestElapsed_SkipWeekendsNeverIncreases(t *testing.T) {
	plain := New(WithLocation(time.UTC))
	skip := New(WithLocation(time.UTC), WithSkipWeekends(true))

	rng := rand.New(rand.NewSource(7))
	origin := at("2024-01-01T00:00:00Z")
	for i := 0; i < 1000; i++ {
		created := origin.Add(time.Duration(rng.Int63n(int64(60 * day))))
		answered := created.Add(time.Duration(rng.Int63n(int64(10 * day))))

		a, _ := elapsed(t, plain, created, answered)
		b, _ := elapsed(t, skip, created, answered)
		require.LessOrEqual(t, b, a)
		require.GreaterOrEqual(t, b, 0.0)
	}
}

func TestWeekendBefore_BeforeEpoch(t *testing.T) {
	// Saturday 1970-01-03 12:00 lies before the Monday epoch.
	sat := time.Date(1970, 1, 3, 12, 0, 0, 0, time.UTC)
	mon := time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 36*time.Hour, weekendBefore(mon)-weekendBefore(sat))
}
