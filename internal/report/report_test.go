package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/edslo/internal/output"
	tu "github.com/panbanda/edslo/internal/testutil"
	"github.com/panbanda/edslo/pkg/analyzer/slo"
	"github.com/panbanda/edslo/pkg/models"
)

func sampleThreads(t *testing.T) []models.Thread {
	t.Helper()
	return []models.Thread{
		tu.Thread(1, tu.At(t, "2024-03-04T09:00:00Z"), "Lectures",
			tu.Staff(10, tu.At(t, "2024-03-04T12:00:00Z"))),
		tu.Thread(2, tu.At(t, "2024-03-05T09:00:00Z"), "Homework",
			tu.Student(20, tu.At(t, "2024-03-06T09:00:00Z"), true)),
		tu.Thread(3, tu.At(t, "2024-03-09T09:00:00Z"), "Homework",
			tu.Student(30, tu.At(t, "2024-03-09T10:00:00Z"), false)),
		tu.Thread(4, tu.At(t, "2024-03-06T09:00:00Z"), "Lectures"),
	}
}

func analyze(t *testing.T, opts ...slo.Option) *models.Report {
	t.Helper()
	opts = append([]slo.Option{
		slo.WithLocation(time.UTC),
		slo.WithNow(tu.At(t, "2024-03-10T00:00:00Z")),
	}, opts...)
	r, err := slo.New(opts...).Analyze(sampleThreads(t))
	require.NoError(t, err)
	return r
}

func render(t *testing.T, doc *Document, format output.Format) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, output.NewWriterFormatter(format, &buf, false).Output(doc))
	return buf.String()
}

func TestBuild_OverallText(t *testing.T) {
	r := analyze(t, slo.WithCategorize(true))
	out := render(t, Build(r), output.FormatText)

	for _, want := range []string{
		"Overall Statistics",
		"Period:",
		"Total questions:",
		"Effectively answered:",
		"2 (50.0%)",
		"Resolved (by staff/admin)",
		"Response Time Analysis",
		"Average:",
		"SLO Metrics",
		"within 6h",
		"Category Breakdown",
		"[R:1 E:0 U:0 P:1]",
		"[R:0 E:1 U:1 P:0]",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, indexOf(out, "Lectures"), indexOf(out, "Homework"), "categories keep first-seen order")
}

func TestBuild_CountUnconfirmedNote(t *testing.T) {
	r := analyze(t, slo.WithCategorize(true), slo.WithCountUnconfirmed(true))
	out := render(t, Build(r), output.FormatText)

	assert.Contains(t, out, "Effectively answered (including unconfirmed):")
	assert.Contains(t, out, "Category Breakdown (including unconfirmed)")
}

func TestBuild_WeekNoData(t *testing.T) {
	r := analyze(t, slo.WithMode(models.ModeWeek), slo.WithNow(tu.At(t, "2025-01-01T00:00:00Z")))
	out := render(t, Build(r), output.FormatText)

	assert.Contains(t, out, "Last Week Statistics")
	assert.Contains(t, out, "No questions found for last week.")
	assert.Contains(t, out, "Window:")
	assert.NotContains(t, out, "NaN")
}

func TestBuild_NoAnsweredThreads(t *testing.T) {
	threads := []models.Thread{tu.Thread(1, tu.At(t, "2024-03-04T09:00:00Z"), "Lectures")}
	r, err := slo.New(slo.WithLocation(time.UTC)).Analyze(threads)
	require.NoError(t, err)

	out := render(t, Build(r), output.FormatText)
	assert.Contains(t, out, "0 (0.0%)")
	assert.Contains(t, out, noData)
	assert.NotContains(t, out, "NaN")
}

func TestBuild_DetailsText(t *testing.T) {
	r := analyze(t, slo.WithMode(models.ModeDetails))
	out := render(t, Build(r), output.FormatText)

	assert.Contains(t, out, "Question Thread Details")
	assert.Contains(t, out, "3.00h")
	assert.Contains(t, out, "(W)", "thread 3 was posted on a Saturday")
	assert.Contains(t, out, "[Pending]")
	assert.Contains(t, out, notAvailable)
	assert.Contains(t, out, "Total questions analyzed: 4")
}

func TestBuild_Markdown(t *testing.T) {
	r := analyze(t)
	out := render(t, Build(r), output.FormatMarkdown)

	assert.Contains(t, out, "## Overall Statistics")
	assert.Contains(t, out, "| Threshold | Answered | Rate |")
	assert.Contains(t, out, "- **Total questions:** 4")
}

func TestBuild_JSONSerializesReport(t *testing.T) {
	r := analyze(t)
	out := render(t, Build(r), output.FormatJSON)

	var decoded models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, models.ModeOverall, decoded.Mode)
	require.NotNil(t, decoded.Summary)
	assert.Equal(t, 4, decoded.Summary.Total)
}

func TestBuild_Warnings(t *testing.T) {
	threads := []models.Thread{
		tu.Thread(7, tu.At(t, "2024-03-04T09:00:00Z"), "Lectures",
			tu.Staff(70, tu.At(t, "2024-03-04T08:00:00Z"))),
	}
	r, err := slo.New(slo.WithLocation(time.UTC)).Analyze(threads)
	require.NoError(t, err)

	out := render(t, Build(r), output.FormatText)
	assert.Contains(t, out, "Warnings")
	assert.Contains(t, out, string(models.WarnNegativeElapsed))
}

func TestBuild_FixedZoneDisplay(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	r, err := slo.New(
		slo.WithLocation(tokyo),
		slo.WithNow(tu.At(t, "2024-03-10T00:00:00Z")),
	).Analyze(sampleThreads(t))
	require.NoError(t, err)

	out := render(t, Build(r), output.FormatText)
	assert.Contains(t, out, "2024-03-10 09:00 UTC+9")
}

func TestLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, tokyo, location(models.Metadata{Timezone: "UTC+9", Location: tokyo}))

	assert.Equal(t, time.UTC, location(models.Metadata{Timezone: "UTC"}))

	fallback := location(models.Metadata{Timezone: "UTC+9", GeneratedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, tokyo)})
	assert.Equal(t, tokyo, fallback)
}

func TestLegend(t *testing.T) {
	got := legend(models.StatusCounts{Resolved: 3, Endorsed: 1, Pending: 2})
	assert.Equal(t, "[R:3 E:1 U:0 P:2]", got)
}

func TestRatedTable_ColoredKeepsText(t *testing.T) {
	pct := 50.0
	table := &ratedTable{
		Table:    output.NewTable("", []string{"A", "Rate"}, [][]string{{"x", "50.0%"}}, nil, nil),
		column:   1,
		percents: []*float64{&pct},
	}

	var buf bytes.Buffer
	require.NoError(t, table.RenderText(&buf, true))
	assert.Contains(t, buf.String(), "50.0%")
	assert.Equal(t, "50.0%", table.Rows[0][1], "coloring must not mutate the table")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
