// Package report turns an analysis result into output renderables and
// Prometheus metrics.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/edslo/internal/output"
	"github.com/panbanda/edslo/pkg/models"
)

const (
	noData       = "no data"
	notAvailable = "N/A"
	timeLayout   = "2006-01-02 15:04 MST"
)

// Compliance percentages at or above goodRate render green, at or above
// fairRate yellow, and red below that.
const (
	goodRate = 90.0
	fairRate = 70.0
)

var statusLabels = map[models.Status]string{
	models.StatusResolved:    "Resolved (by staff/admin)",
	models.StatusEndorsed:    "Endorsed (student + endorsed)",
	models.StatusUnconfirmed: "Unconfirmed (student only)",
	models.StatusPending:     "Pending (no answers)",
}

// Document is a rendered report. It supports every output format,
// including Prometheus metrics.
type Document struct {
	*output.Report
	source *models.Report
}

// RenderMetrics writes the report as Prometheus gauges.
func (d *Document) RenderMetrics(w io.Writer) error {
	return WriteMetrics(w, d.source)
}

// Build lays out r as a document. JSON and TOON output serialize r itself.
func Build(r *models.Report) *Document {
	b := builder{
		report:  r,
		printer: message.NewPrinter(language.English),
		loc:     location(r.Metadata),
	}

	doc := &output.Report{
		Title: cases.Title(language.English).String(heading(r.Mode)),
		Data:  r,
	}
	if r.Mode == models.ModeDetails {
		doc.Sections = b.details()
	} else {
		doc.Sections = b.statistics()
	}
	if len(r.Warnings) > 0 {
		doc.Sections = append(doc.Sections, b.warnings())
	}
	return &Document{Report: doc, source: r}
}

func heading(m models.Mode) string {
	switch m {
	case models.ModeDetails:
		return "question thread details"
	case models.ModeWeek:
		return "last week statistics"
	default:
		return "overall statistics"
	}
}

func period(m models.Mode) string {
	if m == models.ModeWeek {
		return "last week"
	}
	return string(m)
}

// location prefers the zone the report was computed in. Reports decoded
// from JSON only carry the zone name.
func location(m models.Metadata) *time.Location {
	if m.Location != nil {
		return m.Location
	}
	if loc, err := time.LoadLocation(m.Timezone); err == nil {
		return loc
	}
	return m.GeneratedAt.Location()
}

type builder struct {
	report  *models.Report
	printer *message.Printer
	loc     *time.Location
}

func (b builder) count(n int) string {
	return b.printer.Sprintf("%d", n)
}

func (b builder) percent(p *float64) string {
	if p == nil {
		return noData
	}
	return b.printer.Sprintf("%.1f%%", *p)
}

func hours(h *float64) string {
	if h == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.2fh", *h)
}

func thresholdLabel(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

func (b builder) statistics() []output.Renderable {
	r := b.report
	overview := &output.Section{Title: "Summary"}
	overview.Add("Period", "%s", cases.Title(language.English).String(period(r.Mode)))
	if r.Metadata.WindowStart != nil && r.Metadata.WindowEnd != nil {
		overview.Add("Window", "%s to %s",
			r.Metadata.WindowStart.In(b.loc).Format(timeLayout),
			r.Metadata.WindowEnd.In(b.loc).Format(timeLayout))
	}
	overview.Add("Generated", "%s", r.Metadata.GeneratedAt.In(b.loc).Format(timeLayout))
	if r.Metadata.Source != "" {
		overview.Add("Source", "%s", r.Metadata.Source)
	}
	if r.Metadata.SkippedPosts > 0 {
		overview.Add("Non-question posts skipped", "%s", b.count(r.Metadata.SkippedPosts))
	}
	if r.Policy.SkipWeekends {
		overview.Add("Response times", "%s", "weekend hours excluded")
	}

	s := r.Summary
	if s == nil || s.Total == 0 {
		overview.Note = fmt.Sprintf("No questions found for %s.", period(r.Mode))
		return []output.Renderable{overview}
	}

	overview.Add("Total questions", "%s", b.count(s.Total))
	answered := "Effectively answered"
	if r.Policy.CountUnconfirmed {
		answered += " (including unconfirmed)"
	}
	overview.Add(answered, "%s (%s)", b.count(s.EffectivelyAnswered), b.percent(s.AnsweredPercent))

	sections := []output.Renderable{overview, b.statusTable(s.Counts), b.responseTimes(s.ResponseTime)}
	if len(r.Thresholds) > 0 {
		sections = append(sections, b.compliance(s.Compliance))
	}
	if r.Policy.Categorize {
		sections = append(sections, b.categories())
	}
	return sections
}

func (b builder) statusTable(counts models.StatusCounts) *output.Table {
	rows := make([][]string, 0, len(models.Statuses()))
	for _, st := range models.Statuses() {
		rows = append(rows, []string{statusLabels[st], b.count(counts.Get(st))})
	}
	return output.NewTable("Status Breakdown", []string{"Status", "Threads"}, rows, nil, nil)
}

func (b builder) responseTimes(ts *models.TimeStats) *output.Section {
	sec := &output.Section{Title: "Response Time Analysis"}
	if ts == nil {
		sec.Note = "No answered questions with a response time."
		for _, label := range []string{"Average", "Median", "Fastest", "Slowest"} {
			sec.Add(label, "%s", noData)
		}
		return sec
	}
	sec.Add("Average", "%.2f hours", ts.Mean)
	sec.Add("Median", "%.2f hours", ts.Median)
	sec.Add("Fastest", "%.2f hours", ts.Min)
	sec.Add("Slowest", "%.2f hours", ts.Max)
	sec.Add("90th percentile", "%.2f hours", ts.P90)
	return sec
}

func (b builder) compliance(cs []models.Compliance) output.Renderable {
	rows := make([][]string, 0, len(cs))
	percents := make([]*float64, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			"within " + thresholdLabel(c.Hours),
			b.count(c.Within) + "/" + b.count(c.Of),
			b.percent(c.Percent),
		})
		percents = append(percents, c.Percent)
	}
	return &ratedTable{
		Table:    output.NewTable("SLO Metrics", []string{"Threshold", "Answered", "Rate"}, rows, nil, nil),
		column:   2,
		percents: percents,
	}
}

func (b builder) categories() output.Renderable {
	r := b.report
	title := "Category Breakdown"
	if r.Policy.CountUnconfirmed {
		title += " (including unconfirmed)"
	}

	rows := make([][]string, 0, len(r.Categories))
	percents := make([]*float64, 0, len(r.Categories))
	for _, c := range r.Categories {
		avg := notAvailable
		if c.ResponseTime != nil {
			avg = fmt.Sprintf("%.2fh", c.ResponseTime.Mean)
		}
		rows = append(rows, []string{
			c.Category,
			b.count(c.EffectivelyAnswered) + "/" + b.count(c.Total),
			b.percent(c.AnsweredPercent),
			avg,
			legend(c.Counts),
		})
		percents = append(percents, c.AnsweredPercent)
	}
	return &ratedTable{
		Table:    output.NewTable(title, []string{"Category", "Answered", "Rate", "Avg", "Statuses"}, rows, nil, nil),
		column:   2,
		percents: percents,
	}
}

// legend renders counts as [R:n E:n U:n P:n].
func legend(c models.StatusCounts) string {
	parts := make([]string, 0, len(models.Statuses()))
	for _, st := range models.Statuses() {
		parts = append(parts, fmt.Sprintf("%s:%d", st.Short(), c.Get(st)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (b builder) details() []output.Renderable {
	r := b.report
	rows := make([][]string, 0, len(r.Details))
	for _, d := range r.Details {
		weekend := ""
		if d.WeekendPost {
			weekend = "(W)"
		}
		answer := notAvailable
		if d.AnswerID != nil {
			answer = "#" + strconv.Itoa(*d.AnswerID)
		}
		elapsed := hours(d.ElapsedHours)
		if d.Anomalous {
			elapsed += "*"
		}
		rows = append(rows, []string{
			"#" + strconv.Itoa(d.ThreadID),
			d.Category,
			d.CreatedAt.In(b.loc).Format(timeLayout),
			elapsed,
			weekend,
			"[" + string(d.Status) + "]",
			answer,
		})
	}
	footer := []string{"Total questions analyzed: " + b.count(len(r.Details)), "", "", "", "", "", ""}
	table := output.NewTable("",
		[]string{"Thread", "Category", "Posted", "Response", "Weekend", "Status", "Answer"},
		rows, footer, nil)
	return []output.Renderable{table}
}

func (b builder) warnings() *output.Section {
	sec := &output.Section{Title: "Warnings"}
	for _, w := range b.report.Warnings {
		sec.Add(string(w.Kind), "%s", w.Message)
	}
	return sec
}

// ratedTable colors one percentage column of a table in text output.
type ratedTable struct {
	*output.Table
	column   int
	percents []*float64
}

func (t *ratedTable) RenderText(w io.Writer, colored bool) error {
	if !colored {
		return t.Table.RenderText(w, false)
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
		if i < len(t.percents) && t.column < len(row) {
			rows[i][t.column] = output.RateColor(t.percents[i], goodRate, fairRate, row[t.column])
		}
	}
	tinted := *t.Table
	tinted.Rows = rows
	return tinted.RenderText(w, true)
}
