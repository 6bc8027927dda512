package slo

import (
	"github.com/panbanda/edslo/pkg/models"
	"github.com/panbanda/edslo/pkg/stats"
)

// summarize aggregates one partition.
func (a *Analyzer) summarize(timed []models.TimedThread) models.Summary {
	s := models.Summary{Total: len(timed)}

	var hours []float64
	for _, t := range timed {
		s.Counts.Add(t.Classification.Status)
		if !t.EffectivelyAnswered(a.countUnconfirmed) {
			continue
		}
		s.EffectivelyAnswered++
		if t.ElapsedHours != nil {
			hours = append(hours, *t.ElapsedHours)
		}
	}

	if pct, ok := stats.Ratio(s.EffectivelyAnswered, s.Total); ok {
		s.AnsweredPercent = &pct
	}

	if sum, ok := stats.Summarize(hours); ok {
		s.ResponseTime = &models.TimeStats{
			Count:  sum.Count,
			Mean:   sum.Mean,
			Median: sum.Median,
			Min:    sum.Min,
			Max:    sum.Max,
			P90:    sum.P90,
		}
	}

	s.Compliance = make([]models.Compliance, 0, len(a.thresholds))
	for _, limit := range a.thresholds {
		c := models.Compliance{Hours: limit, Of: s.EffectivelyAnswered}
		for _, h := range hours {
			if h <= limit {
				c.Within++
			}
		}
		if pct, ok := stats.Ratio(c.Within, c.Of); ok {
			c.Percent = &pct
		}
		s.Compliance = append(s.Compliance, c)
	}

	return s
}

// byCategory aggregates each category path separately, in first-seen order.
func (a *Analyzer) byCategory(timed []models.TimedThread) []models.CategorySummary {
	var order []string
	groups := make(map[string][]models.TimedThread)
	for _, t := range timed {
		key := t.Thread.CategoryPath()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	result := make([]models.CategorySummary, 0, len(order))
	for _, key := range order {
		result = append(result, models.CategorySummary{
			Category: key,
			Summary:  a.summarize(groups[key]),
		})
	}
	return result
}
