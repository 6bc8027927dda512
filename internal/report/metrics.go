package report

import (
	"io"
	"sort"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/panbanda/edslo/pkg/models"
)

const namespace = "edslo"

// metricSet collects gauge families in first-use order.
type metricSet struct {
	order  []string
	byName map[string]*dto.MetricFamily
}

func newMetricSet() *metricSet {
	return &metricSet{byName: make(map[string]*dto.MetricFamily)}
}

// gauge records one sample. labels are name/value pairs.
func (s *metricSet) gauge(name, help string, value float64, labels ...string) {
	name = namespace + "_" + name
	fam, ok := s.byName[name]
	if !ok {
		fam = &dto.MetricFamily{
			Name: proto.String(name),
			Help: proto.String(help),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		s.byName[name] = fam
		s.order = append(s.order, name)
	}

	pairs := make([]*dto.LabelPair, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		pairs = append(pairs, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].GetName() < pairs[j].GetName()
	})

	fam.Metric = append(fam.Metric, &dto.Metric{
		Label: pairs,
		Gauge: &dto.Gauge{Value: proto.Float64(value)},
	})
}

func (s *metricSet) write(w io.Writer) error {
	for _, name := range s.order {
		if _, err := expfmt.MetricFamilyToText(w, s.byName[name]); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics writes r in the Prometheus text exposition format, suitable
// for a node_exporter textfile collector. Values with no data are omitted
// rather than reported as zero.
func WriteMetrics(w io.Writer, r *models.Report) error {
	set := newMetricSet()
	mode := string(r.Mode)

	set.gauge("report_generated_timestamp_seconds", "Reference time the report was computed at.",
		float64(r.Metadata.GeneratedAt.Unix()), "mode", mode)
	set.gauge("skipped_posts", "Non-question posts skipped while loading the export.",
		float64(r.Metadata.SkippedPosts), "mode", mode)

	if r.Mode == models.ModeDetails {
		writeDetails(set, r)
		return set.write(w)
	}

	if r.Summary != nil {
		writeSummary(set, mode, "", *r.Summary)
	}
	for _, c := range r.Categories {
		writeSummary(set, mode, c.Category, c.Summary)
	}
	set.gauge("warnings", "Recoverable conditions found while analysing.",
		float64(len(r.Warnings)), "mode", mode)
	return set.write(w)
}

func writeSummary(set *metricSet, mode, category string, s models.Summary) {
	base := []string{"mode", mode, "category", category}
	with := func(extra ...string) []string {
		return append(append([]string(nil), base...), extra...)
	}

	set.gauge("threads", "Question threads in the partition.", float64(s.Total), base...)
	for _, st := range models.Statuses() {
		set.gauge("threads_by_status", "Question threads per resolution status.",
			float64(s.Counts.Get(st)), with("status", st.String())...)
	}
	set.gauge("answered_threads", "Effectively answered threads.",
		float64(s.EffectivelyAnswered), base...)
	if s.AnsweredPercent != nil {
		set.gauge("answered_ratio", "Share of threads that were effectively answered.",
			*s.AnsweredPercent/100, base...)
	}

	if t := s.ResponseTime; t != nil {
		for _, v := range []struct {
			stat  string
			value float64
		}{
			{"mean", t.Mean},
			{"median", t.Median},
			{"min", t.Min},
			{"max", t.Max},
			{"p90", t.P90},
		} {
			set.gauge("response_time_hours", "Response time of effectively answered threads.",
				v.value, with("stat", v.stat)...)
		}
	}

	for _, c := range s.Compliance {
		th := strconv.FormatFloat(c.Hours, 'f', -1, 64)
		set.gauge("slo_answered_within_threads", "Effectively answered threads resolved within the threshold.",
			float64(c.Within), with("threshold_hours", th)...)
		if c.Percent != nil {
			set.gauge("slo_compliance_ratio", "Share of effectively answered threads resolved within the threshold.",
				*c.Percent/100, with("threshold_hours", th)...)
		}
	}
}

func writeDetails(set *metricSet, r *models.Report) {
	var counts models.StatusCounts
	for _, d := range r.Details {
		counts.Add(d.Status)
		if d.ElapsedHours == nil {
			continue
		}
		set.gauge("thread_response_time_hours", "Response time of a single thread.",
			*d.ElapsedHours,
			"thread", strconv.Itoa(d.ThreadID),
			"category", d.Category,
			"status", d.Status.String())
	}
	for _, st := range models.Statuses() {
		set.gauge("threads_by_status", "Question threads per resolution status.",
			float64(counts.Get(st)), "mode", string(r.Mode), "status", st.String())
	}
}
