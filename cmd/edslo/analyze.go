package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/edslo/internal/output"
	"github.com/panbanda/edslo/internal/progress"
	"github.com/panbanda/edslo/internal/report"
	"github.com/panbanda/edslo/pkg/analyzer/slo"
	"github.com/panbanda/edslo/pkg/config"
	"github.com/panbanda/edslo/pkg/loader"
	"github.com/panbanda/edslo/pkg/models"
)

func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "categorize",
			Aliases: []string{"C"},
			Usage:   "Break statistics down by category",
		},
		&cli.BoolFlag{
			Name:    "count-unconfirmed",
			Aliases: []string{"u"},
			Usage:   "Count unendorsed student answers as answered",
		},
		&cli.BoolFlag{
			Name:    "skip-weekends",
			Aliases: []string{"s"},
			Usage:   "Exclude Saturday and Sunday hours from response times",
		},
		&cli.BoolFlag{
			Name:  "exclude-weekend-posts",
			Usage: "Drop threads posted on a weekend from statistics",
		},
		&cli.Float64SliceFlag{
			Name:  "threshold",
			Usage: "SLO threshold in hours (repeatable, ascending)",
		},
		&cli.StringFlag{
			Name:  "timezone",
			Usage: "IANA zone for weekday math and display (default America/New_York)",
		},
		&cli.StringSliceFlag{
			Name:  "category",
			Usage: "Only analyse this category or category path (repeatable)",
		},
		&cli.StringFlag{
			Name:  "now",
			Usage: "Reference time for the report (RFC 3339, default current time)",
		},
	}
}

func overallCmd() *cli.Command {
	return &cli.Command{
		Name:      "overall",
		Usage:     "Statistics over every question thread",
		ArgsUsage: "<export.json>",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, models.ModeOverall)
		},
	}
}

func weekCmd() *cli.Command {
	return &cli.Command{
		Name:      "week",
		Usage:     "Statistics over threads posted in the last 7 days",
		ArgsUsage: "<export.json>",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, models.ModeWeek)
		},
	}
}

func detailsCmd() *cli.Command {
	return &cli.Command{
		Name:      "details",
		Usage:     "One row per thread with status and response time",
		ArgsUsage: "<export.json>",
		Flags:     analysisFlags(),
		Action: func(c *cli.Context) error {
			return runAnalysis(c, models.ModeDetails)
		},
	}
}

func analyzeCmd() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Analysis mode: details, week, overall (default from config)",
		},
	}, analysisFlags()...)

	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run the analysis in the configured mode",
		ArgsUsage: "<export.json>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			return runAnalysis(c, "")
		},
	}
}

// loadConfig loads the config file named by --config, or the first one
// found, and applies command-line overrides on top.
func loadConfig(c *cli.Context, mode models.Mode) (*config.Config, string, error) {
	cfg, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, source, err
	}

	if mode != "" {
		cfg.Analysis.Mode = string(mode)
	} else if c.IsSet("mode") {
		cfg.Analysis.Mode = c.String("mode")
	}
	if c.IsSet("categorize") {
		cfg.Analysis.Categorize = c.Bool("categorize")
	}
	if c.IsSet("count-unconfirmed") {
		cfg.Analysis.CountUnconfirmed = c.Bool("count-unconfirmed")
	}
	if c.IsSet("skip-weekends") {
		cfg.Analysis.SkipWeekends = c.Bool("skip-weekends")
	}
	if c.IsSet("exclude-weekend-posts") {
		cfg.Analysis.ExcludeWeekendPosts = c.Bool("exclude-weekend-posts")
	}
	if c.IsSet("threshold") {
		cfg.SLO.Thresholds = c.Float64Slice("threshold")
	}
	if c.IsSet("timezone") {
		cfg.Analysis.Timezone = c.String("timezone")
	}
	if c.IsSet("category") {
		cfg.Analysis.Categories = c.StringSlice("category")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("verbose") {
		cfg.Output.Verbose = c.Bool("verbose")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}

	return cfg, source, cfg.Validate()
}

func referenceTime(c *cli.Context) (time.Time, error) {
	if !c.IsSet("now") {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, c.String("now"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return now, nil
}

func runAnalysis(c *cli.Context, mode models.Mode) error {
	path := c.Args().First()
	if path == "" {
		return errMissingExport
	}

	cfg, source, err := loadConfig(c, mode)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now, err := referenceTime(c)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := newLogger(c.App.ErrWriter, cfg.Output.Verbose).With("run_id", runID)
	logger.Debug("configuration loaded", "source", source, "mode", cfg.Analysis.Mode, "timezone", loc.String())

	ds, err := loader.New(loader.WithLocation(loc)).Load(path)
	if err != nil {
		return err
	}
	logger.Debug("export loaded", "path", path, "threads", len(ds.Threads), "skipped", ds.Skipped, "digest", ds.Digest)

	format := output.ParseFormat(cfg.Output.Format)
	opts := []slo.Option{
		slo.WithMode(models.Mode(cfg.Analysis.Mode)),
		slo.WithCategorize(cfg.Analysis.Categorize),
		slo.WithCountUnconfirmed(cfg.Analysis.CountUnconfirmed),
		slo.WithSkipWeekends(cfg.Analysis.SkipWeekends),
		slo.WithExcludeWeekendPosts(cfg.Analysis.ExcludeWeekendPosts),
		slo.WithThresholds(cfg.SLO.Thresholds),
		slo.WithCategories(cfg.Analysis.Categories),
		slo.WithLocation(loc),
		slo.WithNow(now),
	}

	var tracker *progress.Tracker
	if format == output.FormatText && len(ds.Threads) > 0 {
		tracker = progress.NewTracker("Classifying threads", len(ds.Threads), progress.WithWriter(c.App.ErrWriter))
		opts = append(opts, slo.WithProgress(tracker.Tick))
	}

	result, err := slo.New(opts...).Analyze(ds.Threads)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return err
	}

	result.Metadata.Source = ds.Source
	result.Metadata.Digest = ds.Digest
	result.Metadata.SkippedPosts = ds.Skipped
	result.Metadata.RunID = runID
	result.Metadata.Version = version

	for _, w := range result.Warnings {
		logger.Debug("analysis warning", "kind", w.Kind, "thread", w.ThreadID, "message", w.Message)
	}

	formatter, err := newFormatter(c, format, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(report.Build(result)); err != nil {
		return err
	}
	logger.Debug("report written", "format", format, "output", c.String("output"))
	return nil
}

// newFormatter writes to --output when given, otherwise to the app writer.
func newFormatter(c *cli.Context, format output.Format, colored bool) (*output.Formatter, error) {
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	w := c.App.Writer
	if w == nil {
		w = os.Stdout
	}
	return output.NewWriterFormatter(format, w, colored), nil
}
