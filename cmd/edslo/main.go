package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

var errMissingExport = errors.New("missing export file argument")

// newLogger returns a diagnostics logger on w. Debug records are only
// emitted when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "edslo",
		Usage:   "Ed Discussion response-time SLO analyzer",
		Version: version,
		Description: `edslo reads an Ed Discussion JSON export and reports how quickly and how
well question threads were answered: resolution status, response-time
statistics, and compliance against SLO thresholds.

Threads are Resolved (staff answer), Endorsed (endorsed student answer),
Unconfirmed (student answer only) or Pending (no answers).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"EDSLO_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, json, toon, prometheus",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose diagnostics on stderr",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			overallCmd(),
			weekCmd(),
			detailsCmd(),
			analyzeCmd(),
			configCmd(),
			initCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
