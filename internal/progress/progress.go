package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for thread classification.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
}

// Option configures a Tracker.
type Option func(*trackerConfig)

type trackerConfig struct {
	out io.Writer
}

// WithWriter sends the bar to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(c *trackerConfig) {
		c.out = w
	}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	cfg := trackerConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cfg.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: cfg.out, label: label}
}

// Tick increments the progress by 1.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Current reports how many ticks have been recorded.
func (t *Tracker) Current() int64 {
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
