// Package display renders derived timing values. The log display is the
// default surface: every pushed value becomes a structured log line, which
// is enough for headless deployments where the HTTP snapshot is the real
// consumer.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// Log writes every pushed value through the structured logger.
type Log struct {
	logger logger.Logger

	mu         sync.Mutex
	localClock bool
}

// Option applies a configuration option to the Log display.
type Option func(*Log)

// WithLogger sets a custom logger for the display.
func WithLogger(l logger.Logger) Option {
	return func(d *Log) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewLog creates a logging display surface.
func NewLog(opts ...Option) *Log {
	d := &Log{logger: logger.Get().Named("display")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Log) ShowRun(description string) {
	d.logger.Info(context.Background(), "run", logger.String("description", description))
}

func (d *Log) ShowFlag(condition string) {
	d.logger.Info(context.Background(), "flag", logger.String("condition", condition))
}

func (d *Log) ShowLaps(laps, lapsToGo string) {
	d.logger.Info(context.Background(), "laps",
		logger.String("laps", laps),
		logger.String("laps_to_go", lapsToGo),
	)
}

func (d *Log) ShowClock(elapsed, remaining, timeOfDay string) {
	if timeOfDay == "" && d.usingLocalClock() {
		timeOfDay = time.Now().Format("15:04:05")
	}
	d.logger.Info(context.Background(), "clock",
		logger.String("elapsed", elapsed),
		logger.String("remaining", remaining),
		logger.String("time_of_day", timeOfDay),
	)
}

func (d *Log) ShowLeaders(overall, byClass string) {
	d.logger.Info(context.Background(), "leaders",
		logger.String("overall", overall),
		logger.String("by_class", byClass),
	)
}

func (d *Log) ShowNotice(text string) {
	if text == "" {
		return
	}
	d.logger.Info(context.Background(), "notice", logger.String("text", text))
}

func (d *Log) ShowError(text string) {
	if text == "" {
		return
	}
	d.logger.Warn(context.Background(), "server error", logger.String("text", text))
}

func (d *Log) ShowVersion(v string) {
	d.logger.Info(context.Background(), "server version", logger.String("version", v))
}

// UseLocalClock switches the time-of-day field to locally-derived values
// while no server is driving it.
func (d *Log) UseLocalClock(on bool) {
	d.mu.Lock()
	d.localClock = on
	d.mu.Unlock()
}

func (d *Log) usingLocalClock() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.localClock
}
