// Package app owns one connection session's aggregation state and routes
// every decoded message to the component that consumes it.
package app

import (
	"context"
	"sync"

	"github.com/okian/pitwall/internal/domain/registry"
	"github.com/okian/pitwall/internal/domain/session"
	"github.com/okian/pitwall/internal/domain/standings"
	"github.com/okian/pitwall/internal/domain/types"
	"github.com/okian/pitwall/pkg/logger"
)

// Display is the external surface derived values are pushed to. It
// renders; the service only decides what and when to push.
type Display interface {
	ShowRun(description string)
	ShowFlag(condition string)
	ShowLaps(laps, lapsToGo string)
	ShowClock(elapsed, remaining, timeOfDay string)
	ShowLeaders(overall, byClass string)
	ShowNotice(text string)
	ShowError(text string)
	ShowVersion(v string)
	// UseLocalClock tells the display to fall back to locally-derived
	// values while no server is driving the clock fields.
	UseLocalClock(on bool)
}

// nopDisplay is used until a real display is wired in.
type nopDisplay struct{}

func (nopDisplay) ShowRun(string)             {}
func (nopDisplay) ShowFlag(string)            {}
func (nopDisplay) ShowLaps(string, string)    {}
func (nopDisplay) ShowClock(_, _, _ string)   {}
func (nopDisplay) ShowLeaders(_, _ string)    {}
func (nopDisplay) ShowNotice(string)          {}
func (nopDisplay) ShowError(string)           {}
func (nopDisplay) ShowVersion(string)         {}
func (nopDisplay) UseLocalClock(bool)         {}

// Service holds the registry, both leaderboard trackers, and the session
// selector for the lifetime of the process. The dispatch worker is the
// only writer of aggregation state; the mutex exists so HTTP readers can
// take consistent snapshots while updates flow.
type Service struct {
	mu sync.RWMutex

	registry *registry.Registry
	race     *standings.Tracker
	qual     *standings.Tracker
	selector session.Selector

	// sessionInfo holds free-form $E key/value pairs about the session.
	sessionInfo map[string]string

	display    Display
	maxLeaders int

	// timezone is the client-side override; when set, server :TZ pushes
	// are ignored.
	timezone string

	// reload is invoked when the server instructs the client to reload.
	reload func()

	// optionsSink receives server-pushed display options overrides.
	optionsSink func(string)

	snap types.Snapshot

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDisplay sets the display surface derived values are pushed to.
func WithDisplay(d Display) Option {
	return func(s *Service) {
		if d != nil {
			s.display = d
		}
	}
}

// WithMaxLeaders sets how many cars the leader strings list.
func WithMaxLeaders(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaders = n
		}
	}
}

// WithTimezone sets a client-side timezone override.
func WithTimezone(tz string) Option {
	return func(s *Service) {
		s.timezone = tz
	}
}

// WithReloadFunc sets the hook invoked on a server reload instruction.
func WithReloadFunc(fn func()) Option {
	return func(s *Service) {
		if fn != nil {
			s.reload = fn
		}
	}
}

// WithOptionsSink sets the receiver for server-pushed options overrides.
func WithOptionsSink(fn func(string)) Option {
	return func(s *Service) {
		if fn != nil {
			s.optionsSink = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with empty aggregation state.
func New(opts ...Option) *Service {
	s := &Service{
		display:     nopDisplay{},
		maxLeaders:  3,
		sessionInfo: make(map[string]string),
		reload:      nil,
		optionsSink: nil,
		logger:      logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry = registry.New()
	s.race = standings.New(s.registry, standings.WithMaxLeaders(s.maxLeaders))
	s.qual = standings.New(s.registry, standings.WithMaxLeaders(s.maxLeaders))
	s.snap.Timezone = s.timezone
	return s
}

// SetConnected records transport state. While disconnected the display
// falls back to its local clock; aggregation state is deliberately kept,
// a reconnect is not a session reset.
func (s *Service) SetConnected(connected bool) {
	s.mu.Lock()
	s.snap.Connected = connected
	s.mu.Unlock()
	s.display.UseLocalClock(!connected)
}

// Snapshot returns a copy of the current display values.
func (s *Service) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"connected":       s.snap.Connected,
		"qualifying":      s.selector.Qualifying(),
		"run":             s.snap.RunDescription,
		"classes":         len(s.registry.Classes()),
		"session_info":    len(s.sessionInfo),
		"overall_leaders": s.snap.OverallLeaders,
	}
}

// active returns the tracker currently visible on the display.
func (s *Service) active() *standings.Tracker {
	if s.selector.Qualifying() {
		return s.qual
	}
	return s.race
}

// pushLeaders publishes the active tracker's cached leader strings.
func (s *Service) pushLeaders(_ context.Context) {
	t := s.active()
	s.snap.OverallLeaders = t.OverallLeaders()
	s.snap.ClassLeaders = t.ClassLeaders()
	s.display.ShowLeaders(s.snap.OverallLeaders, s.snap.ClassLeaders)
}
