package app

import (
	"context"
	"strconv"

	"github.com/okian/pitwall/internal/domain/message"
	"github.com/okian/pitwall/internal/domain/types"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Apply routes one decoded message. It is called only from the dispatch
// worker, so messages are applied strictly in delivery order.
func (s *Service) Apply(ctx context.Context, m message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg := m.(type) {
	case message.Entry:
		s.registry.SetCar(msg.RegNo, msg.DisplayName())
		if msg.ClassNo != "" {
			s.registry.SetCarClass(msg.RegNo, msg.ClassNo)
		}

	case message.Competitor:
		s.registry.SetCar(msg.RegNo, msg.DisplayName())
		if msg.ClassNo != "" {
			s.registry.SetCarClass(msg.RegNo, msg.ClassNo)
		}

	case message.Class:
		s.registry.SetClass(msg.ClassNo, msg.Description)

	case message.Run:
		s.applyRun(ctx, msg)

	case message.ExtraInfo:
		s.sessionInfo[msg.Key] = msg.Value

	case message.Flag:
		s.applyFlag(msg)

	case message.RacePosition:
		s.applyRacePosition(ctx, msg)

	case message.QualPosition:
		s.applyQualPosition(ctx, msg)

	case message.Reset:
		s.applyReset(msg)

	case message.Passing:
		s.logger.Debug(ctx, "passing report",
			logger.String("regno", msg.RegNo),
			logger.String("last_lap", msg.LastLap),
		)

	case message.ServerError:
		s.snap.Error = msg.Text
		s.display.ShowError(msg.Text)

	case message.Notice:
		s.snap.Message = msg.Text
		s.display.ShowNotice(msg.Text)

	case message.Options:
		if s.optionsSink != nil {
			s.optionsSink(msg.Value)
		}

	case message.Reload:
		s.logger.Info(ctx, "server requested reload")
		if s.reload != nil {
			s.reload()
		}

	case message.Timezone:
		// A client-side override beats the server's suggestion.
		if s.timezone == "" {
			s.snap.Timezone = msg.Name
		}

	case message.Version:
		s.snap.ServerVersion = msg.Value
		s.display.ShowVersion(msg.Value)

	case message.Raw:
		s.logger.Debug(ctx, "ignoring unknown record", logger.String("tag", string(m.Kind())))
	}
}

// applyRun records the run description and swaps the visible leaderboard
// when the session type changes.
func (s *Service) applyRun(ctx context.Context, msg message.Run) {
	s.snap.RunDescription = msg.Description
	s.snap.RunActive = msg.Active
	s.display.ShowRun(msg.Description)

	if s.selector.Observe(msg.Description) {
		s.snap.Qualifying = s.selector.Qualifying()
		metrics.RecordModeSwap(s.selector.Qualifying())
		s.logger.Info(ctx, "session mode changed",
			logger.String("run", msg.Description),
			logger.Bool("qualifying", s.selector.Qualifying()),
		)
		// The newly visible tracker's cached strings replace the old
		// ones even if they happen to be equal.
		s.pushLeaders(ctx)
	}
}

// applyFlag normalizes flag and clock fields. Finish is shown as
// Checkered; the 9999 laps sentinel and the zero time-remaining value
// blank their fields.
func (s *Service) applyFlag(msg message.Flag) {
	cond := msg.Condition
	if cond == "Finish" {
		cond = "Checkered"
	}
	if cond != s.snap.Flag {
		s.snap.Flag = cond
		s.display.ShowFlag(cond)
	}

	lapsToGo := ""
	if msg.LapsToGo != message.LapsNotApplicable {
		lapsToGo = strconv.Itoa(msg.LapsToGo)
	}
	remaining := msg.TimeRemaining
	if remaining == "00:00:00" {
		remaining = ""
	}

	s.snap.LapsToGo = lapsToGo
	s.snap.TimeRemaining = remaining
	s.snap.TimeOfDay = msg.TimeOfDay
	s.snap.Elapsed = msg.Elapsed
	s.display.ShowLaps(s.snap.Laps, lapsToGo)
	s.display.ShowClock(msg.Elapsed, remaining, msg.TimeOfDay)
}

// applyRacePosition feeds the race tracker. Updates while qualifying is
// on display only refresh the hidden tracker's cache.
func (s *Service) applyRacePosition(ctx context.Context, msg message.RacePosition) {
	overallChanged, classChanged := s.race.Update(msg.Position, msg.RegNo, msg.TotalTime)
	if overallChanged || classChanged {
		metrics.RecordLeaderboardRecompute("race")
	}

	if msg.Position == 1 {
		s.snap.Laps = strconv.Itoa(msg.Laps)
	}

	if !s.selector.Qualifying() && (overallChanged || classChanged) {
		s.pushLeaders(ctx)
	}
}

// applyQualPosition feeds the qualifying tracker. Untimed rows are passed
// through as the zero-duration sentinel so the tracker clears them.
func (s *Service) applyQualPosition(ctx context.Context, msg message.QualPosition) {
	mark := msg.BestTime
	if msg.Untimed {
		mark = message.ZeroDuration
	}
	overallChanged, classChanged := s.qual.Update(msg.Position, msg.RegNo, mark)
	if overallChanged || classChanged {
		metrics.RecordLeaderboardRecompute("qualifying")
	}

	if s.selector.Qualifying() && (overallChanged || classChanged) {
		s.pushLeaders(ctx)
	}
}

// applyReset reinitializes every owned component before anything new is
// pushed, so observers never see a half-reset state.
func (s *Service) applyReset(msg message.Reset) {
	s.registry.Reset()
	s.race.Reset()
	s.qual.Reset()
	s.selector.Reset()
	s.sessionInfo = make(map[string]string)

	connected := s.snap.Connected
	tz := s.snap.Timezone
	version := s.snap.ServerVersion
	s.snap = types.Snapshot{
		Connected:     connected,
		Timezone:      tz,
		ServerVersion: version,
		TimeOfDay:     msg.TimeOfDay,
	}
	metrics.RecordSessionReset()

	s.display.ShowRun("")
	s.display.ShowFlag("")
	s.display.ShowLaps("", "")
	s.display.ShowClock("", "", msg.TimeOfDay)
	s.display.ShowLeaders("", "")
	s.display.ShowNotice("")
	s.display.ShowError("")
}
