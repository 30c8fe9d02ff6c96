// Package session classifies runs and decides which leaderboard is
// visible.
package session

import "regexp"

// A run is qualifying-like when its description matches the qualifying
// heuristic and does not also claim to be a race ("Qualifying Race" counts
// as a race).
var (
	qualifyingPattern = regexp.MustCompile(`(?i)\b(qual|practice|test)`)
	racePattern       = regexp.MustCompile(`(?i)\brace`)
)

// IsQualifying classifies a run description.
func IsQualifying(description string) bool {
	return qualifyingPattern.MatchString(description) && !racePattern.MatchString(description)
}

// Selector tracks the current session mode. The zero value selects race
// mode, matching a feed that never announces a run.
type Selector struct {
	qualifying bool
}

// Qualifying reports whether the qualifying leaderboard is the visible one.
func (s *Selector) Qualifying() bool { return s.qualifying }

// Observe classifies a new run description and flips the mode when the
// classification differs from the current one. It returns true when the
// visible leaderboard must swap. Nothing else changes: the now-hidden
// tracker keeps its rows so re-entering that mode shows continuity.
func (s *Selector) Observe(description string) (swapped bool) {
	q := IsQualifying(description)
	if q == s.qualifying {
		return false
	}
	s.qualifying = q
	return true
}

// Reset returns the selector to race mode.
func (s *Selector) Reset() {
	s.qualifying = false
}
