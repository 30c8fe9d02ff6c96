// Package standings maintains one session's running order and the leader
// strings derived from it.
//
// Two trackers exist side by side for the lifetime of the client — one fed
// by race position rows, one by qualifying rows — and the session selector
// decides which one is visible. A tracker never discards its rows when it
// goes invisible, so flipping back shows continuity.
package standings

import (
	"sort"
	"strings"

	"github.com/okian/pitwall/internal/domain/message"
)

// defaultMaxLeaders bounds the leader strings when no option overrides it.
const defaultMaxLeaders = 3

// Roster resolves car and class identity for leader string composition.
type Roster interface {
	CarName(regNo string) string
	CarClass(regNo string) string
	ClassName(classNo string) string
}

// row is one populated slot in the running order.
type row struct {
	regNo string
	mark  string // raw time or lap field, kept for diagnostics
}

// Tracker holds a sparse running order and its cached leader text.
// It is owned by the dispatch loop and not safe for concurrent use.
type Tracker struct {
	roster     Roster
	maxLeaders int

	// positions[0] is P1. Slots may be populated out of order; nil means
	// the position has not been reported yet.
	positions []*row

	overall      string
	classText    string
	classLeaders map[string]string
}

// New creates an empty Tracker resolving against the given roster.
func New(roster Roster, opts ...Option) *Tracker {
	t := &Tracker{
		roster:     roster,
		maxLeaders: defaultMaxLeaders,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// OverallLeaders returns the cached top-N leader string.
func (t *Tracker) OverallLeaders() string { return t.overall }

// ClassLeaders returns the cached per-class leader string.
func (t *Tracker) ClassLeaders() string { return t.classText }

// Update applies one position row and recomputes the affected leader
// strings. The returned flags report whether the overall or per-class
// string actually changed, so callers can skip redundant display pushes.
//
// A row whose mark is the zero-duration sentinel is cleared instead of
// recorded — a car with no time on the board must not displace a timed
// leader. Position 1 is exempt: the overall leader is always shown once
// reported.
func (t *Tracker) Update(position int, regNo, mark string) (overallChanged, classChanged bool) {
	if position < 1 {
		return false, false
	}

	idx := position - 1
	for len(t.positions) <= idx {
		t.positions = append(t.positions, nil)
	}
	if position > 1 && mark == message.ZeroDuration {
		t.positions[idx] = nil
	} else {
		t.positions[idx] = &row{regNo: regNo, mark: mark}
	}

	if position <= t.maxLeaders {
		if s := t.composeOverall(); s != t.overall {
			t.overall = s
			overallChanged = true
		}
	}

	// Only the reported car's class is recomputed; rows for other classes
	// are untouched by this update.
	if classNo := t.roster.CarClass(regNo); classNo != "" {
		names := t.composeClass(classNo)
		if names != t.classLeaders[classNo] {
			t.classLeaders[classNo] = names
			if s := t.composeClassText(); s != t.classText {
				t.classText = s
				classChanged = true
			}
		}
	}

	return overallChanged, classChanged
}

// Reset clears the running order and all cached leader text.
func (t *Tracker) Reset() {
	t.positions = nil
	t.overall = ""
	t.classText = ""
	t.classLeaders = make(map[string]string)
}

// composeOverall walks P1..Pmax in order, stopping at the first unset
// slot. Unresolved car names contribute an empty element so the string
// corrects itself once the registration arrives.
func (t *Tracker) composeOverall() string {
	names := make([]string, 0, t.maxLeaders)
	for i := 0; i < t.maxLeaders && i < len(t.positions); i++ {
		if t.positions[i] == nil {
			break
		}
		names = append(names, t.roster.CarName(t.positions[i].regNo))
	}
	return strings.Join(names, ", ")
}

// composeClass walks every populated row in position order and collects up
// to maxLeaders cars belonging to the class.
func (t *Tracker) composeClass(classNo string) string {
	names := make([]string, 0, t.maxLeaders)
	for _, r := range t.positions {
		if r == nil {
			continue
		}
		if t.roster.CarClass(r.regNo) != classNo {
			continue
		}
		names = append(names, t.roster.CarName(r.regNo))
		if len(names) == t.maxLeaders {
			break
		}
	}
	return strings.Join(names, ", ")
}

// composeClassText concatenates "<description>: <names>" for every class
// with a non-empty leader list. The sort key is the composed string, not
// the description alone; the wire protocol's reference client orders this
// way and downstream displays expect it.
func (t *Tracker) composeClassText() string {
	parts := make([]string, 0, len(t.classLeaders))
	for classNo, names := range t.classLeaders {
		if names == "" {
			continue
		}
		parts = append(parts, t.roster.ClassName(classNo)+": "+names)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
