package simulator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/pitwall/internal/domain/message"
)

// Class name pool, cycled when more classes are requested.
var classNames = []string{"GT3", "GT4", "LMP2", "TCR", "Cup"}

// Driver name pool for car registrations.
var driverNames = [][2]string{
	{"Ayrton", "Silva"},
	{"Michele", "Conti"},
	{"Niki", "Huber"},
	{"Jim", "Clarke"},
	{"Gilles", "Noel"},
	{"Stirling", "Mosley"},
	{"Juan", "Reyes"},
	{"Emerson", "Faria"},
	{"Keke", "Rosqvist"},
	{"Denny", "Hume"},
	{"Jacky", "Claes"},
	{"Ronnie", "Pettersson"},
}

// car is one scripted entrant.
type car struct {
	regNo   string
	number  string
	first   string
	last    string
	nation  string
	classNo string
}

// Session is a scripted RMonitor run: a qualifying window followed by a
// race to a checkered flag. Tick output is deterministic for a given
// session so tests can replay it.
type Session struct {
	id        string
	cars      []car
	classes   []string
	qualTicks int
	raceLaps  int
}

// NewSession builds a scripted field of the given size.
func NewSession(cars, classes, qualTicks, raceLaps int) *Session {
	if cars < 2 {
		cars = 2
	}
	if classes < 1 {
		classes = 1
	}
	if classes > len(classNames) {
		classes = len(classNames)
	}
	if qualTicks < 1 {
		qualTicks = 10
	}
	if raceLaps < 1 {
		raceLaps = 10
	}

	s := &Session{
		id:        uuid.NewString(),
		classes:   classNames[:classes],
		qualTicks: qualTicks,
		raceLaps:  raceLaps,
	}
	for i := 0; i < cars; i++ {
		name := driverNames[i%len(driverNames)]
		s.cars = append(s.cars, car{
			regNo:   strconv.Itoa(101 + i),
			number:  strconv.Itoa(i + 1),
			first:   name[0],
			last:    name[1],
			nation:  "USA",
			classNo: strconv.Itoa(i%classes + 1),
		})
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// OpeningBurst is the state-of-the-world sent to every new connection:
// reset, run metadata, classes, registrations, and the initial flag.
func (s *Session) OpeningBurst() [][]byte {
	frames := [][]byte{
		message.Compose(message.KindReset, "09:00:00", "29 Aug 26"),
		message.Compose(message.KindRun, "1", "Qualifying 1"),
	}
	for i, class := range s.classes {
		frames = append(frames, message.Compose(message.KindClass, strconv.Itoa(i+1), class))
	}
	for _, c := range s.cars {
		frames = append(frames, message.Compose(message.KindEntry,
			c.regNo, c.number, "70"+c.regNo, c.first, c.last, c.nation, c.classNo))
	}
	frames = append(frames, message.Compose(message.KindFlag,
		"9999", "00:20:00", "09:00:00", "00:00:00", "Green"))
	return frames
}

// Tick returns the frames for update burst n (1-based). Qualifying ticks
// emit best-time rows, race ticks emit running-order rows, and the final
// tick flies the finish flag.
func (s *Session) Tick(n int) [][]byte {
	if n <= s.qualTicks {
		return s.qualTick(n)
	}
	return s.raceTick(n - s.qualTicks)
}

// Done reports whether the script has run to completion after tick n.
func (s *Session) Done(n int) bool {
	return n > s.qualTicks+s.raceLaps
}

func (s *Session) qualTick(n int) [][]byte {
	order := s.order(n)
	frames := [][]byte{message.Compose(message.KindFlag,
		"9999", s.countdown(n), s.timeOfDay(n), s.elapsed(n), "Green")}
	for pos, idx := range order {
		c := s.cars[idx]
		best := fmt.Sprintf("00:01:%02d.%03d", 10+pos, (idx*137)%1000)
		if n == 1 && pos == len(order)-1 {
			// The slowest car has not set a time yet.
			frames = append(frames, message.Compose(message.KindQualPosition,
				strconv.Itoa(pos+1), c.regNo, "0", message.ZeroDuration))
			continue
		}
		frames = append(frames, message.Compose(message.KindQualPosition,
			strconv.Itoa(pos+1), c.regNo, strconv.Itoa(n), best))
	}
	return frames
}

func (s *Session) raceTick(lap int) [][]byte {
	if lap == 1 {
		// Session change announces the race before any running order.
		return [][]byte{message.Compose(message.KindRun, "2", "Feature Race")}
	}

	flag := "Green"
	if lap > s.raceLaps {
		flag = "Finish"
	}
	lapsToGo := s.raceLaps - lap + 1
	if lapsToGo < 0 {
		lapsToGo = 0
	}

	order := s.order(lap)
	frames := [][]byte{message.Compose(message.KindFlag,
		strconv.Itoa(lapsToGo), s.countdown(lap), s.timeOfDay(lap), s.elapsed(lap), flag)}
	for pos, idx := range order {
		c := s.cars[idx]
		total := fmt.Sprintf("00:%02d:%02d.%03d", lap/2, (20+pos*3+idx)%60, (idx*211)%1000)
		frames = append(frames, message.Compose(message.KindRacePosition,
			strconv.Itoa(pos+1), c.regNo, strconv.Itoa(lap), total))
		frames = append(frames, message.Compose(message.KindPassing,
			c.regNo, fmt.Sprintf("00:01:%02d.%03d", 12+pos, (idx*97)%1000), total))
	}
	return frames
}

// order rotates the field so positions change between ticks.
func (s *Session) order(n int) []int {
	out := make([]int, len(s.cars))
	for i := range out {
		out[i] = (i + n) % len(s.cars)
	}
	return out
}

func (s *Session) countdown(n int) string {
	mins := 20 - n
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("00:%02d:00", mins)
}

func (s *Session) timeOfDay(n int) string {
	return fmt.Sprintf("09:%02d:%02d", n/60, n%60)
}

func (s *Session) elapsed(n int) string {
	return fmt.Sprintf("00:%02d:%02d", n/60, n%60)
}

// Notice returns an informational banner with mild variety.
func Notice() []byte {
	phrases := []string{
		"track temperature 34C",
		"pit lane open",
		"next session on schedule",
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(phrases))))
	return message.Compose(message.KindNotice, phrases[n.Int64()])
}
