// Package message decodes the tag-prefixed timing feed into typed records.
//
// Every inbound frame is an ordered list of fields whose first element is a
// short tag ("$A", "$F", ":TZ", ...). The codec turns each frame into one
// of the types below; unknown tags decode into Raw rather than failing, so
// a newer server never breaks an older client.
package message

import "strings"

// Kind identifies a record's schema.
type Kind string

// Feed record tags. The "$" family carries timing data; the ":" family
// carries server control messages.
const (
	KindEntry        Kind = "$A"
	KindRun          Kind = "$B"
	KindClass        Kind = "$C"
	KindCompetitor   Kind = "$COMP"
	KindExtra        Kind = "$E"
	KindFlag         Kind = "$F"
	KindRacePosition Kind = "$G"
	KindQualPosition Kind = "$H"
	KindReset        Kind = "$I"
	KindPassing      Kind = "$J"

	KindServerError Kind = ":E"
	KindNotice      Kind = ":M"
	KindOptions     Kind = ":OPT"
	KindReload      Kind = ":R"
	KindTimezone    Kind = ":TZ"
	KindVersion     Kind = ":V"
)

// Client-to-server handshake tags. These are only ever composed, never
// decoded; the relay does not echo them back.
const (
	KindClientIdent   Kind = "%U"
	KindClientVersion Kind = "%V"
	KindClientOptions Kind = "%O"
)

// ZeroDuration is the all-zero time value meaning "not yet timed".
const ZeroDuration = "00:00:00.000"

// LapsNotApplicable is the laps-to-go sentinel meaning "hide the field".
const LapsNotApplicable = 9999

// inactiveRunID marks the placeholder run the server emits between sessions.
const inactiveRunID = 95

// Message is one decoded feed record.
type Message interface {
	// Kind returns the record's tag.
	Kind() Kind
	// Fields returns the record's original field list, tag first.
	Fields() []string
}

// record carries the raw tuple every typed message is built from.
type record struct {
	kind   Kind
	fields []string
}

func (r record) Kind() Kind       { return r.kind }
func (r record) Fields() []string { return r.fields }

// Raw is a record with an unrecognized tag, kept for passthrough.
type Raw struct{ record }

// Entry registers a car ($A): who drives it and which class it runs in.
type Entry struct {
	record
	RegNo       string
	CarNumber   string
	Transponder string
	FirstName   string
	LastName    string
	Extra       string
	ClassNo     string
}

// DisplayName joins the driver's first and last name.
func (e Entry) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

// Competitor is the extended registration record ($COMP). It carries the
// same identity data as Entry with the class number in a different slot.
type Competitor struct {
	record
	RegNo     string
	CarNumber string
	ClassNo   string
	FirstName string
	LastName  string
	Extra     string
	Extra2    string
}

// DisplayName joins the driver's first and last name.
func (c Competitor) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Run describes the current run/session ($B).
type Run struct {
	record
	ID          int
	Description string
	// Active is false for the placeholder run emitted between sessions.
	Active bool
}

// Class registers a competition class ($C).
type Class struct {
	record
	ClassNo     string
	Description string
}

// ExtraInfo is a free-form key/value pair about the session ($E).
type ExtraInfo struct {
	record
	Key   string
	Value string
}

// Flag carries flag and clock state ($F).
type Flag struct {
	record
	// LapsToGo is LapsNotApplicable when the field should be hidden.
	LapsToGo      int
	TimeRemaining string
	TimeOfDay     string
	Elapsed       string
	// Condition is the trimmed flag text; empty means no flag.
	Condition string
}

// RacePosition is one row of the race running order ($G).
type RacePosition struct {
	record
	Position  int
	RegNo     string
	Laps      int
	TotalTime string
}

// QualPosition is one row of the practice/qualifying order ($H).
type QualPosition struct {
	record
	Position int
	RegNo    string
	BestLap  int
	BestTime string
	// Untimed is set when the row carries the zero-duration sentinel.
	Untimed bool
}

// Reset instructs the client to discard all session state ($I).
type Reset struct {
	record
	TimeOfDay string
	Date      string
}

// Passing reports a single line crossing ($J).
type Passing struct {
	record
	RegNo     string
	LastLap   string
	TotalTime string
}

// ServerError is a server-declared error banner (:E). Empty text clears it.
type ServerError struct {
	record
	Text string
}

// Notice is an informational banner (:M).
type Notice struct {
	record
	Text string
}

// Options is a server-pushed display options override (:OPT).
type Options struct {
	record
	Value string
}

// Reload instructs the client to reload itself (:R).
type Reload struct{ record }

// Timezone announces the server's timezone (:TZ).
type Timezone struct {
	record
	Name string
}

// Version announces the server's version string (:V).
type Version struct {
	record
	Value string
}
