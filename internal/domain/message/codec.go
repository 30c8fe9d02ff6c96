package message

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// probe is the literal liveness frame; it never reaches the codec's
// structured path.
const probe = "ping"

// IsProbe reports whether a frame is the server's liveness probe.
func IsProbe(payload []byte) bool {
	return strings.TrimSpace(string(payload)) == probe
}

// Decode turns one transport frame into a typed Message. Frames are JSON
// arrays as sent by the relay, or raw comma-separated sentences as emitted
// by timing hardware; both carry the same ordered field list. Unknown tags
// decode into Raw. A nil error means the message is safe to dispatch.
func Decode(payload []byte) (Message, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return nil, ErrEmptyFrame
	}

	var (
		fields []string
		err    error
	)
	if strings.HasPrefix(text, "[") {
		fields, err = jsonFields(text)
	} else {
		fields, err = csvFields(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyFrame
	}

	rec := record{kind: Kind(fields[0]), fields: fields}
	return build(rec)
}

// Encode serializes a decoded message back into a JSON array frame,
// preserving the original field tuple.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m.Fields())
}

// Compose builds a JSON array frame from a tag and its fields. The
// simulator uses it to emit feed sentences without round-tripping through
// typed messages.
func Compose(kind Kind, fields ...string) []byte {
	all := append([]string{string(kind)}, fields...)
	out, _ := json.Marshal(all)
	return out
}

// jsonFields flattens a JSON array of strings/numbers into strings.
func jsonFields(text string) ([]string, error) {
	var raw []any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	fields := make([]string, len(raw))
	for i, v := range raw {
		switch t := v.(type) {
		case string:
			fields[i] = t
		case float64:
			fields[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			fields[i] = ""
		default:
			return nil, fmt.Errorf("field %d has unsupported type %T", i, v)
		}
	}
	return fields, nil
}

// csvFields parses one comma-separated sentence with quoted fields.
func csvFields(text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	return r.Read()
}

// build constructs the typed message for a record, enforcing the minimum
// field count each tag requires.
func build(rec record) (Message, error) {
	need := func(n int) error {
		// n counts data fields, excluding the tag itself.
		if len(rec.fields) < n+1 {
			return fmt.Errorf("%w: %s has %d of %d fields", ErrShortRecord, rec.kind, len(rec.fields)-1, n)
		}
		return nil
	}
	f := func(i int) string { return rec.fields[i] }

	switch rec.kind {
	case KindEntry:
		if err := need(7); err != nil {
			return nil, err
		}
		return Entry{
			record:      rec,
			RegNo:       f(1),
			CarNumber:   f(2),
			Transponder: f(3),
			FirstName:   f(4),
			LastName:    f(5),
			Extra:       f(6),
			ClassNo:     f(7),
		}, nil

	case KindCompetitor:
		if err := need(7); err != nil {
			return nil, err
		}
		return Competitor{
			record:    rec,
			RegNo:     f(1),
			CarNumber: f(2),
			ClassNo:   f(3),
			FirstName: f(4),
			LastName:  f(5),
			Extra:     f(6),
			Extra2:    f(7),
		}, nil

	case KindRun:
		if err := need(2); err != nil {
			return nil, err
		}
		id, err := atoi(f(1))
		if err != nil {
			return nil, fmt.Errorf("%w: run id: %s", ErrMalformed, err)
		}
		return Run{
			record:      rec,
			ID:          id,
			Description: f(2),
			Active:      id != inactiveRunID,
		}, nil

	case KindClass:
		if err := need(2); err != nil {
			return nil, err
		}
		return Class{record: rec, ClassNo: f(1), Description: f(2)}, nil

	case KindExtra:
		if err := need(2); err != nil {
			return nil, err
		}
		return ExtraInfo{record: rec, Key: f(1), Value: f(2)}, nil

	case KindFlag:
		if err := need(5); err != nil {
			return nil, err
		}
		laps, err := atoi(f(1))
		if err != nil {
			return nil, fmt.Errorf("%w: laps to go: %s", ErrMalformed, err)
		}
		return Flag{
			record:        rec,
			LapsToGo:      laps,
			TimeRemaining: f(2),
			TimeOfDay:     f(3),
			Elapsed:       f(4),
			Condition:     strings.TrimSpace(f(5)),
		}, nil

	case KindRacePosition:
		if err := need(4); err != nil {
			return nil, err
		}
		pos, err := atoi(f(1))
		if err != nil {
			return nil, fmt.Errorf("%w: position: %s", ErrMalformed, err)
		}
		laps, err := atoi(f(3))
		if err != nil {
			return nil, fmt.Errorf("%w: laps: %s", ErrMalformed, err)
		}
		return RacePosition{
			record:    rec,
			Position:  pos,
			RegNo:     f(2),
			Laps:      laps,
			TotalTime: f(4),
		}, nil

	case KindQualPosition:
		if err := need(4); err != nil {
			return nil, err
		}
		pos, err := atoi(f(1))
		if err != nil {
			return nil, fmt.Errorf("%w: position: %s", ErrMalformed, err)
		}
		lap, err := atoi(f(3))
		if err != nil {
			return nil, fmt.Errorf("%w: best lap: %s", ErrMalformed, err)
		}
		return QualPosition{
			record:   rec,
			Position: pos,
			RegNo:    f(2),
			BestLap:  lap,
			BestTime: f(4),
			Untimed:  lap == 0 || f(4) == ZeroDuration,
		}, nil

	case KindReset:
		if err := need(2); err != nil {
			return nil, err
		}
		return Reset{record: rec, TimeOfDay: f(1), Date: f(2)}, nil

	case KindPassing:
		if err := need(3); err != nil {
			return nil, err
		}
		last := f(2)
		if last == ZeroDuration {
			last = ""
		}
		return Passing{record: rec, RegNo: f(1), LastLap: last, TotalTime: f(3)}, nil

	case KindServerError:
		if err := need(1); err != nil {
			return nil, err
		}
		return ServerError{record: rec, Text: f(1)}, nil

	case KindNotice:
		if err := need(1); err != nil {
			return nil, err
		}
		return Notice{record: rec, Text: f(1)}, nil

	case KindOptions:
		if err := need(1); err != nil {
			return nil, err
		}
		return Options{record: rec, Value: f(1)}, nil

	case KindReload:
		return Reload{record: rec}, nil

	case KindTimezone:
		if err := need(1); err != nil {
			return nil, err
		}
		return Timezone{record: rec, Name: f(1)}, nil

	case KindVersion:
		if err := need(1); err != nil {
			return nil, err
		}
		return Version{record: rec, Value: f(1)}, nil
	}

	return Raw{record: rec}, nil
}

// atoi parses an integer field, treating empty as zero the way the feed
// does for lap counters.
func atoi(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
