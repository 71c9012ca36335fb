package store

import (
	"encoding/json"
	"time"
)

// Timestamp is the store-native temporal value: seconds plus nanoseconds
// since the Unix epoch. Document fields hold timestamps in this form at
// rest; the model layer normalizes them to time.Time before rows are
// exposed to consumers.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// NewTimestamp converts a time.Time to the store representation.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Now returns the current instant as a store timestamp.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time returns the equivalent time.Time in UTC. The conversion round-trips
// to the same instant.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero reports whether the timestamp is the zero value.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanos == 0
}

// TimestampFromField decodes a loosely typed snapshot field into a
// Timestamp. Accepted forms: a Timestamp value, a map with seconds/nanos
// (the JSON wire shape), or an RFC 3339 string. ok is false otherwise.
func TimestampFromField(v interface{}) (Timestamp, bool) {
	switch tv := v.(type) {
	case Timestamp:
		return tv, true
	case *Timestamp:
		if tv != nil {
			return *tv, true
		}
	case map[string]interface{}:
		raw, err := json.Marshal(tv)
		if err != nil {
			return Timestamp{}, false
		}
		var ts Timestamp
		if err := json.Unmarshal(raw, &ts); err != nil {
			return Timestamp{}, false
		}
		// Reject arbitrary maps that merely decoded to the zero value.
		if _, hasSec := tv["seconds"]; !hasSec {
			return Timestamp{}, false
		}
		return ts, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, tv)
		if err != nil {
			return Timestamp{}, false
		}
		return NewTimestamp(t), true
	}
	return Timestamp{}, false
}
