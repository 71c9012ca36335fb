package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaziflow/kazi-sync/internal/store"
)

// Date is a temporal document field normalized at the subscription
// boundary. At rest the store holds its native seconds/nanos timestamp;
// consumers only ever see the plain time value.
type Date struct {
	time.Time
}

// UnmarshalJSON accepts the store-native timestamp object, an RFC 3339
// string, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '{' {
		var ts store.Timestamp
		if err := json.Unmarshal(data, &ts); err != nil {
			return err
		}
		d.Time = ts.Time()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: expected timestamp object or string: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("date: invalid time string %q: %w", s, err)
	}
	d.Time = t.UTC()
	return nil
}

// MarshalJSON emits the normalized RFC 3339 form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339Nano))
}

// Timestamp converts back to the store-native representation.
func (d Date) Timestamp() store.Timestamp {
	return store.NewTimestamp(d.Time)
}
