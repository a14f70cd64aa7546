// Package dates normalizes the heterogeneous scheduled-at representations
// that accumulated in the appointments collection over time (RFC3339
// strings, local datetime strings, epoch numbers, Firestore-style
// seconds/nanos objects) into a single comparable instant.
package dates

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsable is returned when a value cannot be interpreted as an
// instant. Callers in the sync path exclude such records from candidacy
// instead of failing the whole recompute.
var ErrUnparsable = errors.New("unparsable date value")

// Accepted string layouts, most specific first.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize converts a raw stored value into a time.Time.
func Normalize(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, ErrUnparsable
	case time.Time:
		if d.IsZero() {
			return time.Time{}, ErrUnparsable
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, ErrUnparsable
		}
		return *d, nil
	case string:
		return NormalizeString(d)
	case []byte:
		return NormalizeString(string(d))
	case int64:
		return fromEpoch(d), nil
	case int:
		return fromEpoch(int64(d)), nil
	case float64:
		return fromEpoch(int64(d)), nil
	case json.Number:
		n, err := d.Int64()
		if err != nil {
			return time.Time{}, ErrUnparsable
		}
		return fromEpoch(n), nil
	case map[string]interface{}:
		// Firestore Timestamp export shape: {"seconds": N, "nanoseconds": M}
		if secs, ok := numberField(d, "seconds"); ok {
			nanos, _ := numberField(d, "nanoseconds")
			return time.Unix(secs, nanos).UTC(), nil
		}
		return time.Time{}, ErrUnparsable
	default:
		return time.Time{}, ErrUnparsable
	}
}

// NormalizeString parses a stored string value. It accepts the layouts
// above, bare epoch digits (seconds or milliseconds), and JSON objects
// carrying a seconds field.
func NormalizeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparsable
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, ErrUnparsable
		}
		return fromEpoch(n), nil
	}

	if strings.HasPrefix(s, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return Normalize(obj)
		}
	}

	return time.Time{}, ErrUnparsable
}

// FormatNextAppointment renders an instant the way the patients collection
// stores next_appointment: second precision, seconds zeroed, UTC, no zone
// suffix.
func FormatNextAppointment(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04") + ":00"
}

// fromEpoch interprets a bare number as epoch seconds, or epoch
// milliseconds when the magnitude makes seconds implausible.
func fromEpoch(n int64) time.Time {
	const msThreshold = int64(1e11) // ~5138 AD in seconds, ~1973 in millis
	if n > msThreshold || n < -msThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func isDigits(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func numberField(obj map[string]interface{}, key string) (int64, bool) {
	switch n := obj[key].(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		v, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
