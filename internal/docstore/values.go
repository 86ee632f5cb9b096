package docstore

import "time"

// Read helpers with per-field defaulting. The original wire format is
// lenient: fields may be absent, null, or (after a JSON round trip
// through an embedded backend) carry a widened type. Each helper
// normalizes to the canonical Go type.

// String returns the string value under key, or "" when absent, null,
// or of another type.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Bool returns the bool value under key, defaulting to false.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// IntOr returns the integer value under key, accepting the numeric
// widenings a JSON or BSON round trip produces.
func (d Document) IntOr(key string, fallback int) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// TimeOr returns the timestamp under key, or fallback when the field is
// absent or null. A missing timestamp on read defaults to "now" at read
// time by the callers' convention; the fallback is never persisted.
func (d Document) TimeOr(key string, fallback time.Time) time.Time {
	if t, ok := asTime(d[key]); ok {
		return t
	}
	return fallback
}

// TimePtr returns the timestamp under key, or nil when absent or null.
func (d Document) TimePtr(key string) *time.Time {
	if t, ok := asTime(d[key]); ok {
		return &t
	}
	return nil
}

// List returns the slice value under key, or nil.
func (d Document) List(key string) []any {
	l, _ := d[key].([]any)
	return l
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// NullableTime converts an optional timestamp to its wire form: the
// instant itself, or an explicit null when absent.
func NullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
