package metric

import "time"

// Instant is a millisecond-precision UTC point in time, stored as signed
// milliseconds since the Unix epoch. All comparisons and arithmetic
// operate at millisecond resolution.
type Instant int64

// InstantFromMillis wraps a raw milliseconds-since-epoch value, the form
// the reference document's date-time fields (and so the start column) use.
func InstantFromMillis(ms int64) Instant {
	return Instant(ms)
}

// InstantFromTime converts a time.Time to millisecond resolution, truncating
// (not rounding) any sub-millisecond component.
func InstantFromTime(t time.Time) Instant {
	return Instant(t.UnixMilli())
}

// Millis returns the raw milliseconds-since-epoch value.
func (i Instant) Millis() int64 {
	return int64(i)
}

// Time converts back to a time.Time in UTC.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

// String formats the instant as RFC3339 with millisecond precision and a Z
// suffix, e.g. "2023-11-14T22:13:20.000Z".
func (i Instant) String() string {
	return i.Time().Format("2006-01-02T15:04:05.000Z")
}

// Before reports whether i is strictly earlier than other.
func (i Instant) Before(other Instant) bool {
	return i < other
}

// Add returns i shifted by the given number of milliseconds.
func (i Instant) Add(deltaMillis int64) Instant {
	return Instant(int64(i) + deltaMillis)
}

// Sub returns the millisecond span between i and other (i - other).
func (i Instant) Sub(other Instant) int64 {
	return int64(i) - int64(other)
}
