package astro

import (
	"fmt"
	"strings"
)

const (
	msPerMinute = int64(60 * 1000)
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// UnknownTimezoneError reports a timezone abbreviation missing from the
// offset table. It is a construction error: callers turn it into a
// user-facing reply rather than silently assuming UTC.
type UnknownTimezoneError struct {
	Abbrev string
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("don't know %s timezone", e.Abbrev)
}

// FetchTime is a UTC wall-clock time-of-day at which a fetch recurs daily.
type FetchTime struct {
	hour   int
	minute int
}

// FromClock normalizes a local wall-clock time into UTC.
//
// With a meridiem the hour must be 1..12; "12am" maps to hour 0 and "12pm"
// stays 12. A timezone abbreviation shifts the result by the table offset;
// an unknown abbreviation is an *UnknownTimezoneError.
func FromClock(hour, minute int, meridiem, tz string) (FetchTime, error) {
	if minute < 0 || minute > 59 {
		return FetchTime{}, fmt.Errorf("invalid minute %d", minute)
	}

	switch strings.ToLower(strings.TrimSpace(meridiem)) {
	case "":
		if hour < 0 || hour > 23 {
			return FetchTime{}, fmt.Errorf("invalid hour %d", hour)
		}
	case "am":
		if hour < 1 || hour > 12 {
			return FetchTime{}, fmt.Errorf("invalid hour %d", hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return FetchTime{}, fmt.Errorf("invalid hour %d", hour)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		return FetchTime{}, fmt.Errorf("invalid meridiem %q", meridiem)
	}

	ms := int64(hour)*msPerHour + int64(minute)*msPerMinute
	if tz = strings.TrimSpace(tz); tz != "" {
		off, ok := tzOffsetMinutes(tz)
		if !ok {
			return FetchTime{}, &UnknownTimezoneError{Abbrev: tz}
		}
		ms -= int64(off) * msPerMinute
	}
	return FromMillis(ms), nil
}

// FromMillis restores a FetchTime from a persisted UTC millisecond-of-day.
// Values outside one day (including negatives from timezone math) wrap.
func FromMillis(ms int64) FetchTime {
	ms %= msPerDay
	if ms < 0 {
		ms += msPerDay
	}
	return FetchTime{
		hour:   int(ms / msPerHour),
		minute: int(ms % msPerHour / msPerMinute),
	}
}

func (t FetchTime) Hour() int   { return t.hour }
func (t FetchTime) Minute() int { return t.minute }

// Millis is the persisted form: milliseconds since UTC midnight.
func (t FetchTime) Millis() int64 {
	return int64(t.hour)*msPerHour + int64(t.minute)*msPerMinute
}

// CronSpec is the daily recurrence expression consumed by the scheduler.
func (t FetchTime) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", t.minute, t.hour)
}

// GMT renders the time for humans: unpadded hour, zero-padded minute.
func (t FetchTime) GMT() string {
	return fmt.Sprintf("%d:%02d", t.hour, t.minute)
}
