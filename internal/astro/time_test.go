package astro

import (
	"errors"
	"testing"
)

func TestFromClockVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		hour     int
		minute   int
		meridiem string
		tz       string
		wantHour int
		wantMin  int
	}{
		{name: "plain 24h", hour: 20, minute: 30, wantHour: 20, wantMin: 30},
		{name: "pm shifts", hour: 3, minute: 30, meridiem: "pm", wantHour: 15, wantMin: 30},
		{name: "noon stays", hour: 12, meridiem: "pm", wantHour: 12},
		{name: "midnight wraps", hour: 12, meridiem: "am", wantHour: 0},
		{name: "est offset", hour: 3, minute: 30, meridiem: "pm", tz: "EST", wantHour: 20, wantMin: 30},
		{name: "edt offset", hour: 3, minute: 30, meridiem: "pm", tz: "edt", wantHour: 19, wantMin: 30},
		{name: "negative wraps", hour: 1, meridiem: "am", tz: "AEST", wantHour: 15},
		{name: "half hour zone", hour: 9, minute: 0, tz: "IST", wantHour: 3, wantMin: 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromClock(tt.hour, tt.minute, tt.meridiem, tt.tz)
			if err != nil {
				t.Fatalf("FromClock error: %v", err)
			}
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMin {
				t.Fatalf("got %d:%02d, want %d:%02d", got.Hour(), got.Minute(), tt.wantHour, tt.wantMin)
			}
		})
	}
}

func TestFromClockRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		hour     int
		minute   int
		meridiem string
		tz       string
	}{
		{name: "hour 0 with meridiem", hour: 0, meridiem: "am"},
		{name: "hour 13 with meridiem", hour: 13, meridiem: "pm"},
		{name: "hour 24 plain", hour: 24},
		{name: "minute 60", hour: 1, minute: 60},
		{name: "bad meridiem", hour: 1, meridiem: "xm"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromClock(tt.hour, tt.minute, tt.meridiem, tt.tz); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromClockUnknownTimezone(t *testing.T) {
	t.Parallel()
	_, err := FromClock(9, 0, "am", "XYZ")
	var tzErr *UnknownTimezoneError
	if !errors.As(err, &tzErr) {
		t.Fatalf("expected UnknownTimezoneError, got %v", err)
	}
	if tzErr.Abbrev != "XYZ" {
		t.Fatalf("Abbrev = %q, want XYZ", tzErr.Abbrev)
	}
	if got := tzErr.Error(); got != "don't know XYZ timezone" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFetchTimeMillisRoundTrip(t *testing.T) {
	t.Parallel()
	ft, err := FromClock(23, 59, "", "")
	if err != nil {
		t.Fatalf("FromClock error: %v", err)
	}
	back := FromMillis(ft.Millis())
	if back != ft {
		t.Fatalf("round trip mismatch: %v vs %v", back, ft)
	}
}

func TestFromMillisWrapping(t *testing.T) {
	t.Parallel()
	if got := FromMillis(-msPerHour); got.Hour() != 23 || got.Minute() != 0 {
		t.Fatalf("negative wrap: got %d:%02d", got.Hour(), got.Minute())
	}
	if got := FromMillis(msPerDay + msPerMinute); got.Hour() != 0 || got.Minute() != 1 {
		t.Fatalf("overflow wrap: got %d:%02d", got.Hour(), got.Minute())
	}
}

func TestFetchTimeRendering(t *testing.T) {
	t.Parallel()
	ft, err := FromClock(8, 5, "pm", "")
	if err != nil {
		t.Fatalf("FromClock error: %v", err)
	}
	if got := ft.CronSpec(); got != "5 20 * * *" {
		t.Fatalf("CronSpec = %q", got)
	}
	if got := ft.GMT(); got != "20:05" {
		t.Fatalf("GMT = %q", got)
	}
}
