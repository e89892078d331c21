package timecode

import (
	"math"
	"testing"
)

func TestFormatSRT(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00,000"},
		{name: "half second", seconds: 0.5, want: "00:00:00,500"},
		{name: "hour minute second", seconds: 3661.5, want: "01:01:01,500"},
		{name: "millisecond rounding", seconds: 1.2344, want: "00:00:01,234"},
		{name: "carry into seconds", seconds: 1.9996, want: "00:00:02,000"},
		{name: "carry into minutes", seconds: 59.9999, want: "00:01:00,000"},
		{name: "ten hours", seconds: 36000, want: "10:00:00,000"},
		{name: "negative clamps", seconds: -3, want: "00:00:00,000"},
		{name: "nan clamps", seconds: math.NaN(), want: "00:00:00,000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatSRT(tc.seconds)
			if got != tc.want {
				t.Fatalf("FormatSRT(%v) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestFormatVTT(t *testing.T) {
	if got := FormatVTT(3661.5); got != "01:01:01.500" {
		t.Fatalf("FormatVTT(3661.5) = %q, want %q", got, "01:01:01.500")
	}
}

func TestFormatEDL(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		fps     int
		want    string
	}{
		{name: "zero", seconds: 0, fps: 24, want: "00:00:00:00"},
		{name: "one second", seconds: 1, fps: 24, want: "00:00:01:00"},
		{name: "half second at 24", seconds: 0.5, fps: 24, want: "00:00:00:12"},
		{name: "hour minute second frame", seconds: 3661.5, fps: 24, want: "01:01:01:12"},
		{name: "partial frame truncated", seconds: 0.99, fps: 24, want: "00:00:00:23"},
		{name: "thirty fps", seconds: 2.5, fps: 30, want: "00:00:02:15"},
		{name: "float noise", seconds: 2.3, fps: 30, want: "00:00:02:09"},
		{name: "default fps", seconds: 0.5, fps: 0, want: "00:00:00:12"},
		{name: "one minute", seconds: 60, fps: 25, want: "00:01:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatEDL(tc.seconds, tc.fps)
			if got != tc.want {
				t.Fatalf("FormatEDL(%v, %d) = %q, want %q", tc.seconds, tc.fps, got, tc.want)
			}
		})
	}
}

func TestFrames(t *testing.T) {
	if got := Frames(8, 24); got != 192 {
		t.Fatalf("Frames(8, 24) = %d, want 192", got)
	}
	if got := Frames(math.Inf(1), 24); got != 0 {
		t.Fatalf("Frames(+Inf, 24) = %d, want 0", got)
	}
}
