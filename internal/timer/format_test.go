package timer

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{input: 0, want: "00:00:00"},
		{input: -5 * time.Second, want: "00:00:00"},
		{input: 999 * time.Millisecond, want: "00:00:00"},
		{input: 61 * time.Second, want: "00:01:01"},
		{input: 3*time.Hour + 25*time.Minute + 9*time.Second, want: "03:25:09"},
		{input: 30 * time.Hour, want: "30:00:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.input); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatStoredMilliseconds(t *testing.T) {
	task := Task{ID: "a", TimeSpentMS: 1500}
	if got := FormatDuration(task.TimeSpent()); got != "00:00:01" {
		t.Fatalf("FormatDuration(task.TimeSpent()) = %q", got)
	}

	current := CurrentTime{TaskID: "a", TotalMS: 3_723_999}
	if got := FormatDuration(current.Total()); got != "01:02:03" {
		t.Fatalf("FormatDuration(current.Total()) = %q", got)
	}
}
