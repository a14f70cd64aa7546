package dates

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeString_Layouts(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC3339",
			input: "2025-06-15T09:30:00Z",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "RFC3339 with offset",
			input: "2025-06-15T09:30:00+02:00",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.FixedZone("", 2*3600)),
		},
		{
			name:  "local datetime with seconds",
			input: "2025-06-15T09:30:00",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "local datetime without seconds",
			input: "2025-06-15T09:30",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "space separated",
			input: "2025-06-15 09:30",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2025-06-15",
			want:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "epoch seconds",
			input: "1750000000",
			want:  time.Unix(1750000000, 0).UTC(),
		},
		{
			name:  "epoch milliseconds",
			input: "1750000000000",
			want:  time.UnixMilli(1750000000000).UTC(),
		},
		{
			name:  "epoch milliseconds before 2004",
			input: "999999999999",
			want:  time.UnixMilli(999999999999).UTC(),
		},
		{
			name:  "firestore timestamp json",
			input: `{"seconds": 1750000000, "nanoseconds": 0}`,
			want:  time.Unix(1750000000, 0).UTC(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeString(tc.input)
			if err != nil {
				t.Fatalf("NormalizeString(%q) returned error: %v", tc.input, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("NormalizeString(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeString_Unparsable(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "15/06/2025", "{broken"} {
		if _, err := NormalizeString(input); !errors.Is(err, ErrUnparsable) {
			t.Errorf("NormalizeString(%q): expected ErrUnparsable, got %v", input, err)
		}
	}
}

func TestNormalize_NonStringValues(t *testing.T) {
	instant := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	got, err := Normalize(instant)
	if err != nil || !got.Equal(instant) {
		t.Errorf("Normalize(time.Time) = %v, %v", got, err)
	}

	got, err = Normalize(&instant)
	if err != nil || !got.Equal(instant) {
		t.Errorf("Normalize(*time.Time) = %v, %v", got, err)
	}

	got, err = Normalize(int64(1750000000))
	if err != nil || !got.Equal(time.Unix(1750000000, 0)) {
		t.Errorf("Normalize(int64) = %v, %v", got, err)
	}

	got, err = Normalize(map[string]interface{}{"seconds": float64(1750000000), "nanoseconds": float64(0)})
	if err != nil || !got.Equal(time.Unix(1750000000, 0)) {
		t.Errorf("Normalize(map) = %v, %v", got, err)
	}

	if _, err := Normalize(nil); !errors.Is(err, ErrUnparsable) {
		t.Errorf("Normalize(nil): expected ErrUnparsable, got %v", err)
	}

	if _, err := Normalize(time.Time{}); !errors.Is(err, ErrUnparsable) {
		t.Errorf("Normalize(zero time): expected ErrUnparsable, got %v", err)
	}

	if _, err := Normalize(struct{}{}); !errors.Is(err, ErrUnparsable) {
		t.Errorf("Normalize(struct{}{}): expected ErrUnparsable, got %v", err)
	}
}

func TestFormatNextAppointment(t *testing.T) {
	testCases := []struct {
		name  string
		input time.Time
		want  string
	}{
		{
			name:  "seconds dropped",
			input: time.Date(2025, 6, 15, 9, 30, 45, 123456789, time.UTC),
			want:  "2025-06-15T09:30:00",
		},
		{
			name:  "offset converted to UTC",
			input: time.Date(2025, 6, 15, 11, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			want:  "2025-06-15T09:30:00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatNextAppointment(tc.input); got != tc.want {
				t.Errorf("FormatNextAppointment(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
