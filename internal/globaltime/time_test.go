package globaltime

import (
	"testing"
	"time"
)

func TestMockTime(t *testing.T) {
	fixed := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	SetMockTime(fixed)
	defer ResetTime()

	if got := Now(); !got.Equal(fixed) {
		t.Fatalf("Now = %v, want %v", got, fixed)
	}
	if got := UTC(); !got.Equal(fixed) {
		t.Fatalf("UTC = %v, want %v", got, fixed)
	}
}

func TestDaysAgo(t *testing.T) {
	fixed := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	SetMockTime(fixed)
	defer ResetTime()

	want := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	if got := DaysAgo(7); !got.Equal(want) {
		t.Fatalf("DaysAgo(7) = %v, want %v", got, want)
	}
}

func TestHoursAgo(t *testing.T) {
	fixed := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	SetMockTime(fixed)
	defer ResetTime()

	want := time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC)
	if got := HoursAgo(72); !got.Equal(want) {
		t.Fatalf("HoursAgo(72) = %v, want %v", got, want)
	}
}
