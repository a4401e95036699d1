package pipeline

import (
	"testing"
	"time"
)

func TestDeriveEventExpiryPrefersStrikeDate(t *testing.T) {
	t.Parallel()

	strike := "2025-06-01T00:00:00Z"
	marketExpiry := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	got := deriveEventExpiry(&strike, &marketExpiry)
	if got == nil {
		t.Fatal("expiry is nil")
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expiry = %v, want strike date %v", got, want)
	}
}

func TestDeriveEventExpiryFallsBackToMarkets(t *testing.T) {
	t.Parallel()

	marketExpiry := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	if got := deriveEventExpiry(nil, &marketExpiry); got == nil || !got.Equal(marketExpiry) {
		t.Fatalf("expiry = %v, want market expiry", got)
	}

	empty := ""
	if got := deriveEventExpiry(&empty, &marketExpiry); got == nil || !got.Equal(marketExpiry) {
		t.Fatalf("expiry = %v, want market expiry for empty strike date", got)
	}
}

func TestDeriveEventExpiryNil(t *testing.T) {
	t.Parallel()

	if got := deriveEventExpiry(nil, nil); got != nil {
		t.Fatalf("expiry = %v, want nil", got)
	}

	garbage := "not a date"
	if got := deriveEventExpiry(&garbage, nil); got != nil {
		t.Fatalf("expiry = %v, want nil for unparseable strike date", got)
	}
}

func TestParseUpstreamTime(t *testing.T) {
	t.Parallel()

	rfc := "2025-03-15T10:30:00-05:00"
	got := parseUpstreamTime(&rfc)
	if got == nil {
		t.Fatal("parse returned nil for RFC3339 input")
	}
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
	if got.Hour() != 15 {
		t.Fatalf("hour = %d, want 15 after UTC conversion", got.Hour())
	}

	loose := "2025-03-15 10:30:00"
	if parseUpstreamTime(&loose) == nil {
		t.Fatal("parse returned nil for loose format")
	}

	if parseUpstreamTime(nil) != nil {
		t.Fatal("parse of nil should be nil")
	}
	empty := ""
	if parseUpstreamTime(&empty) != nil {
		t.Fatal("parse of empty string should be nil")
	}
}

func TestContainsString(t *testing.T) {
	t.Parallel()

	values := []string{"EV-1", "EV-2"}
	if !containsString(values, "EV-2") {
		t.Fatal("expected EV-2 to be found")
	}
	if containsString(values, "ev-2") {
		t.Fatal("lookup must be case-sensitive")
	}
	if containsString(nil, "EV-1") {
		t.Fatal("nil slice contains nothing")
	}
}
