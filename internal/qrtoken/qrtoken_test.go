package qrtoken

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestSignDeterministic(t *testing.T) {
	a := Sign("1", "20260828", testSecret, 1)
	b := Sign("1", "20260828", testSecret, 1)
	if a != b {
		t.Fatalf("same inputs produced different digests: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("digest length = %d, want 64", len(a))
	}
}

func TestSignInputsChangeDigest(t *testing.T) {
	base := Sign("1", "20260828", testSecret, 1)

	if Sign("2", "20260828", testSecret, 1) == base {
		t.Error("different subject produced same digest")
	}
	if Sign("1", "20260829", testSecret, 1) == base {
		t.Error("different day produced same digest")
	}
	if Sign("1", "20260828", testSecret, 2) == base {
		t.Error("different version produced same digest")
	}
	if Sign("1", "20260828", "other-secret", 1) == base {
		t.Error("different secret produced same digest")
	}
}

func TestSubEventNamespaceSeparation(t *testing.T) {
	// A location digest for subject "workshop" must not verify as a
	// sub-event digest for the same subject.
	loc := Sign("workshop", "20260828", testSecret, 1)
	sub := SignSubEvent("workshop", "20260828", testSecret, 1)
	if loc == sub {
		t.Fatal("location and sub-event digests collide for the same subject")
	}
}

func TestVerifyTamperResistance(t *testing.T) {
	sig := Sign("1", "20260828", testSecret, 1)

	if !Verify("1", "20260828", sig, testSecret, 1) {
		t.Fatal("valid signature rejected")
	}

	// Flipping any single hex character must cause rejection.
	for i := 0; i < len(sig); i++ {
		flipped := []byte(sig)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		if Verify("1", "20260828", string(flipped), testSecret, 1) {
			t.Fatalf("tampered signature accepted (position %d)", i)
		}
	}
}

func TestDayStamp(t *testing.T) {
	now := time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		offset int
		want   string
	}{
		{-2, "20260826"},
		{-1, "20260827"},
		{0, "20260828"},
		{1, "20260829"},
		{2, "20260830"},
	}
	for _, tt := range tests {
		if got := DayStamp(now, tt.offset); got != tt.want {
			t.Errorf("DayStamp(offset=%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestDayStampUsesUTC(t *testing.T) {
	// 23:00 in UTC+3 is 20:00 UTC the same day; 01:00 in UTC+3 is 22:00
	// UTC the previous day.
	loc := time.FixedZone("UTC+3", 3*60*60)
	early := time.Date(2026, 8, 28, 1, 0, 0, 0, loc)
	if got := DayStamp(early, 0); got != "20260827" {
		t.Errorf("DayStamp = %q, want previous UTC day 20260827", got)
	}
}

func TestVerifyInWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		offset int
		want   bool
	}{
		{"two days ago", -2, false},
		{"yesterday", -1, true},
		{"today", 0, true},
		{"tomorrow", 1, true},
		{"two days ahead", 2, false},
	}
	for _, tt := range tests {
		sig := Sign("5", DayStamp(now, tt.offset), testSecret, 3)
		if got := VerifyInWindow("5", sig, testSecret, 3, now); got != tt.want {
			t.Errorf("%s: VerifyInWindow = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVerifyInWindowVersionMismatch(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	sig := Sign("5", DayStamp(now, 0), testSecret, 1)

	if VerifyInWindow("5", sig, testSecret, 2, now) {
		t.Error("signature for version 1 accepted at version 2")
	}
}

func TestSignLowercaseHex(t *testing.T) {
	sig := Sign("1", "20260828", testSecret, 1)
	if sig != strings.ToLower(sig) {
		t.Errorf("digest not lowercase hex: %q", sig)
	}
}
