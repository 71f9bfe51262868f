package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultBookingPolicy(t *testing.T) {
	policy := DefaultBookingPolicy()

	if policy.Open() != 9*time.Hour {
		t.Errorf("Open() = %v, want 9h", policy.Open())
	}
	if policy.Close() != 18*time.Hour {
		t.Errorf("Close() = %v, want 18h", policy.Close())
	}
	if policy.Horizon() != 7*24*time.Hour {
		t.Errorf("Horizon() = %v, want 168h", policy.Horizon())
	}
	if policy.SlotDuration() != time.Hour {
		t.Errorf("SlotDuration() = %v, want 1h", policy.SlotDuration())
	}
	if err := policy.Validate(); err != nil {
		t.Errorf("default policy should validate: %v", err)
	}
}

func TestParseBookingPolicy(t *testing.T) {
	raw := []byte(`
businessOpen: "08:30"
businessClose: "17:00"
horizonDays: 14
slotMinutes: 30
`)

	policy, err := ParseBookingPolicy(raw)
	if err != nil {
		t.Fatalf("ParseBookingPolicy: %v", err)
	}

	if policy.OpenMinute != 8*60+30 {
		t.Errorf("OpenMinute = %d, want 510", policy.OpenMinute)
	}
	if policy.CloseMinute != 17*60 {
		t.Errorf("CloseMinute = %d, want 1020", policy.CloseMinute)
	}
	if policy.HorizonDays != 14 {
		t.Errorf("HorizonDays = %d, want 14", policy.HorizonDays)
	}
	if policy.SlotMinutes != 30 {
		t.Errorf("SlotMinutes = %d, want 30", policy.SlotMinutes)
	}
}

func TestParseBookingPolicyPartialKeepsDefaults(t *testing.T) {
	policy, err := ParseBookingPolicy([]byte(`horizonDays: 3`))
	if err != nil {
		t.Fatalf("ParseBookingPolicy: %v", err)
	}

	if policy.OpenMinute != 9*60 || policy.CloseMinute != 18*60 {
		t.Errorf("business hours changed unexpectedly: %d-%d", policy.OpenMinute, policy.CloseMinute)
	}
	if policy.HorizonDays != 3 {
		t.Errorf("HorizonDays = %d, want 3", policy.HorizonDays)
	}
}

func TestParseBookingPolicyRejectsInvertedHours(t *testing.T) {
	_, err := ParseBookingPolicy([]byte("businessOpen: \"18:00\"\nbusinessClose: \"09:00\"\n"))
	if err == nil {
		t.Fatal("expected error for close before open")
	}
	if !strings.Contains(err.Error(), "business hours") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseBookingPolicyRejectsBadClock(t *testing.T) {
	if _, err := ParseBookingPolicy([]byte(`businessOpen: "9am"`)); err == nil {
		t.Fatal("expected error for malformed clock time")
	}
}
