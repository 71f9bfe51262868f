package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BookingPolicy captures the booking rules applied by the request lifecycle
// and the availability engine: the daily business-hour window, how far ahead
// a request may be placed, and the calendar slot width.
type BookingPolicy struct {
	// OpenMinute and CloseMinute are minutes since midnight, e.g. 540 = 09:00.
	OpenMinute  int
	CloseMinute int
	HorizonDays int
	SlotMinutes int
}

// DefaultBookingPolicy returns the standard 09:00-18:00 policy with a 7 day
// booking horizon and 60 minute calendar slots.
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		OpenMinute:  9 * 60,
		CloseMinute: 18 * 60,
		HorizonDays: 7,
		SlotMinutes: 60,
	}
}

// Open returns the business-day open as an offset from midnight.
func (p BookingPolicy) Open() time.Duration {
	return time.Duration(p.OpenMinute) * time.Minute
}

// Close returns the business-day close as an offset from midnight.
func (p BookingPolicy) Close() time.Duration {
	return time.Duration(p.CloseMinute) * time.Minute
}

// Horizon returns the maximum lead time for a booking.
func (p BookingPolicy) Horizon() time.Duration {
	return time.Duration(p.HorizonDays) * 24 * time.Hour
}

// SlotDuration returns the calendar slot width.
func (p BookingPolicy) SlotDuration() time.Duration {
	return time.Duration(p.SlotMinutes) * time.Minute
}

// Validate checks the policy for internal consistency.
func (p BookingPolicy) Validate() error {
	if p.OpenMinute < 0 || p.CloseMinute > 24*60 || p.OpenMinute >= p.CloseMinute {
		return fmt.Errorf("business hours %d-%d are invalid", p.OpenMinute, p.CloseMinute)
	}
	if p.HorizonDays < 1 {
		return fmt.Errorf("booking horizon must be at least one day")
	}
	if p.SlotMinutes < 1 {
		return fmt.Errorf("slot duration must be positive")
	}
	return nil
}

// policyFile is the YAML shape of a booking policy override file.
type policyFile struct {
	BusinessOpen  string `yaml:"businessOpen"`
	BusinessClose string `yaml:"businessClose"`
	HorizonDays   int    `yaml:"horizonDays"`
	SlotMinutes   int    `yaml:"slotMinutes"`
}

// LoadBookingPolicy reads a booking policy YAML file. Missing fields keep
// their default values.
func LoadBookingPolicy(path string) (BookingPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BookingPolicy{}, err
	}
	return ParseBookingPolicy(raw)
}

// ParseBookingPolicy parses booking policy YAML.
func ParseBookingPolicy(raw []byte) (BookingPolicy, error) {
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return BookingPolicy{}, err
	}

	policy := DefaultBookingPolicy()
	if file.BusinessOpen != "" {
		minute, err := parseClock(file.BusinessOpen)
		if err != nil {
			return BookingPolicy{}, fmt.Errorf("businessOpen: %w", err)
		}
		policy.OpenMinute = minute
	}
	if file.BusinessClose != "" {
		minute, err := parseClock(file.BusinessClose)
		if err != nil {
			return BookingPolicy{}, fmt.Errorf("businessClose: %w", err)
		}
		policy.CloseMinute = minute
	}
	if file.HorizonDays > 0 {
		policy.HorizonDays = file.HorizonDays
	}
	if file.SlotMinutes > 0 {
		policy.SlotMinutes = file.SlotMinutes
	}

	if err := policy.Validate(); err != nil {
		return BookingPolicy{}, err
	}
	return policy, nil
}

func parseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
