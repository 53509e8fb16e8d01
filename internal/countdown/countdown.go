// Package countdown derives remaining time and departure-relative facts from
// stored timestamps. Nothing here keeps state between calls.
package countdown

import (
	"fmt"
	"time"

	"github.com/sosodev/duration"
)

// Remaining is the time left before a deadline, or the Expired sentinel.
type Remaining struct {
	d       time.Duration
	expired bool
}

// Expired is returned once the deadline has been reached.
var Expired = Remaining{expired: true}

// TimeRemaining truncates to whole seconds for countdown display. It returns
// Expired when now >= deadline, never a negative duration.
func TimeRemaining(deadline, now time.Time) Remaining {
	if !now.Before(deadline) {
		return Expired
	}
	d := deadline.Sub(now).Truncate(time.Second)
	if d <= 0 {
		// The last partial second shows as one so a live hold never reads zero.
		return Remaining{d: time.Second}
	}
	return Remaining{d: d}
}

func (r Remaining) IsExpired() bool { return r.expired }

func (r Remaining) Duration() time.Duration { return r.d }

func (r Remaining) Seconds() int64 { return int64(r.d / time.Second) }

// String renders "23h 59m 05s", "04m 10s" or "Expired".
func (r Remaining) String() string {
	if r.expired {
		return "Expired"
	}
	total := r.Seconds()
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%02dm %02ds", m, s)
}

// BeforeDeparture reports whether now is strictly before departure.
func BeforeDeparture(departure, now time.Time) bool {
	return now.Before(departure)
}

// DaysBeforeDeparture counts whole days left, 0 once departed.
func DaysBeforeDeparture(departure, now time.Time) int {
	if !now.Before(departure) {
		return 0
	}
	return int(departure.Sub(now) / (24 * time.Hour))
}

// ParseISODuration parses ISO-8601 durations such as "PT8H30M" or "P1DT2H".
func ParseISODuration(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d.ToTimeDuration(), nil
}

// FormatDuration renders flight durations as "8h 30m" or "45m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatISODuration is ParseISODuration followed by FormatDuration. Unparseable
// input is returned unchanged.
func FormatISODuration(s string) string {
	d, err := ParseISODuration(s)
	if err != nil {
		return s
	}
	return FormatDuration(d)
}
