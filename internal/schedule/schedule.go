package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinLead is the shortest accepted distance between now and a scheduled run time.
const MinLead = 30 * time.Second

// ManualLayout is the accepted format for manually entered run times (DD.MM.YYYY HH:MM).
const ManualLayout = "02.01.2006 15:04"

// ManualCode is the pick code that switches to free-text date entry.
const ManualCode = "manual"

// QuickHours are the canonical publishing hours offered for today and tomorrow.
var QuickHours = []int{10, 14, 19}

var (
	// ErrTooSoon is returned when a run time is earlier than now + MinLead.
	ErrTooSoon = errors.New("run time must be at least 30 seconds from now")
	// ErrBadFormat is returned when a manual entry does not match ManualLayout.
	ErrBadFormat = errors.New("expected date and time as DD.MM.YYYY HH:MM")
	// ErrUnknownPick is returned for a quick-pick code that is not offered.
	ErrUnknownPick = errors.New("unknown quick pick")
)

// Day selects the calendar day of a quick pick.
type Day string

const (
	Today    Day = "today"
	Tomorrow Day = "tomorrow"
)

// Pick is one quick-pick option offered to the operator.
type Pick struct {
	Code  string
	Day   Day
	Hour  int
	RunAt time.Time
}

// QuickPicks lists today's and tomorrow's canonical hours in loc, relative to now.
// Picks already in the past are still listed; ValidateLead rejects them on choice.
func QuickPicks(now time.Time, loc *time.Location) []Pick {
	picks := make([]Pick, 0, 2*len(QuickHours))
	for _, day := range []Day{Today, Tomorrow} {
		for _, hour := range QuickHours {
			runAt, _ := Resolve(pickCode(day, hour), now, loc)
			picks = append(picks, Pick{Code: pickCode(day, hour), Day: day, Hour: hour, RunAt: runAt})
		}
	}
	return picks
}

// Resolve converts a quick-pick code such as "tomorrow_19" to an absolute time in loc.
func Resolve(code string, now time.Time, loc *time.Location) (time.Time, error) {
	dayPart, hourPart, ok := strings.Cut(code, "_")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPick, code)
	}
	var hour int
	if _, err := fmt.Sscanf(hourPart, "%d", &hour); err != nil || !isQuickHour(hour) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPick, code)
	}

	local := now.In(loc)
	base := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	switch Day(dayPart) {
	case Today:
		return base, nil
	case Tomorrow:
		return base.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPick, code)
	}
}

// ParseManual parses operator input in ManualLayout within loc.
func ParseManual(input string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(ManualLayout, strings.TrimSpace(input), loc)
	if err != nil {
		return time.Time{}, ErrBadFormat
	}
	return t, nil
}

// ValidateLead accepts runAt only when it is not earlier than now + MinLead.
func ValidateLead(runAt, now time.Time) error {
	if runAt.Before(now.Add(MinLead)) {
		return ErrTooSoon
	}
	return nil
}

// Format renders t in loc using ManualLayout.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ManualLayout)
}

func pickCode(day Day, hour int) string {
	return fmt.Sprintf("%s_%02d", day, hour)
}

func isQuickHour(hour int) bool {
	for _, h := range QuickHours {
		if h == hour {
			return true
		}
	}
	return false
}
