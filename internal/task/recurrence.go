package task

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

// ErrUnsupportedFrequency is returned for frequency types outside the
// enumerated four. Validation makes this unreachable in practice.
var ErrUnsupportedFrequency = errors.New("unsupported frequency type")

// NextDueDate computes when the next occurrence of a recurring task falls,
// given the current due date. It is a pure function of its inputs.
//
// Weekly with days_of_week only advances to the next listed weekday; the
// interval multiplier is deliberately not applied on that branch. This
// mirrors the upstream scheduler and is pinned by tests; do not "fix" it
// without confirming the intended semantics.
func NextDueDate(current time.Time, freq model.Frequency) (time.Time, error) {
	interval := freq.Interval
	if interval < 1 {
		interval = 1
	}

	switch freq.Type {
	case model.FreqDaily:
		return current.AddDate(0, 0, interval), nil

	case model.FreqWeekly:
		if len(freq.DaysOfWeek) == 0 {
			return current.AddDate(0, 0, 7*interval), nil
		}
		targets := append([]int(nil), freq.DaysOfWeek...)
		sort.Ints(targets)
		cur := mondayWeekday(current)
		daysAhead := -1
		for _, d := range targets {
			if d > cur {
				daysAhead = d - cur
				break
			}
		}
		if daysAhead < 0 {
			// All targets are at or before the current weekday; wrap to the
			// first target in the following week.
			daysAhead = (7 - cur) + targets[0]
		}
		return current.AddDate(0, 0, daysAhead), nil

	case model.FreqMonthly:
		next := addMonthsClamped(current, interval)
		if freq.DayOfMonth > 0 {
			next = withDayClamped(next, freq.DayOfMonth)
		}
		return next, nil

	case model.FreqYearly:
		return addMonthsClamped(current, 12*interval), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, freq.Type)
}

// mondayWeekday maps time.Weekday (Sunday=0) onto the 0=Monday..6=Sunday
// numbering the frequency schema uses.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// addMonthsClamped shifts by whole calendar months, clamping the day to the
// last valid day of the target month instead of letting the date roll over
// (Jan 31 + 1 month = Feb 28/29, and Feb 29 + 12 months = Feb 28).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	targetYear := year + total/12
	rem := total % 12
	if rem < 0 {
		rem += 12
		targetYear--
	}
	targetMonth := time.Month(rem + 1)
	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}
	h, m, s := t.Clock()
	return time.Date(targetYear, targetMonth, day, h, m, s, t.Nanosecond(), t.Location())
}

// withDayClamped sets the day of month, clamped to the month's last day.
func withDayClamped(t time.Time, day int) time.Time {
	year, month, _ := t.Date()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	h, m, s := t.Clock()
	return time.Date(year, month, day, h, m, s, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
