package task

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

const maxListLimit = 1000

// ListFilter narrows a collection snapshot. Absent fields are no-ops.
type ListFilter struct {
	// DueDate: "" | "today" | "tomorrow" (calendar-day match in UTC).
	DueDate string
	// Status: "" | "due" | "overdue" | "completed".
	Status string
	// Category is matched case-insensitively when non-empty.
	Category string
	// Limit caps results (1..1000, 0 = no cap); Offset skips first.
	Limit  int
	Offset int
}

// ParseListFilter validates the recognized query options.
func ParseListFilter(q url.Values) (ListFilter, error) {
	ve := &ValidationError{}
	f := ListFilter{
		DueDate:  strings.ToLower(strings.TrimSpace(q.Get("due_date"))),
		Status:   strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Category: strings.TrimSpace(q.Get("category")),
	}

	switch f.DueDate {
	case "", "today", "tomorrow":
	default:
		ve.add("due_date", "must be today or tomorrow")
	}
	switch f.Status {
	case "", "due", "overdue", "completed":
	default:
		ve.add("status", "must be due, overdue or completed")
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			ve.add("limit", "must be an integer between 1 and %d", maxListLimit)
		} else {
			f.Limit = n
		}
	}
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ve.add("offset", "must be a non-negative integer")
		} else {
			f.Offset = n
		}
	}

	return f, ve.orNil()
}

// Filter applies due-date bucket, status, category and pagination, in that
// fixed order. All time comparisons use one now captured at call start.
func Filter(tasks []model.Task, f ListFilter, now time.Time) []model.Task {
	now = now.UTC()
	today := dateOnly(now)
	tomorrow := today.AddDate(0, 0, 1)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		dueDay := dateOnly(t.DueDate)

		switch f.DueDate {
		case "today":
			if !dueDay.Equal(today) {
				continue
			}
		case "tomorrow":
			if !dueDay.Equal(tomorrow) {
				continue
			}
		}

		switch f.Status {
		case "due":
			if t.Completed || dueDay.After(today) {
				continue
			}
		case "overdue":
			if t.Completed || !t.DueDate.Before(now) {
				continue
			}
		case "completed":
			if !t.Completed {
				continue
			}
		}

		if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
			continue
		}

		out = append(out, t)
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []model.Task{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// dateOnly truncates an instant to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
