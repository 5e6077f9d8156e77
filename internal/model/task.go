package model

import (
	"time"
)

type TaskID string

// Frequency types supported by the recurrence calculator.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
	FreqYearly  = "yearly"
)

// Frequency describes how a recurring task's next occurrence is scheduled.
type Frequency struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`

	// DaysOfWeek uses 0=Monday .. 6=Sunday. Only meaningful for weekly.
	DaysOfWeek []int `json:"days_of_week,omitempty"`
	// DayOfMonth is 1..31. Only meaningful for monthly.
	DayOfMonth int `json:"day_of_month,omitempty"`
}

// Reminder is a notification marker attached to a task.
type Reminder struct {
	ID string `json:"id"`
	// TimeBefore is minutes before the due date.
	TimeBefore int    `json:"time_before"`
	Message    string `json:"message,omitempty"`
	Sent       bool   `json:"sent"`
}

// Task is one entry of the backing document. All instants are stored in UTC
// and serialize as ISO-8601 strings.
type Task struct {
	ID          TaskID     `json:"id"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     time.Time  `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Frequency   *Frequency `json:"frequency,omitempty"`
	NextDueDate *time.Time `json:"next_due_date,omitempty"`
	Reminders   []Reminder `json:"reminders"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate snapshots freely.
func (t Task) Clone() Task {
	c := t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	if t.NextDueDate != nil {
		v := *t.NextDueDate
		c.NextDueDate = &v
	}
	if t.Frequency != nil {
		f := *t.Frequency
		if f.DaysOfWeek != nil {
			f.DaysOfWeek = append([]int(nil), f.DaysOfWeek...)
		}
		c.Frequency = &f
	}
	if t.Reminders != nil {
		c.Reminders = append([]Reminder(nil), t.Reminders...)
	}
	return c
}

// CloneTasks deep-copies a whole collection snapshot.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
