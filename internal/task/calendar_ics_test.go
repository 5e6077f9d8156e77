package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

func TestBuildCalendarICS_Envelope(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	got := BuildCalendarICS(nil, now)

	assert.True(t, strings.HasPrefix(got, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(got, "END:VCALENDAR\r\n"))
	assert.Contains(t, got, "PRODID:-//VoiceTaskManager//Task Export//EN")
	assert.NotContains(t, got, "BEGIN:VEVENT")
}

func TestBuildCalendarICS_AllDayEvent(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{{
		ID:          "abc",
		Description: "dentist appointment",
		Category:    "health",
		DueDate:     time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
	}}

	got := BuildCalendarICS(tasks, now)

	assert.Contains(t, got, "UID:task-abc@voice-task-manager")
	assert.Contains(t, got, "DTSTAMP:20240307T120000Z")
	assert.Contains(t, got, "SUMMARY:dentist appointment")
	assert.Contains(t, got, "DTSTART;VALUE=DATE:20240309")
	assert.Contains(t, got, "DTEND;VALUE=DATE:20240310")
	assert.Contains(t, got, "CATEGORIES:health")
	assert.NotContains(t, got, "RRULE:")
}

func TestBuildCalendarICS_SkipsCompletedTasks(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{{
		ID:          "done",
		Description: "already finished",
		DueDate:     now,
		Completed:   true,
	}}

	got := BuildCalendarICS(tasks, now)
	assert.NotContains(t, got, "BEGIN:VEVENT")
}

func TestBuildCalendarICS_RecurrenceRules(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	weekly := []model.Task{{
		ID: "w", Description: "weekly", DueDate: due,
		Frequency: &model.Frequency{Type: model.FreqWeekly, Interval: 2, DaysOfWeek: []int{0, 4}},
	}}
	got := BuildCalendarICS(weekly, now)
	assert.Contains(t, got, "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR")

	monthly := []model.Task{{
		ID: "m", Description: "monthly", DueDate: due,
		Frequency: &model.Frequency{Type: model.FreqMonthly, Interval: 1, DayOfMonth: 15},
	}}
	got = BuildCalendarICS(monthly, now)
	assert.Contains(t, got, "RRULE:FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=15")

	unknown := []model.Task{{
		ID: "u", Description: "odd", DueDate: due,
		Frequency: &model.Frequency{Type: "hourly"},
	}}
	got = BuildCalendarICS(unknown, now)
	assert.NotContains(t, got, "RRULE:")
}

func TestBuildCalendarICS_EscapesText(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{{
		ID:          "esc",
		Description: "plan A; plan B, or\nplan C",
		DueDate:     now,
	}}

	got := BuildCalendarICS(tasks, now)
	assert.Contains(t, got, `SUMMARY:plan A\; plan B\, or\nplan C`)
}

func TestBuildCalendarICS_CRLFLineEndings(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	got := BuildCalendarICS(nil, now)

	for _, line := range strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n") {
		require.NotContains(t, line, "\n")
	}
}
