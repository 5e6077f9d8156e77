package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClone_DeepCopies(t *testing.T) {
	completed := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	next := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	orig := Task{
		ID:          "t1",
		Description: "original",
		DueDate:     time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC),
		CompletedAt: &completed,
		NextDueDate: &next,
		Frequency: &Frequency{
			Type:       FreqWeekly,
			Interval:   1,
			DaysOfWeek: []int{0, 2},
		},
		Reminders: []Reminder{{ID: "r1", TimeBefore: 60}},
	}

	c := orig.Clone()

	*c.CompletedAt = c.CompletedAt.Add(time.Hour)
	*c.NextDueDate = c.NextDueDate.Add(time.Hour)
	c.Frequency.Interval = 99
	c.Frequency.DaysOfWeek[0] = 6
	c.Reminders[0].Sent = true

	assert.Equal(t, completed, *orig.CompletedAt)
	assert.Equal(t, next, *orig.NextDueDate)
	assert.Equal(t, 1, orig.Frequency.Interval)
	assert.Equal(t, []int{0, 2}, orig.Frequency.DaysOfWeek)
	assert.False(t, orig.Reminders[0].Sent)
}

func TestClone_NilFieldsStayNil(t *testing.T) {
	c := Task{ID: "bare"}.Clone()
	assert.Nil(t, c.CompletedAt)
	assert.Nil(t, c.NextDueDate)
	assert.Nil(t, c.Frequency)
	assert.Nil(t, c.Reminders)
}

func TestCloneTasks(t *testing.T) {
	next := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	tasks := []Task{{ID: "a", NextDueDate: &next}, {ID: "b"}}

	out := CloneTasks(tasks)
	*out[0].NextDueDate = out[0].NextDueDate.Add(time.Hour)

	assert.Equal(t, next, *tasks[0].NextDueDate)
	assert.Len(t, out, 2)
}
