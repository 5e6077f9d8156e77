package task

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

// defaultAnnounceListLimit is how many task descriptions an announcement
// spells out before collapsing the rest into a count.
const defaultAnnounceListLimit = 3

// Summary holds the task subsets behind the daily announcements plus the
// rendered morning/evening text.
type Summary struct {
	TodayUncompleted []model.Task      `json:"today_uncompleted"`
	TomorrowTasks    []model.Task      `json:"tomorrow_tasks"`
	TodayOverdue     []model.Task      `json:"today_overdue"`
	AnnouncementText map[string]string `json:"announcement_text"`
}

// BuildSummary derives the announcement subsets from a collection snapshot:
// incomplete tasks due today, incomplete tasks due tomorrow, and incomplete
// tasks from strictly prior days (earlier today does not count as overdue
// here). Each subset is sorted ascending by due date. listLimit <= 0 uses
// the default of 3.
func BuildSummary(tasks []model.Task, now time.Time, listLimit int) Summary {
	now = now.UTC()
	today := dateOnly(now)
	tomorrow := today.AddDate(0, 0, 1)

	s := Summary{
		TodayUncompleted: []model.Task{},
		TomorrowTasks:    []model.Task{},
		TodayOverdue:     []model.Task{},
	}

	for _, t := range tasks {
		if t.Completed {
			continue
		}
		dueDay := dateOnly(t.DueDate)
		switch {
		case dueDay.Equal(today):
			s.TodayUncompleted = append(s.TodayUncompleted, t)
		case dueDay.Equal(tomorrow):
			s.TomorrowTasks = append(s.TomorrowTasks, t)
		case t.DueDate.Before(now) && dueDay.Before(today):
			s.TodayOverdue = append(s.TodayOverdue, t)
		}
	}

	byDueDate(s.TodayUncompleted)
	byDueDate(s.TomorrowTasks)
	byDueDate(s.TodayOverdue)

	if listLimit <= 0 {
		listLimit = defaultAnnounceListLimit
	}
	s.AnnouncementText = map[string]string{
		"morning": renderMorning(s, listLimit),
		"evening": renderEvening(s, listLimit),
	}
	return s
}

func renderMorning(s Summary, listLimit int) string {
	var parts []string

	if n := len(s.TodayOverdue); n > 0 {
		parts = append(parts, fmt.Sprintf("You have %d overdue task%s.", n, plural(n)))
	}

	if n := len(s.TodayUncompleted); n > 0 {
		parts = append(parts, fmt.Sprintf("You have %d task%s due today.", n, plural(n)))
		parts = append(parts, listDescriptions(s.TodayUncompleted, listLimit)...)
	}

	if len(s.TodayUncompleted) == 0 && len(s.TodayOverdue) == 0 {
		parts = append(parts, "You have no tasks due today. Great job!")
	}

	return strings.Join(parts, " ")
}

func renderEvening(s Summary, listLimit int) string {
	n := len(s.TomorrowTasks)
	if n == 0 {
		return "You have no tasks due tomorrow. Enjoy your evening!"
	}

	parts := []string{fmt.Sprintf("You have %d task%s due tomorrow.", n, plural(n))}
	parts = append(parts, listDescriptions(s.TomorrowTasks, listLimit)...)
	return strings.Join(parts, " ")
}

func listDescriptions(tasks []model.Task, limit int) []string {
	var parts []string
	for i, t := range tasks {
		if i >= limit {
			break
		}
		parts = append(parts, fmt.Sprintf("Task %d: %s", i+1, t.Description))
	}
	if remaining := len(tasks) - limit; remaining > 0 {
		parts = append(parts, fmt.Sprintf("And %d more task%s.", remaining, plural(remaining)))
	}
	return parts
}

// plural appends "s" to the unit noun only above one; zero never reaches
// the pluralized branches.
func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func byDueDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
