package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

const icsDateLayout = "20060102"

// icsByDay maps the 0=Monday..6=Sunday weekday numbering to RFC 5545 codes.
var icsByDay = []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// BuildCalendarICS renders the incomplete tasks of a snapshot as an
// iCalendar feed, one all-day VEVENT per task. Recurring tasks carry an
// RRULE derived from their frequency so calendar clients expand future
// occurrences themselves.
func BuildCalendarICS(tasks []model.Task, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//VoiceTaskManager//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	stamp := now.UTC().Format("20060102T150405Z")
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due := t.DueDate.UTC()
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(fmt.Sprintf("task-%s@voice-task-manager", t.ID)),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(t.Description),
			"DTSTART;VALUE=DATE:"+due.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+due.AddDate(0, 0, 1).Format(icsDateLayout),
		)
		if t.Category != "" {
			lines = append(lines, "CATEGORIES:"+escapeICSText(t.Category))
		}
		if rrule := frequencyToRRULE(t.Frequency); rrule != "" {
			lines = append(lines, "RRULE:"+rrule)
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func frequencyToRRULE(freq *model.Frequency) string {
	if freq == nil {
		return ""
	}

	var icsFreq string
	switch freq.Type {
	case model.FreqDaily:
		icsFreq = "DAILY"
	case model.FreqWeekly:
		icsFreq = "WEEKLY"
	case model.FreqMonthly:
		icsFreq = "MONTHLY"
	case model.FreqYearly:
		icsFreq = "YEARLY"
	default:
		return ""
	}

	interval := freq.Interval
	if interval < 1 {
		interval = 1
	}
	rule := fmt.Sprintf("FREQ=%s;INTERVAL=%d", icsFreq, interval)

	if freq.Type == model.FreqWeekly && len(freq.DaysOfWeek) > 0 {
		var days []string
		for _, d := range freq.DaysOfWeek {
			if d >= 0 && d < len(icsByDay) {
				days = append(days, icsByDay[d])
			}
		}
		if len(days) > 0 {
			rule += ";BYDAY=" + strings.Join(days, ",")
		}
	}
	if freq.Type == model.FreqMonthly && freq.DayOfMonth > 0 {
		rule += fmt.Sprintf(";BYMONTHDAY=%d", freq.DayOfMonth)
	}

	return rule
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
