package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

var ErrNotFound = errors.New("task not found")

const (
	maxDescriptionLen = 500
	maxCategoryLen    = 50
	defaultCategory   = "general"
	minInterval       = 1
	maxInterval       = 365
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects field errors so callers can tell malformed input
// apart from system failures without inspecting message strings.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "invalid task: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Record mirrors one backing-document entry with loosely typed fields.
// Unknown fields in the source JSON are ignored at decode time.
type Record struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	DueDate     string            `json:"due_date"`
	Completed   bool              `json:"completed"`
	CompletedAt string            `json:"completed_at"`
	Frequency   *FrequencyRecord  `json:"frequency"`
	NextDueDate string            `json:"next_due_date"`
	Reminders   []ReminderRecord  `json:"reminders"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type FrequencyRecord struct {
	Type       string `json:"type"`
	Interval   *int   `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week"`
	DayOfMonth *int   `json:"day_of_month"`
}

type ReminderRecord struct {
	ID         string `json:"id"`
	TimeBefore int    `json:"time_before"`
	Message    string `json:"message"`
	Sent       bool   `json:"sent"`
}

// CreateRequest is the loose payload accepted when creating a task.
type CreateRequest struct {
	Description string           `json:"description"`
	Category    string           `json:"category"`
	DueDate     string           `json:"due_date"`
	Frequency   *FrequencyRecord `json:"frequency"`
	Reminders   []ReminderRecord `json:"reminders"`
}

// UpdateRequest is a partial update; nil pointer means "no change".
type UpdateRequest struct {
	Description *string           `json:"description"`
	Category    *string           `json:"category"`
	DueDate     *string           `json:"due_date"`
	Frequency   *FrequencyRecord  `json:"frequency"`
	Reminders   *[]ReminderRecord `json:"reminders"`
}

// SanitizeDescription strips control characters (newlines and tabs survive)
// and escapes script tag markers, then trims surrounding whitespace.
func SanitizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	out = strings.ReplaceAll(out, "<script", "&lt;script")
	out = strings.ReplaceAll(out, "</script>", "&lt;/script&gt;")
	return strings.TrimSpace(out)
}

// SanitizeCategory keeps alphanumerics plus "_-. " and falls back to the
// default category when nothing survives.
func SanitizeCategory(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-. ", r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return defaultCategory
	}
	return out
}

// instantLayouts accepted besides RFC 3339. Naive timestamps are taken as UTC.
var instantLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp. A trailing "Z" means UTC and a
// missing offset is normalized to UTC rather than rejected. The result is
// always expressed in UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format: %q", s)
}

// ParseRecord turns a loose record into a validated Task. It performs no
// I/O: missing ids get generated, naive timestamps are normalized to UTC,
// and all field failures are collected into one ValidationError.
func ParseRecord(rec Record, now time.Time) (model.Task, error) {
	ve := &ValidationError{}

	desc := SanitizeDescription(rec.Description)
	if desc == "" {
		ve.add("description", "cannot be empty")
	} else if utf8.RuneCountInString(desc) > maxDescriptionLen {
		ve.add("description", "longer than %d characters", maxDescriptionLen)
	}

	category := SanitizeCategory(rec.Category)
	if utf8.RuneCountInString(category) > maxCategoryLen {
		ve.add("category", "longer than %d characters", maxCategoryLen)
	}

	var due time.Time
	if rec.DueDate == "" {
		ve.add("due_date", "is required")
	} else if d, err := ParseInstant(rec.DueDate); err != nil {
		ve.add("due_date", "%v", err)
	} else {
		due = d
	}

	completedAt := parseOptionalInstant(rec.CompletedAt, "completed_at", ve)
	nextDue := parseOptionalInstant(rec.NextDueDate, "next_due_date", ve)

	var freq *model.Frequency
	if rec.Frequency != nil {
		f := parseFrequency(*rec.Frequency, ve)
		freq = &f
	}

	reminders := parseReminders(rec.Reminders, ve)

	createdAt := now
	if rec.CreatedAt != "" {
		if t, err := ParseInstant(rec.CreatedAt); err == nil {
			createdAt = t
		} else {
			ve.add("created_at", "%v", err)
		}
	}
	updatedAt := now
	if rec.UpdatedAt != "" {
		if t, err := ParseInstant(rec.UpdatedAt); err == nil {
			updatedAt = t
		} else {
			ve.add("updated_at", "%v", err)
		}
	}

	if err := ve.orNil(); err != nil {
		return model.Task{}, err
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return model.Task{
		ID:          model.TaskID(id),
		Description: desc,
		Category:    category,
		DueDate:     due,
		Completed:   rec.Completed,
		CompletedAt: completedAt,
		Frequency:   freq,
		NextDueDate: nextDue,
		Reminders:   reminders,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// NewTask validates a create payload into a fresh task.
func NewTask(req CreateRequest, now time.Time) (model.Task, error) {
	return ParseRecord(Record{
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Frequency:   req.Frequency,
		Reminders:   req.Reminders,
	}, now)
}

// ApplyUpdate applies a partial update in place. When the due date or
// frequency changes on a recurring task, next_due_date is recomputed so the
// derived field stays consistent.
func ApplyUpdate(t *model.Task, req UpdateRequest, now time.Time) error {
	ve := &ValidationError{}

	desc := t.Description
	if req.Description != nil {
		desc = SanitizeDescription(*req.Description)
		if desc == "" {
			ve.add("description", "cannot be empty")
		} else if utf8.RuneCountInString(desc) > maxDescriptionLen {
			ve.add("description", "longer than %d characters", maxDescriptionLen)
		}
	}

	category := t.Category
	if req.Category != nil {
		category = SanitizeCategory(*req.Category)
		if utf8.RuneCountInString(category) > maxCategoryLen {
			ve.add("category", "longer than %d characters", maxCategoryLen)
		}
	}

	due := t.DueDate
	dueChanged := false
	if req.DueDate != nil {
		if d, err := ParseInstant(*req.DueDate); err != nil {
			ve.add("due_date", "%v", err)
		} else {
			due = d
			dueChanged = true
		}
	}

	freq := t.Frequency
	freqChanged := false
	if req.Frequency != nil {
		f := parseFrequency(*req.Frequency, ve)
		freq = &f
		freqChanged = true
	}

	reminders := t.Reminders
	if req.Reminders != nil {
		reminders = parseReminders(*req.Reminders, ve)
	}

	if err := ve.orNil(); err != nil {
		return err
	}

	t.Description = desc
	t.Category = category
	t.DueDate = due
	t.Frequency = freq
	t.Reminders = reminders

	if t.Frequency != nil && (dueChanged || freqChanged) {
		next, err := NextDueDate(t.DueDate, *t.Frequency)
		if err != nil {
			return fmt.Errorf("recompute next due date: %w", err)
		}
		t.NextDueDate = &next
	}

	t.UpdatedAt = now
	return nil
}

// EnsureNextDueDate fills in next_due_date for recurring tasks that lack it.
func EnsureNextDueDate(t *model.Task) error {
	if t.Frequency == nil || t.NextDueDate != nil {
		return nil
	}
	next, err := NextDueDate(t.DueDate, *t.Frequency)
	if err != nil {
		return err
	}
	t.NextDueDate = &next
	return nil
}

func parseOptionalInstant(s, field string, ve *ValidationError) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := ParseInstant(s)
	if err != nil {
		ve.add(field, "%v", err)
		return nil
	}
	return &t
}

func parseFrequency(fr FrequencyRecord, ve *ValidationError) model.Frequency {
	typ := strings.ToLower(strings.TrimSpace(fr.Type))
	switch typ {
	case model.FreqDaily, model.FreqWeekly, model.FreqMonthly, model.FreqYearly:
	default:
		ve.add("frequency.type", "must be one of daily, weekly, monthly, yearly")
	}

	interval := 1
	if fr.Interval != nil {
		interval = *fr.Interval
		if interval < minInterval || interval > maxInterval {
			ve.add("frequency.interval", "must be between %d and %d", minInterval, maxInterval)
		}
	}

	dayOfMonth := 0
	if fr.DayOfMonth != nil {
		dayOfMonth = *fr.DayOfMonth
		if dayOfMonth < 1 || dayOfMonth > 31 {
			ve.add("frequency.day_of_month", "must be between 1 and 31")
		}
	}

	var days []int
	if fr.DaysOfWeek != nil {
		days = append([]int(nil), fr.DaysOfWeek...)
	}

	return model.Frequency{
		Type:       typ,
		Interval:   interval,
		DaysOfWeek: days,
		DayOfMonth: dayOfMonth,
	}
}

func parseReminders(recs []ReminderRecord, ve *ValidationError) []model.Reminder {
	out := make([]model.Reminder, 0, len(recs))
	for i, r := range recs {
		if r.TimeBefore < 0 {
			ve.add(fmt.Sprintf("reminders[%d].time_before", i), "must not be negative")
			continue
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, model.Reminder{
			ID:         id,
			TimeBefore: r.TimeBefore,
			Message:    r.Message,
			Sent:       r.Sent,
		})
	}
	return out
}
