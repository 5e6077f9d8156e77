package task

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boopathiraja455/Voice-task-manager/internal/config"
	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

type Handler struct {
	store  *Store
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time
}

func NewHandler(store *Store, cfg *config.Config, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (h *Handler) maxUploadBytes() int64 {
	if h.cfg == nil || h.cfg.Import.MaxUploadBytes <= 0 {
		return 10 << 20
	}
	return h.cfg.Import.MaxUploadBytes
}

func (h *Handler) maxImportErrors() int {
	if h.cfg == nil || h.cfg.Import.MaxErrors <= 0 {
		return 10
	}
	return h.cfg.Import.MaxErrors
}

func (h *Handler) announceListLimit() int {
	if h.cfg == nil || h.cfg.Announcements.ListLimit <= 0 {
		return defaultAnnounceListLimit
	}
	return h.cfg.Announcements.ListLimit
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeValidationErr(w http.ResponseWriter, ve *ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  ve.Error(),
		"fields": ve.Fields,
	})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// CompleteRequest is the body of POST /api/tasks/{id}/complete.
type CompleteRequest struct {
	AutoReschedule *bool `json:"auto_reschedule"`
}

// ImportSummary reports the per-item outcome of a bulk import.
type ImportSummary struct {
	SuccessCount int      `json:"success_count"`
	SkippedCount int      `json:"skipped_count"`
	InvalidCount int      `json:"invalid_count"`
	Errors       []string `json:"errors"`
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter, err := ParseListFilter(r.URL.Query())
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				writeValidationErr(w, ve)
				return
			}
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		tasks := h.store.Load()
		writeJSON(w, http.StatusOK, Filter(tasks, filter, h.now()))
		return

	case http.MethodPost:
		var in CreateRequest
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		now := h.now().UTC()

		t, err := NewTask(in, now)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				writeValidationErr(w, ve)
				return
			}
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := EnsureNextDueDate(&t); err != nil {
			h.logger.Printf("[tasks] next due date for new task: %v", err)
			writeErr(w, http.StatusInternalServerError, "internal server error")
			return
		}

		tasks := h.store.Load()
		tasks = append(tasks, t)
		if err := h.store.Save(tasks); err != nil {
			h.logger.Printf("[tasks] save after create: %v", err)
			writeErr(w, http.StatusInternalServerError, "failed to save task")
			return
		}
		h.logger.Printf("[tasks] created task %s", t.ID)
		writeJSON(w, http.StatusCreated, t)
		return

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
}

// /api/tasks/{id} and /api/tasks/{id}/complete
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := model.TaskID(parts[0])

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getTask(w, id)
		case http.MethodPut:
			h.updateTask(w, r, id)
		default:
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if len(parts) == 2 && parts[1] == "complete" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.completeTask(w, r, id)
		return
	}

	writeErr(w, http.StatusNotFound, "not found")
}

func (h *Handler) getTask(w http.ResponseWriter, id model.TaskID) {
	tasks := h.store.Load()
	i := findTask(tasks, id)
	if i < 0 {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks[i])
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	var in UpdateRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	tasks := h.store.Load()
	i := findTask(tasks, id)
	if i < 0 {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}

	if err := ApplyUpdate(&tasks[i], in, h.now().UTC()); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			writeValidationErr(w, ve)
			return
		}
		h.logger.Printf("[tasks] update %s: %v", id, err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.store.Save(tasks); err != nil {
		h.logger.Printf("[tasks] save after update %s: %v", id, err)
		writeErr(w, http.StatusInternalServerError, "failed to save task")
		return
	}
	h.logger.Printf("[tasks] updated task %s", id)
	writeJSON(w, http.StatusOK, tasks[i])
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	in := CompleteRequest{}
	if r.Body != nil && r.Body != http.NoBody {
		if err := decodeJSON(r, &in); err != nil && err != io.EOF {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
	}
	autoReschedule := in.AutoReschedule == nil || *in.AutoReschedule

	tasks := h.store.Load()
	i := findTask(tasks, id)
	if i < 0 {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}

	now := h.now().UTC()
	tasks[i].Completed = true
	tasks[i].CompletedAt = &now
	tasks[i].UpdatedAt = now

	if autoReschedule && tasks[i].Frequency != nil {
		next, err := rescheduled(tasks[i], now)
		if err != nil {
			h.logger.Printf("[tasks] reschedule %s: %v", id, err)
			writeErr(w, http.StatusInternalServerError, "internal server error")
			return
		}
		tasks = append(tasks, next)
		h.logger.Printf("[tasks] created recurring task %s due %s", next.ID, next.DueDate.Format(time.RFC3339))
	}

	if err := h.store.Save(tasks); err != nil {
		h.logger.Printf("[tasks] save after complete %s: %v", id, err)
		writeErr(w, http.StatusInternalServerError, "failed to save task")
		return
	}
	h.logger.Printf("[tasks] completed task %s (auto_reschedule=%v)", id, autoReschedule)
	writeJSON(w, http.StatusOK, tasks[i])
}

// rescheduled builds the next occurrence of a completed recurring task.
// Reminders are carried over with fresh ids and the sent flag cleared.
func rescheduled(cur model.Task, now time.Time) (model.Task, error) {
	due, err := NextDueDate(cur.DueDate, *cur.Frequency)
	if err != nil {
		return model.Task{}, err
	}

	reminders := make([]model.Reminder, 0, len(cur.Reminders))
	for _, rem := range cur.Reminders {
		reminders = append(reminders, model.Reminder{
			ID:         uuid.NewString(),
			TimeBefore: rem.TimeBefore,
			Message:    rem.Message,
			Sent:       false,
		})
	}

	next := model.Task{
		ID:          model.TaskID(uuid.NewString()),
		Description: cur.Description,
		Category:    cur.Category,
		DueDate:     due,
		Frequency:   cur.Clone().Frequency,
		Reminders:   reminders,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := EnsureNextDueDate(&next); err != nil {
		return model.Task{}, err
	}
	return next, nil
}

// /api/tasks/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		writeErr(w, http.StatusBadRequest, "JSON must be an array of tasks")
		return
	}

	now := h.now().UTC()
	tasks := h.store.Load()
	existing := make(map[model.TaskID]bool, len(tasks))
	for _, t := range tasks {
		existing[t.ID] = true
	}

	summary := ImportSummary{Errors: []string{}}
	var errs []string
	for i, item := range items {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			summary.InvalidCount++
			errs = append(errs, itemError(i, err))
			continue
		}
		if rec.ID != "" && existing[model.TaskID(rec.ID)] {
			summary.SkippedCount++
			continue
		}
		t, err := ParseRecord(rec, now)
		if err != nil {
			summary.InvalidCount++
			errs = append(errs, itemError(i, err))
			continue
		}
		if err := EnsureNextDueDate(&t); err != nil {
			summary.InvalidCount++
			errs = append(errs, itemError(i, err))
			continue
		}
		tasks = append(tasks, t)
		existing[t.ID] = true
		summary.SuccessCount++
	}

	if max := h.maxImportErrors(); len(errs) > max {
		errs = errs[:max]
	}
	if errs != nil {
		summary.Errors = errs
	}

	if summary.SuccessCount > 0 {
		if err := h.store.Save(tasks); err != nil {
			h.logger.Printf("[tasks] save after import: %v", err)
			writeErr(w, http.StatusInternalServerError, "failed to save imported tasks")
			return
		}
	}

	h.logger.Printf("[tasks] import: %d success, %d skipped, %d invalid",
		summary.SuccessCount, summary.SkippedCount, summary.InvalidCount)
	writeJSON(w, http.StatusOK, summary)
}

// readUpload pulls the JSON payload out of a multipart "file" field, or the
// raw request body when the upload is not multipart. Size is bounded before
// any bytes are read.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				writeErr(w, http.StatusRequestEntityTooLarge, "file too large")
				return nil, false
			}
			writeErr(w, http.StatusBadRequest, `missing upload field "file"`)
			return nil, false
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			if isTooLarge(err) {
				writeErr(w, http.StatusRequestEntityTooLarge, "file too large")
				return nil, false
			}
			writeErr(w, http.StatusBadRequest, "could not read upload")
			return nil, false
		}
		return content, true
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		if isTooLarge(err) {
			writeErr(w, http.StatusRequestEntityTooLarge, "file too large")
			return nil, false
		}
		writeErr(w, http.StatusBadRequest, "could not read upload")
		return nil, false
	}
	return content, true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func itemError(index int, err error) string {
	return "Item " + strconv.Itoa(index+1) + ": " + err.Error()
}

// /api/tasks/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tasks := h.store.Load()
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		h.logger.Printf("[tasks] export encode: %v", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	filename := "tasks_export_" + h.now().Format("20060102_150405") + ".json"
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// /api/tasks/calendar.ics
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tasks := h.store.Load()
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, BuildCalendarICS(tasks, h.now()))
}

// /api/announcements/summary
func (h *Handler) AnnouncementSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tasks := h.store.Load()
	summary := BuildSummary(tasks, h.now(), h.announceListLimit())
	h.logger.Printf("[announcements] %d today, %d tomorrow, %d overdue",
		len(summary.TodayUncompleted), len(summary.TomorrowTasks), len(summary.TodayOverdue))
	writeJSON(w, http.StatusOK, summary)
}

func findTask(tasks []model.Task, id model.TaskID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
