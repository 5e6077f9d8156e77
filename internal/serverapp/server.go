package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/config"
	"github.com/boopathiraja455/Voice-task-manager/internal/httpmw"
	"github.com/boopathiraja455/Voice-task-manager/internal/task"
)

const serviceName = "voice-task-manager"

type Options struct {
	Config  *config.Config
	DataDir string
	Logger  *log.Logger
}

// NewHandler wires the task store and API routes into one http.Handler.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.Storage.DataDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	store, err := task.NewStore(opts.DataDir, task.StoreOptions{
		CacheTTL: time.Duration(opts.Config.Storage.CacheTTLSeconds) * time.Second,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	taskHandler := task.NewHandler(store, opts.Config, opts.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)
	mux.HandleFunc("/api/tasks/import", taskHandler.Import)
	mux.HandleFunc("/api/tasks/export", taskHandler.Export)
	mux.HandleFunc("/api/tasks/calendar.ics", taskHandler.Calendar)
	mux.HandleFunc("/api/announcements/summary", taskHandler.AnnouncementSummary)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	dataDir := opts.DataDir
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithCORS(opts.Config.Server.CORSOrigins),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
