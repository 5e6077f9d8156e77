package task

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/boopathiraja455/Voice-task-manager/internal/model"
)

const (
	tasksFileName   = "tasks.json"
	defaultCacheTTL = 10 * time.Second
)

// Store owns the backing document and a short-lived read cache. One mutex
// serializes every load-parse and serialize-write-rename sequence within the
// process; coordination across processes is explicitly out of scope.
type Store struct {
	mu     sync.Mutex
	path   string
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	cached       []model.Task
	cacheExpires time.Time
}

type StoreOptions struct {
	// CacheTTL bounds how long a loaded snapshot is served without touching
	// storage. Zero means the 10 second default.
	CacheTTL time.Duration
	Logger   *log.Logger
}

// NewStore creates the data directory if needed and returns a store for the
// tasks document inside it.
func NewStore(dataDir string, opts StoreOptions) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		path:   filepath.Join(dataDir, tasksFileName),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// Load returns a snapshot of the task collection. A fresh cache is served
// without touching storage. Read failures and a malformed top-level document
// degrade to an empty collection with the cause logged; individual bad
// records are skipped so one corrupt entry never poisons the whole load.
func (s *Store) Load() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != nil && now.Before(s.cacheExpires) {
		return model.CloneTasks(s.cached)
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("[store] read %s: %v", s.path, err)
		}
		return []model.Task{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		s.logger.Printf("[store] malformed tasks document %s: %v", s.path, err)
		return []model.Task{}
	}

	tasks := make([]model.Task, 0, len(raw))
	for i, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			s.logger.Printf("[store] skipping unreadable record %d: %v", i, err)
			continue
		}
		t, err := ParseRecord(rec, now)
		if err != nil {
			s.logger.Printf("[store] skipping invalid task %s: %v", recordID(rec, i), err)
			continue
		}
		tasks = append(tasks, t)
	}

	// The cache slot is written only after a fully successful load.
	s.cached = model.CloneTasks(tasks)
	s.cacheExpires = now.Add(s.ttl)

	return tasks
}

// Save serializes the whole collection to a temp file in the document's
// directory, forces it to durable storage and atomically renames it over the
// backing document, so readers never observe a partial write. The cache is
// invalidated only after the rename succeeds; on any failure the temp file
// is removed and the previous document is left untouched.
func (s *Store) Save(tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace tasks document: %w", err)
	}

	s.cached = nil
	s.cacheExpires = time.Time{}

	s.logger.Printf("[store] saved %d tasks", len(tasks))
	return nil
}

func recordID(rec Record, index int) string {
	if rec.ID != "" {
		return rec.ID
	}
	return fmt.Sprintf("#%d", index)
}
