// Package store keeps opened models resident under generated identifiers.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/metrics"
	"ifc-api/internal/engine"

	"github.com/google/uuid"
)

var ErrModelNotFound = errors.New("model not found")

// ModelEntry is one resident model together with the scratch file it was
// opened from.
type ModelEntry struct {
	ID          string
	Model       *engine.Model
	Filename    string
	BackingPath string
	Size        int64
	LoadedAt    time.Time
}

// Summary is the listing form of an entry.
type Summary struct {
	ModelID  string `json:"model_id"`
	Filename string `json:"filename"`
}

// Store is a process-local table of models. All operations are serialised by
// a single RWMutex; backing files are deleted while the write lock is held.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*ModelEntry
	order   []string
	logger  logger.Logger

	newID      func() string
	removeFile func(string) error
	now        func() time.Time
}

func New(log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		entries:    make(map[string]*ModelEntry),
		logger:     log,
		newID:      func() string { return uuid.New().String() },
		removeFile: os.Remove,
		now:        time.Now,
	}
}

// Create registers model and returns its new identifier.
func (s *Store) Create(model *engine.Model, filename, backingPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, exists := s.entries[id]; exists {
		panic(fmt.Sprintf("store: model id collision on %s", id))
	}
	entry := &ModelEntry{
		ID:          id,
		Model:       model,
		Filename:    filename,
		BackingPath: backingPath,
		Size:        int64(model.Size()),
		LoadedAt:    s.now(),
	}
	s.entries[id] = entry
	s.order = append(s.order, id)
	metrics.ModelsLoaded.Set(float64(len(s.entries)))

	s.logger.Debug("Model stored", map[string]interface{}{
		"modelId":  id,
		"filename": filename,
		"bytes":    entry.Size,
		"loadedAt": entry.LoadedAt.UTC().Format(time.RFC3339),
		"models":   len(s.entries),
	})
	return id
}

func (s *Store) Get(id string) (*ModelEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return entry, nil
}

// Remove deletes the backing file and then the entry. A backing file that is
// already gone is not an error; any other failure keeps the entry.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if err := s.deleteBacking(entry); err != nil {
		return err
	}
	s.drop(id)

	s.logger.Debug("Model removed", map[string]interface{}{
		"modelId":  id,
		"filename": entry.Filename,
		"bytes":    entry.Size,
		"resident": s.now().Sub(entry.LoadedAt).String(),
		"models":   len(s.entries),
	})
	return nil
}

// List returns every entry in insertion order.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Summary{ModelID: id, Filename: s.entries[id].Filename})
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Purge removes every entry and its backing file. Entries are dropped even
// when their file cannot be deleted; the failures are returned joined.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, id := range s.order {
		if err := s.deleteBacking(s.entries[id]); err != nil {
			errs = append(errs, err)
		}
	}
	purged := len(s.order)
	s.entries = make(map[string]*ModelEntry)
	s.order = nil
	metrics.ModelsLoaded.Set(0)

	s.logger.Info("Store purged", map[string]interface{}{
		"models":   purged,
		"failures": len(errs),
	})
	return errors.Join(errs...)
}

func (s *Store) deleteBacking(entry *ModelEntry) error {
	if entry.BackingPath == "" {
		return nil
	}
	if err := s.removeFile(entry.BackingPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backing file of %s: %w", entry.ID, err)
	}
	return nil
}

func (s *Store) drop(id string) {
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.ModelsLoaded.Set(float64(len(s.entries)))
}
