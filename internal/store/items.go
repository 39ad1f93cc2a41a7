// Package store holds the collected items in memory and mirrors every
// mutation to a key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/idilsaglam/quickcollect/internal/model"
)

// Key is the single backend key the whole collection lives under.
const Key = "quickcollect_items"

var (
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrNotPersisted means the in-memory mutation was applied but the
	// backend write failed.
	ErrNotPersisted = errors.New("not persisted")
)

// Backend is durable key-value storage.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Items is the ordered collection, newest first.
type Items struct {
	mu      sync.RWMutex
	items   []model.Item
	backend Backend
	log     *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *Items {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Items{backend: backend, log: logger.Named("store")}
}

// Load replaces the in-memory collection with what the backend holds.
// Missing, unreadable or malformed data yields an empty collection; the
// problem is logged and never returned.
func (s *Items) Load(ctx context.Context) {
	items := s.read(ctx)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Items) read(ctx context.Context) []model.Item {
	b, found, err := s.backend.Get(ctx, Key)
	if err != nil {
		s.log.Warn("read failed, starting empty", zap.Error(err))
		return []model.Item{}
	}
	if !found || len(strings.TrimSpace(string(b))) == 0 {
		return []model.Item{}
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		s.log.Warn("discarding malformed data", zap.Error(err), zap.Int("bytes", len(b)))
		return []model.Item{}
	}
	if items == nil {
		items = []model.Item{}
	}
	s.log.Debug("loaded", zap.Int("items", len(items)))
	return items
}

// Add prepends item and persists the collection.
func (s *Items) Add(ctx context.Context, item model.Item) error {
	if strings.TrimSpace(item.Title) == "" {
		return model.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.ID == item.ID {
			return fmt.Errorf("%s: %w", item.ID, ErrDuplicateID)
		}
	}
	next := make([]model.Item, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	s.items = next

	s.log.Debug("added", zap.String("id", item.ID), zap.Int("items", len(s.items)))
	return s.flush(ctx)
}

// Delete removes the item with the given id. It reports whether an item was
// removed; an unknown id changes nothing and writes nothing.
func (s *Items) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	next := make([]model.Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next

	s.log.Debug("deleted", zap.String("id", id), zap.Int("items", len(s.items)))
	return true, s.flush(ctx)
}

// List returns a copy of the collection in display order.
func (s *Items) List() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Items) Get(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func (s *Items) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// flush writes the whole collection. Caller holds mu.
func (s *Items) flush(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		s.log.Error("marshal failed", zap.Error(err))
		return fmt.Errorf("json marshal: %w: %w", ErrNotPersisted, err)
	}
	if err := s.backend.Put(ctx, Key, b); err != nil {
		s.log.Error("write failed", zap.Error(err), zap.Int("items", len(items)))
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}
