package memory

import (
	"context"
	"sync"

	"github.com/Gunvolt24/shoecart/internal/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore - слоты снапшотов в памяти процесса. Живут до рестарта.
type SnapshotStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{slots: make(map[string]string)}
}

func (s *SnapshotStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[key]
	return value, ok, nil
}

func (s *SnapshotStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}
