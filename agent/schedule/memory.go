package schedule

import (
	"context"
	"fmt"
	"sync"

	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// MemoryStore keeps schedules in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]Schedule
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]Schedule)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.items[NewKey(key.StudentID, key.Term, key.Year)]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: schedule %s", contractx.ErrNotFound, key)
	}
	s.Courses = append([]catalogx.Course{}, s.Courses...)
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, s Schedule) error {
	key := s.Key()
	if err := key.validate(); err != nil {
		return err
	}
	s.Courses = append([]catalogx.Course{}, s.Courses...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, NewKey(key.StudentID, key.Term, key.Year))
	return nil
}
