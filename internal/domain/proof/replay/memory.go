package replay

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	items    map[string]time.Time
	mutex    sync.Mutex
	gcFreq   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory builds an in-process replay store with a background sweep.
func NewMemory(gcInterval time.Duration) Store {
	if gcInterval <= 0 {
		gcInterval = time.Minute
	}
	s := &memoryStore{
		items:  make(map[string]time.Time),
		gcFreq: gcInterval,
		stop:   make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

func (s *memoryStore) gcLoop() {
	ticker := time.NewTicker(s.gcFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) sweep() {
	now := time.Now()
	s.mutex.Lock()
	for id, exp := range s.items {
		if now.After(exp) {
			delete(s.items, id)
		}
	}
	s.mutex.Unlock()
}

func (s *memoryStore) Consume(_ context.Context, proofID string, expiresAt time.Time) (bool, error) {
	now := time.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if exp, ok := s.items[proofID]; ok && now.Before(exp) {
		return true, nil
	}
	s.items[proofID] = expiresAt
	return false, nil
}

func (s *memoryStore) Stats(context.Context) (map[string]any, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return map[string]any{
		"type":  "memory",
		"total": len(s.items),
	}, nil
}

func (s *memoryStore) Close(context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
