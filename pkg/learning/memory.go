package learning

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the record cap of the in-memory store.
const DefaultCapacity = 10000

// MemoryStore is a bounded in-memory Store backed by a ring buffer.
// When full, adding a record evicts the oldest one in O(1); the trace
// is always the most recent Capacity records.
type MemoryStore struct {
	mu   sync.RWMutex
	buf  []*Record
	head int // index of the oldest record
	size int
	now  func() time.Time
}

// NewMemoryStore returns a MemoryStore holding at most capacity
// records. A capacity <= 0 uses DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		buf: make([]*Record, capacity),
		now: time.Now,
	}
}

// Capacity returns the record cap.
func (s *MemoryStore) Capacity() int {
	return len(s.buf)
}

func (s *MemoryStore) Add(_ context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	if s.size < len(s.buf) {
		s.buf[(s.head+s.size)%len(s.buf)] = rec
		s.size++
		return nil
	}

	// Full: overwrite the oldest slot and advance the head.
	s.buf[s.head] = rec
	s.head = (s.head + 1) % len(s.buf)
	return nil
}

func (s *MemoryStore) ByUser(_ context.Context, userID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	// Newest first: iterate the ring backwards.
	for i := s.size - 1; i >= 0; i-- {
		rec := s.buf[(s.head+i)%len(s.buf)]
		if rec.UserID != userID {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) All(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, s.size)
	for i := 0; i < s.size; i++ {
		out = append(out, s.buf[(s.head+i)%len(s.buf)])
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

func (s *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Records are in chronological order from the head, so pruning by
	// age is advancing the head past every record older than cutoff.
	pruned := 0
	for s.size > 0 {
		oldest := s.buf[s.head]
		if !oldest.Timestamp.Before(cutoff) {
			break
		}
		s.buf[s.head] = nil
		s.head = (s.head + 1) % len(s.buf)
		s.size--
		pruned++
	}
	return pruned, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
