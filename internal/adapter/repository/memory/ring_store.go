package memory

import (
	"sync"

	"github.com/user/log-console/internal/domain"
)

// RingStore is an in-memory implementation of domain.RecordStore. Records are
// kept oldest-first internally; snapshots are returned newest-first. In
// circular mode the oldest record is evicted once the store is full, otherwise
// new records are rejected.
type RingStore struct {
	mu       sync.RWMutex
	records  []domain.Record
	capacity int
	circular bool
}

// NewRingStore creates a store with the given capacity. A non-positive
// capacity falls back to 1 so the bounded invariant always holds.
func NewRingStore(capacity int, circular bool) *RingStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingStore{
		records:  make([]domain.Record, 0, capacity),
		capacity: capacity,
		circular: circular,
	}
}

// Append admits a record at the newest end.
func (s *RingStore) Append(rec domain.Record) domain.AppendOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.capacity {
		if !s.circular {
			return domain.AppendRejected
		}
		s.records = append(s.records[1:], rec)
		return domain.AppendEvicted
	}

	s.records = append(s.records, rec)
	return domain.AppendStored
}

// Snapshot returns a newest-first copy of the contents.
func (s *RingStore) Snapshot() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Record, len(s.records))
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec
	}
	return out
}

// Clear empties the store. Capacity and mode are unchanged.
func (s *RingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// SetCapacity resizes the store, dropping the oldest records immediately if
// the current length exceeds the new capacity.
func (s *RingStore) SetCapacity(n int) {
	if n <= 0 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = n
	if len(s.records) > n {
		s.records = append([]domain.Record(nil), s.records[len(s.records)-n:]...)
	}
}

// Len returns the current number of records.
func (s *RingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Capacity returns the configured capacity.
func (s *RingStore) Capacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capacity
}
