package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/user/log-console/internal/domain"
)

func rec(id uint64, msg string) domain.Record {
	return domain.Record{
		ID:        id,
		Producer:  domain.ProducerGeneral,
		Level:     domain.LevelInfo,
		Message:   msg,
		Timestamp: time.Unix(int64(id), 0).UTC(),
	}
}

func TestRingStore_BoundedInvariant(t *testing.T) {
	store := NewRingStore(5, true)
	for i := 1; i <= 50; i++ {
		store.Append(rec(uint64(i), fmt.Sprintf("msg %d", i)))
		if store.Len() > 5 {
			t.Fatalf("length %d exceeds capacity after append %d", store.Len(), i)
		}
	}
}

func TestRingStore_CircularEviction(t *testing.T) {
	store := NewRingStore(3, true)
	for i := 1; i <= 7; i++ {
		outcome := store.Append(rec(uint64(i), ""))
		if i <= 3 && outcome != domain.AppendStored {
			t.Errorf("append %d: got outcome %v, want AppendStored", i, outcome)
		}
		if i > 3 && outcome != domain.AppendEvicted {
			t.Errorf("append %d: got outcome %v, want AppendEvicted", i, outcome)
		}
	}

	snap := store.Snapshot()
	wantIDs := []uint64{7, 6, 5}
	if len(snap) != len(wantIDs) {
		t.Fatalf("got %d records, want %d", len(snap), len(wantIDs))
	}
	for i, want := range wantIDs {
		if snap[i].ID != want {
			t.Errorf("snapshot[%d].ID = %d, want %d", i, snap[i].ID, want)
		}
	}
}

func TestRingStore_NonCircularRejection(t *testing.T) {
	store := NewRingStore(2, false)
	store.Append(rec(1, "first"))
	store.Append(rec(2, "second"))

	if outcome := store.Append(rec(3, "third")); outcome != domain.AppendRejected {
		t.Fatalf("got outcome %v, want AppendRejected", outcome)
	}

	snap := store.Snapshot()
	if len(snap) != 2 || snap[0].ID != 2 || snap[1].ID != 1 {
		t.Errorf("rejection mutated store contents: %+v", snap)
	}
}

func TestRingStore_SnapshotIsACopy(t *testing.T) {
	store := NewRingStore(4, true)
	store.Append(rec(1, "original"))

	snap := store.Snapshot()
	snap[0].Message = "mutated"

	if got := store.Snapshot()[0].Message; got != "original" {
		t.Errorf("snapshot mutation leaked into store: got %q", got)
	}
}

func TestRingStore_SetCapacity(t *testing.T) {
	t.Run("Truncates Oldest Immediately", func(t *testing.T) {
		store := NewRingStore(5, true)
		for i := 1; i <= 5; i++ {
			store.Append(rec(uint64(i), ""))
		}

		store.SetCapacity(2)

		if store.Capacity() != 2 {
			t.Errorf("capacity = %d, want 2", store.Capacity())
		}
		snap := store.Snapshot()
		if len(snap) != 2 || snap[0].ID != 5 || snap[1].ID != 4 {
			t.Errorf("expected newest two records kept, got %+v", snap)
		}
	})

	t.Run("Growth Admits New Records", func(t *testing.T) {
		store := NewRingStore(1, false)
		store.Append(rec(1, ""))
		if outcome := store.Append(rec(2, "")); outcome != domain.AppendRejected {
			t.Fatalf("expected rejection at capacity, got %v", outcome)
		}

		store.SetCapacity(2)
		if outcome := store.Append(rec(2, "")); outcome != domain.AppendStored {
			t.Errorf("expected store after growth, got %v", outcome)
		}
	})
}

func TestRingStore_Clear(t *testing.T) {
	store := NewRingStore(3, false)
	store.Append(rec(1, ""))
	store.Append(rec(2, ""))

	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("length after clear = %d, want 0", store.Len())
	}
	if store.Capacity() != 3 {
		t.Errorf("clear changed capacity: got %d", store.Capacity())
	}
	if outcome := store.Append(rec(3, "")); outcome != domain.AppendStored {
		t.Errorf("append after clear: got %v, want AppendStored", outcome)
	}
}
