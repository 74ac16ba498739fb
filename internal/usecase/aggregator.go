package usecase

import (
	"container/heap"

	"github.com/user/log-console/internal/domain"
)

// Unify merges the given stores into one newest-first sequence. Each store is
// snapshotted once, so the inputs are never mutated and every call returns a
// fresh slice. Records are ordered by timestamp descending; ties are broken by
// ID descending, so the later-created record wins and the order is total even
// when producers log within the same timestamp resolution.
func Unify(stores ...domain.RecordStore) []domain.Record {
	sequences := make([][]domain.Record, 0, len(stores))
	total := 0
	for _, store := range stores {
		snap := store.Snapshot()
		if len(snap) == 0 {
			continue
		}
		sequences = append(sequences, snap)
		total += len(snap)
	}

	switch len(sequences) {
	case 0:
		return []domain.Record{}
	case 1:
		return sequences[0]
	}

	h := make(mergeHeap, 0, len(sequences))
	for _, seq := range sequences {
		h = append(h, mergeCursor{records: seq})
	}
	heap.Init(&h)

	out := make([]domain.Record, 0, total)
	for h.Len() > 0 {
		cur := h[0]
		out = append(out, cur.records[cur.pos])
		if cur.pos+1 < len(cur.records) {
			h[0].pos++
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}
	return out
}

// mergeCursor walks one newest-first snapshot during the k-way merge.
type mergeCursor struct {
	records []domain.Record
	pos     int
}

type mergeHeap []mergeCursor

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	a, b := h[i].records[h[i].pos], h[j].records[h[j].pos]
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(mergeCursor)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
