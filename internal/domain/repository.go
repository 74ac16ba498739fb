package domain

// AppendOutcome describes what a bounded store did with a record. Producers
// never see it; it only feeds metrics.
type AppendOutcome int

const (
	// AppendStored means the record was admitted with room to spare.
	AppendStored AppendOutcome = iota
	// AppendEvicted means the record was admitted and the oldest one was
	// evicted to make room (circular mode).
	AppendEvicted
	// AppendRejected means the store was full and not circular; the record
	// was silently dropped.
	AppendRejected
)

// RecordStore is the bounded, insertion-ordered buffer holding one
// producer's records. Implementations must be safe for concurrent use:
// producers may append from background goroutines while the presentation
// layer reads.
type RecordStore interface {
	// Append admits a record, evicting the oldest one in circular mode when
	// the store is at capacity. Total function: it never fails, it only
	// reports the outcome.
	Append(rec Record) AppendOutcome

	// Snapshot returns a newest-first copy of the contents. Mutating the
	// returned slice does not affect the store.
	Snapshot() []Record

	// Clear empties the store without touching its configuration.
	Clear()

	// SetCapacity resizes the store, truncating from the oldest end
	// immediately if the current length exceeds the new capacity.
	SetCapacity(n int)

	Len() int
	Capacity() int
}
