// Package ringbuf implements the sequencer, wait-strategy, and
// event-processor core of a single-producer/multi-producer ring buffer
// for lock-free, high-throughput inter-goroutine event exchange.
package ringbuf

import "sync/atomic"

// InitialSequenceValue is the value a Sequence holds before anything has
// claimed or published through it.
const InitialSequenceValue int64 = -1

// cacheLinePad is sized to fill the remainder of a typical 64-byte cache
// line after an int64 (8 bytes) and the atomic.Int64 it wraps. Isolating
// a Sequence on its own cache line keeps a hot producer's CAS loop from
// being invalidated by an unrelated consumer sequence sharing the line.
type cacheLinePad [56]byte

// Sequence is a monotonic, cache-line-isolated counter used throughout
// the ring buffer to track producer and consumer progress. All
// operations are lock-free and use acquire/release atomics so that slot
// writes made before a sequence update are visible to any goroutine that
// observes the new value.
type Sequence struct {
	_     cacheLinePad
	value atomic.Int64
	_     cacheLinePad
}

// NewSequence returns a Sequence initialized to initial.
func NewSequence(initial int64) *Sequence {
	s := &Sequence{}
	s.value.Store(initial)
	return s
}

// Get returns the current value with acquire semantics.
func (s *Sequence) Get() int64 {
	return s.value.Load()
}

// Set stores v with release semantics.
func (s *Sequence) Set(v int64) {
	s.value.Store(v)
}

// CompareAndSwap atomically sets the value to new if it currently equals
// old, reporting whether the swap took place.
func (s *Sequence) CompareAndSwap(old, new int64) bool {
	return s.value.CompareAndSwap(old, new)
}

// IncrementAndGet adds 1 and returns the new value.
func (s *Sequence) IncrementAndGet() int64 {
	return s.value.Add(1)
}

// AddAndGet adds n and returns the new value.
func (s *Sequence) AddAndGet(n int64) int64 {
	return s.value.Add(n)
}

// minSequence returns the smallest Get() among seqs, or fallback if seqs
// is empty. Recomputed on every call rather than cached, since gating
// sequences change on every consumer batch.
func minSequence(seqs []*Sequence, fallback int64) int64 {
	if len(seqs) == 0 {
		return fallback
	}
	m := seqs[0].Get()
	for _, s := range seqs[1:] {
		if v := s.Get(); v < m {
			m = v
		}
	}
	return m
}
