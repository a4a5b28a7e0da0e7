package ringbuf

import (
	"runtime"
	"sync/atomic"
)

// Sequencer coordinates claiming and publishing slots in a ring buffer. A
// ring buffer owns exactly one Sequencer, shared by however many producer
// goroutines write through it; SingleProducerSequencer and
// MultiProducerSequencer trade producer-side contention handling for
// claim-path cost.
type Sequencer interface {
	// Next claims the next sequence, blocking until a slot is free.
	Next() int64
	// NextN claims the next n sequences as a contiguous batch, returning
	// the highest of the batch; the caller owns [hi-n+1, hi].
	NextN(n int64) int64
	// TryNext claims the next sequence without blocking, returning
	// ErrCapacityUnavailable if the ring is full.
	TryNext() (int64, error)
	// TryNextN is the non-blocking form of NextN.
	TryNextN(n int64) (int64, error)
	// Publish makes sequence visible to gated consumers.
	Publish(sequence int64)
	// PublishRange publishes every sequence in [lo, hi].
	PublishRange(lo, hi int64)
	// GetHighestPublishedSequence returns the highest sequence in
	// [lowerBound, availableSequence] that is contiguously published
	// with everything below it, or lowerBound-1 when lowerBound itself
	// is not yet published.
	GetHighestPublishedSequence(lowerBound, availableSequence int64) int64
	// HasAvailableCapacity reports whether n slots can be claimed right
	// now without waiting.
	HasAvailableCapacity(n int64) bool
	// GetCursor returns the sequencer's cursor (highest published
	// sequence for a single producer, highest claimed sequence for
	// multiple producers), used by barriers as the producer-side
	// dependency.
	GetCursor() *Sequence
	// NewBarrier returns a SequenceBarrier gated on this sequencer's
	// cursor plus the given consumer dependencies.
	NewBarrier(dependencies ...*Sequence) *SequenceBarrier
	// AddGatingSequences registers consumer sequences the producer must
	// stay behind when claiming new slots.
	AddGatingSequences(sequences ...*Sequence)
	// RemoveGatingSequence unregisters a consumer sequence, reporting
	// whether it was present.
	RemoveGatingSequence(sequence *Sequence) bool
	// GetMinimumSequence returns the lowest of the registered gating
	// sequences, or the cursor value if none are registered.
	GetMinimumSequence() int64
	// GetBufferSize returns the ring buffer's capacity.
	GetBufferSize() int64
}

// baseSequencer holds the state shared by both sequencer flavors: the
// cursor, the gating set, the wait strategy used to build barriers, and
// the buffer geometry.
type baseSequencer struct {
	bufferSize   int64
	indexMask    int64
	waitStrategy WaitStrategy
	cursor       *Sequence
	gating       *gatingSequences
}

func newBaseSequencer(bufferSize int64, waitStrategy WaitStrategy) baseSequencer {
	return baseSequencer{
		bufferSize:   bufferSize,
		indexMask:    bufferSize - 1,
		waitStrategy: waitStrategy,
		cursor:       NewSequence(InitialSequenceValue),
		gating:       newGatingSequences(),
	}
}

func (b *baseSequencer) GetCursor() *Sequence { return b.cursor }

func (b *baseSequencer) GetBufferSize() int64 { return b.bufferSize }

func (b *baseSequencer) AddGatingSequences(sequences ...*Sequence) {
	b.gating.add(sequences...)
}

func (b *baseSequencer) RemoveGatingSequence(sequence *Sequence) bool {
	return b.gating.remove(sequence)
}

func (b *baseSequencer) GetMinimumSequence() int64 {
	return minSequence(b.gating.load(), b.cursor.Get())
}

// SingleProducerSequencer is a Sequencer specialized for a single
// producer goroutine. The claim path uses plain reads and writes of a
// producer-private nextValue rather than CAS on the cursor, since only
// one goroutine ever claims; the cursor is only stored on Publish;
// this is the fast path the teacher's pkg/ringbuffer.RingBuffer.Publish
// implements for its single-producer case, generalized here to honor
// gating sequences instead of a single consumer slice.
type SingleProducerSequencer struct {
	baseSequencer
	nextValue int64 // producer-private, no synchronization needed
}

// NewSingleProducerSequencer returns a Sequencer for exactly one producer
// goroutine. bufferSize must be a power of two.
func NewSingleProducerSequencer(bufferSize int64, waitStrategy WaitStrategy) (*SingleProducerSequencer, error) {
	if !isPowerOfTwo(bufferSize) {
		return nil, ErrInvalidBufferSize
	}
	return &SingleProducerSequencer{
		baseSequencer: newBaseSequencer(bufferSize, waitStrategy),
		nextValue:     InitialSequenceValue,
	}, nil
}

func (s *SingleProducerSequencer) Next() int64 {
	n, _ := s.next(1, true)
	return n
}

func (s *SingleProducerSequencer) NextN(n int64) int64 {
	hi, _ := s.next(n, true)
	return hi
}

func (s *SingleProducerSequencer) TryNext() (int64, error) {
	return s.next(1, false)
}

func (s *SingleProducerSequencer) TryNextN(n int64) (int64, error) {
	return s.next(n, false)
}

func (s *SingleProducerSequencer) next(n int64, block bool) (int64, error) {
	if n < 1 || n > s.bufferSize {
		return 0, ErrInvalidSequenceCount
	}

	nextValue := s.nextValue
	nextSequence := nextValue + n
	wrapPoint := nextSequence - s.bufferSize

	if wrapPoint > s.GetMinimumSequence() {
		if !block {
			return 0, ErrCapacityUnavailable
		}
		for wrapPoint > s.GetMinimumSequence() {
			runtime.Gosched()
		}
	}

	s.nextValue = nextSequence
	return nextSequence, nil
}

func (s *SingleProducerSequencer) HasAvailableCapacity(n int64) bool {
	wrapPoint := s.nextValue + n - s.bufferSize
	return wrapPoint <= s.GetMinimumSequence()
}

// Publish advances the cursor to sequence and wakes any waiting
// consumers. With a single producer the cursor only ever moves forward
// by exactly the claimed amount, so a plain store is enough.
func (s *SingleProducerSequencer) Publish(sequence int64) {
	s.cursor.Set(sequence)
	s.waitStrategy.SignalAllWhenBlocking()
}

func (s *SingleProducerSequencer) PublishRange(lo, hi int64) {
	s.Publish(hi)
}

// GetHighestPublishedSequence is trivial for a single producer: the
// cursor itself is always the highest published (and only published)
// sequence, so any availableSequence up to it is already contiguous.
func (s *SingleProducerSequencer) GetHighestPublishedSequence(lowerBound, availableSequence int64) int64 {
	return availableSequence
}

// NewBarrier returns a SequenceBarrier gated on this sequencer's cursor
// plus the given consumer dependencies.
func (s *SingleProducerSequencer) NewBarrier(dependencies ...*Sequence) *SequenceBarrier {
	return newSequenceBarrier(s.cursor, s.waitStrategy, dependencies, s)
}

// availabilityBuffer tracks, per ring slot, which lap of the buffer last
// published into it. A slot's flag equals sequence>>log2(bufferSize) once
// that sequence has been published; this lets GetHighestPublishedSequence
// collapse a run of out-of-order multi-producer publishes into the
// longest safe contiguous prefix without a separate "published" cursor.
type availabilityBuffer struct {
	log2BufferSize uint
	indexMask      int64
	flags          []atomic.Int32
}

func newAvailabilityBuffer(bufferSize int64) *availabilityBuffer {
	a := &availabilityBuffer{
		log2BufferSize: uint(log2(bufferSize)),
		indexMask:      bufferSize - 1,
		flags:          make([]atomic.Int32, bufferSize),
	}
	for i := range a.flags {
		a.flags[i].Store(-1)
	}
	return a
}

func (a *availabilityBuffer) set(sequence int64) {
	a.flags[sequence&a.indexMask].Store(int32(sequence >> a.log2BufferSize))
}

func (a *availabilityBuffer) isAvailable(sequence int64) bool {
	flag := int32(sequence >> a.log2BufferSize)
	return a.flags[sequence&a.indexMask].Load() == flag
}

// MultiProducerSequencer is a Sequencer shared by any number of concurrent
// producer goroutines. Claiming uses a CAS loop on the cursor (grounded
// on the teacher-adjacent five-vee MultiProducer.Produce and rishavpaul
// Sequencer.Next CAS loops); publishing marks an availability flag per
// slot instead of blocking on predecessors, so producers that finish out
// of order don't stall each other, and consumers only ever observe a
// contiguous prefix via GetHighestPublishedSequence.
type MultiProducerSequencer struct {
	baseSequencer
	availability *availabilityBuffer
	gatingCache  atomic.Int64
}

// NewMultiProducerSequencer returns a Sequencer safe for concurrent use
// by any number of producer goroutines. bufferSize must be a power of
// two.
func NewMultiProducerSequencer(bufferSize int64, waitStrategy WaitStrategy) (*MultiProducerSequencer, error) {
	if !isPowerOfTwo(bufferSize) {
		return nil, ErrInvalidBufferSize
	}
	s := &MultiProducerSequencer{
		baseSequencer: newBaseSequencer(bufferSize, waitStrategy),
		availability:  newAvailabilityBuffer(bufferSize),
	}
	s.gatingCache.Store(InitialSequenceValue)
	return s, nil
}

func (s *MultiProducerSequencer) Next() int64 {
	n, _ := s.next(1, true)
	return n
}

func (s *MultiProducerSequencer) NextN(n int64) int64 {
	hi, _ := s.next(n, true)
	return hi
}

func (s *MultiProducerSequencer) TryNext() (int64, error) {
	return s.next(1, false)
}

func (s *MultiProducerSequencer) TryNextN(n int64) (int64, error) {
	return s.next(n, false)
}

func (s *MultiProducerSequencer) next(n int64, block bool) (int64, error) {
	if n < 1 || n > s.bufferSize {
		return 0, ErrInvalidSequenceCount
	}

	for {
		current := s.cursor.Get()
		next := current + n
		wrapPoint := next - s.bufferSize

		cachedGating := s.gatingCache.Load()
		if wrapPoint > cachedGating {
			gatingSeq := s.GetMinimumSequence()
			s.gatingCache.Store(gatingSeq)
			if wrapPoint > gatingSeq {
				if !block {
					return 0, ErrCapacityUnavailable
				}
				runtime.Gosched()
				continue
			}
		}

		if s.cursor.CompareAndSwap(current, next) {
			return next, nil
		}
		// Lost the race to another producer; retry with a fresh cursor.
	}
}

func (s *MultiProducerSequencer) HasAvailableCapacity(n int64) bool {
	current := s.cursor.Get()
	wrapPoint := current + n - s.bufferSize
	cachedGating := s.gatingCache.Load()
	if wrapPoint > cachedGating {
		gatingSeq := s.GetMinimumSequence()
		s.gatingCache.Store(gatingSeq)
		return wrapPoint <= gatingSeq
	}
	return true
}

func (s *MultiProducerSequencer) Publish(sequence int64) {
	s.availability.set(sequence)
	s.waitStrategy.SignalAllWhenBlocking()
}

func (s *MultiProducerSequencer) PublishRange(lo, hi int64) {
	for seq := lo; seq <= hi; seq++ {
		s.availability.set(seq)
	}
	s.waitStrategy.SignalAllWhenBlocking()
}

func (s *MultiProducerSequencer) GetHighestPublishedSequence(lowerBound, availableSequence int64) int64 {
	for seq := lowerBound; seq <= availableSequence; seq++ {
		if !s.availability.isAvailable(seq) {
			return seq - 1
		}
	}
	return availableSequence
}

// NewBarrier returns a SequenceBarrier gated on this sequencer's cursor
// plus the given consumer dependencies.
func (s *MultiProducerSequencer) NewBarrier(dependencies ...*Sequence) *SequenceBarrier {
	return newSequenceBarrier(s.cursor, s.waitStrategy, dependencies, s)
}

func isPowerOfTwo(n int64) bool {
	return n > 0 && n <= (1<<30) && (n&(n-1)) == 0
}

func log2(n int64) int {
	r := 0
	for n > 1 {
		n >>= 1
		r++
	}
	return r
}
