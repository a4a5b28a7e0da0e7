package ringbuf

// RingBuffer is a preallocated, fixed-size slot array shared by every
// producer and consumer wired to it. It owns no processing logic itself:
// claiming is delegated to a Sequencer (single- or multi-producer) and
// consuming to BatchEventProcessor/WorkProcessor built on barriers it
// hands out. Generalized from the teacher's pkg/ringbuffer.RingBuffer[T],
// which bundled claim/publish/consume into one type; here that's split
// out so the same slot array can support either producer mode and an
// arbitrary consumer DAG.
type RingBuffer[T any] struct {
	entries   []T
	indexMask int64
	sequencer Sequencer
}

// ProducerType selects which Sequencer a RingBuffer is built with.
type ProducerType int

const (
	// SingleProducer selects SingleProducerSequencer: lower overhead,
	// but only safe when exactly one goroutine ever publishes.
	SingleProducer ProducerType = iota
	// MultiProducer selects MultiProducerSequencer: safe for any number
	// of concurrent publishing goroutines, at the cost of a CAS loop on
	// every claim and an availability buffer on every publish.
	MultiProducer
)

// NewRingBuffer allocates a ring buffer of bufferSize slots (must be a
// power of two) using the given producer type and wait strategy for the
// barriers it will hand out. factory constructs each slot's zero value
// in place, the way the teacher's ring buffer relies on Go's own
// zero-initialized `make([]T, capacity)`; passing nil uses T's ordinary
// zero value.
func NewRingBuffer[T any](bufferSize int64, producerType ProducerType, waitStrategy WaitStrategy, factory func() T) (*RingBuffer[T], error) {
	if !isPowerOfTwo(bufferSize) {
		return nil, ErrInvalidBufferSize
	}

	var sequencer Sequencer
	var err error
	switch producerType {
	case MultiProducer:
		sequencer, err = NewMultiProducerSequencer(bufferSize, waitStrategy)
	default:
		sequencer, err = NewSingleProducerSequencer(bufferSize, waitStrategy)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]T, bufferSize)
	if factory != nil {
		for i := range entries {
			entries[i] = factory()
		}
	}

	return &RingBuffer[T]{
		entries:   entries,
		indexMask: bufferSize - 1,
		sequencer: sequencer,
	}, nil
}

// GetBufferSize returns the number of slots in the ring.
func (r *RingBuffer[T]) GetBufferSize() int64 { return r.sequencer.GetBufferSize() }

// Next claims the next sequence, blocking until a slot is free.
func (r *RingBuffer[T]) Next() int64 { return r.sequencer.Next() }

// NextN claims n contiguous sequences, returning the highest.
func (r *RingBuffer[T]) NextN(n int64) int64 { return r.sequencer.NextN(n) }

// TryNext claims the next sequence without blocking.
func (r *RingBuffer[T]) TryNext() (int64, error) { return r.sequencer.TryNext() }

// TryNextN claims n contiguous sequences without blocking.
func (r *RingBuffer[T]) TryNextN(n int64) (int64, error) { return r.sequencer.TryNextN(n) }

// Get returns a pointer to the slot at sequence, valid to read or write
// once the caller holds a claim on it (via Next/TryNext) and valid to
// read once a barrier has reported it available.
func (r *RingBuffer[T]) Get(sequence int64) *T { return r.get(sequence) }

func (r *RingBuffer[T]) get(sequence int64) *T {
	return &r.entries[sequence&r.indexMask]
}

// Publish makes sequence, and everything written to its slot, visible to
// gated consumers.
func (r *RingBuffer[T]) Publish(sequence int64) { r.sequencer.Publish(sequence) }

// PublishRange makes every sequence in [lo, hi] visible to gated
// consumers, for callers that claimed a batch via NextN/TryNextN.
func (r *RingBuffer[T]) PublishRange(lo, hi int64) { r.sequencer.PublishRange(lo, hi) }

// PublishEvent claims a single sequence, passes its slot to write, and
// publishes — the common case of "claim, fill, publish" collapsed into
// one call so callers can't forget the publish step.
func (r *RingBuffer[T]) PublishEvent(write func(slot *T, sequence int64)) int64 {
	seq := r.Next()
	write(r.get(seq), seq)
	r.Publish(seq)
	return seq
}

// TryPublishEvent is the non-blocking form of PublishEvent.
func (r *RingBuffer[T]) TryPublishEvent(write func(slot *T, sequence int64)) (int64, error) {
	seq, err := r.TryNext()
	if err != nil {
		return 0, err
	}
	write(r.get(seq), seq)
	r.Publish(seq)
	return seq, nil
}

// NewBarrier returns a SequenceBarrier gated on this ring's producer
// cursor plus the given upstream dependencies. Passing no dependencies
// gates directly on the producer cursor, appropriate for the first stage
// of a consumer DAG; passing one or more consumer Sequences chains a
// later stage behind them.
func (r *RingBuffer[T]) NewBarrier(dependencies ...*Sequence) *SequenceBarrier {
	return r.sequencer.NewBarrier(dependencies...)
}

// AddGatingSequences registers consumer sequences the producer must stay
// behind when claiming new slots, so a producer never overwrites a slot
// the slowest consumer hasn't read yet. Every terminal consumer in a DAG
// (one with no downstream reader of its own) must be registered.
func (r *RingBuffer[T]) AddGatingSequences(sequences ...*Sequence) {
	r.sequencer.AddGatingSequences(sequences...)
}

// RemoveGatingSequence unregisters a consumer sequence, reporting
// whether it had been registered.
func (r *RingBuffer[T]) RemoveGatingSequence(sequence *Sequence) bool {
	return r.sequencer.RemoveGatingSequence(sequence)
}

// GetMinimumGatingSequence returns the lowest of the registered gating
// sequences, or the producer cursor if none are registered.
func (r *RingBuffer[T]) GetMinimumGatingSequence() int64 {
	return r.sequencer.GetMinimumSequence()
}

// GetCursor returns the producer cursor Sequence.
func (r *RingBuffer[T]) GetCursor() *Sequence { return r.sequencer.GetCursor() }

// GetCursorValue returns the current producer cursor as a plain int64,
// for callers (such as pkg/metrics) that only want the value and not the
// padded Sequence itself.
func (r *RingBuffer[T]) GetCursorValue() int64 { return r.sequencer.GetCursor().Get() }

// GetMinimumGatingValue is an alias of GetMinimumGatingSequence matching
// the naming pkg/metrics.RingSource expects.
func (r *RingBuffer[T]) GetMinimumGatingValue() int64 { return r.GetMinimumGatingSequence() }

// HasAvailableCapacity reports whether n slots could be claimed right now
// without the caller blocking.
func (r *RingBuffer[T]) HasAvailableCapacity(n int64) bool {
	return r.sequencer.HasAvailableCapacity(n)
}

// ResetTo rewinds the producer cursor to sequence. It is an
// administrative operation, not a concurrency primitive: the caller must
// first halt every processor reading from this ring, since ResetTo does
// not itself coordinate with in-flight readers. As a best-effort guard,
// it refuses with ErrResetWhileActive when any registered gating
// sequence is still behind the current cursor, which would indicate a
// consumer is still actively trailing a live producer.
func (r *RingBuffer[T]) ResetTo(sequence int64) error {
	cursor := r.sequencer.GetCursor()
	if r.GetMinimumGatingSequence() < cursor.Get() {
		return ErrResetWhileActive
	}
	cursor.Set(sequence)
	return nil
}
