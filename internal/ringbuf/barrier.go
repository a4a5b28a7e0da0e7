package ringbuf

// highestPublishedSequencer is the slice of Sequencer a barrier needs to
// narrow a claimed-but-maybe-not-yet-published cursor value down to what
// is actually safe to read. Single-producer cursors are always exactly
// the highest published sequence; multi-producer cursors advance at
// claim time, ahead of publish, so this step matters there.
type highestPublishedSequencer interface {
	GetHighestPublishedSequence(lowerBound, availableSequence int64) int64
}

// SequenceBarrier is what an event processor waits on: it blocks until a
// requested sequence is both claimed by the producer (tracked via cursor)
// and processed by every upstream dependency (tracked via
// dependentSequences), so a downstream stage never reads a slot that an
// earlier stage hasn't finished with yet. Built directly from the wait
// and alert primitives; no single teacher file owns this shape, though
// the alert/wait split mirrors how the teacher's own RingBuffer.Consume
// loop polls a WaitStrategy.
type SequenceBarrier struct {
	cursor             *Sequence
	dependentSequences []*Sequence
	waitStrategy       WaitStrategy
	sequencer          highestPublishedSequencer
	alert              AlertGate
}

func newSequenceBarrier(cursor *Sequence, waitStrategy WaitStrategy, dependencies []*Sequence, sequencer highestPublishedSequencer) *SequenceBarrier {
	deps := dependencies
	if len(deps) == 0 {
		deps = []*Sequence{cursor}
	}
	return &SequenceBarrier{
		cursor:             cursor,
		dependentSequences: deps,
		waitStrategy:       waitStrategy,
		sequencer:          sequencer,
	}
}

// WaitFor blocks until the wait strategy reports sequence reached, then
// returns the highest sequence currently safe to consume (which may be
// higher than requested, allowing batch processing). With a
// multi-producer sequencer the cursor can be claimed ahead of publish,
// so the returned value can be lower than sequence when sequence itself
// is claimed but not yet published; callers loop and call WaitFor again
// in that case. Returns ErrAlerted if the barrier is alerted while
// waiting.
func (b *SequenceBarrier) WaitFor(sequence int64) (int64, error) {
	if err := b.CheckAlert(); err != nil {
		return 0, err
	}

	dependentSequence := b.dependencyBound()
	result, err := b.waitStrategy.WaitFor(sequence, b.cursor, dependentSequence, &b.alert)
	if err != nil {
		return 0, err
	}
	if result.AvailableSequence < sequence {
		return result.AvailableSequence, nil
	}
	return b.sequencer.GetHighestPublishedSequence(sequence, result.AvailableSequence), nil
}

// dependencyBound returns a sequenceReader over the minimum of all
// dependent sequences. With exactly one dependency (the common case: a
// lone upstream stage or the cursor itself) the *Sequence is returned
// directly to avoid an allocation on the hot path; with several, a
// minSequenceView is returned, which re-reads every dependency on each
// Get() call so a wait strategy polling it always sees live progress.
func (b *SequenceBarrier) dependencyBound() sequenceReader {
	if len(b.dependentSequences) == 1 {
		return b.dependentSequences[0]
	}
	return minSequenceView(b.dependentSequences)
}

// minSequenceView is a sequenceReader over several Sequences, reporting
// their live minimum on every Get() rather than a value fixed when the
// view was constructed.
type minSequenceView []*Sequence

func (v minSequenceView) Get() int64 {
	return minSequence(v, InitialSequenceValue)
}

// GetCursor returns the producer cursor this barrier is gated on.
func (b *SequenceBarrier) GetCursor() *Sequence { return b.cursor }

// IsAlerted reports whether the barrier has been alerted.
func (b *SequenceBarrier) IsAlerted() bool { return b.alert.IsAlerted() }

// Alert raises the barrier's alert, causing any in-progress or future
// WaitFor to return ErrAlerted, and wakes the wait strategy so a blocked
// waiter notices promptly.
func (b *SequenceBarrier) Alert() {
	b.alert.Alert()
	b.waitStrategy.SignalAllWhenBlocking()
}

// ClearAlert lowers the barrier's alert so it can be reused.
func (b *SequenceBarrier) ClearAlert() { b.alert.Clear() }

// CheckAlert returns ErrAlerted if the barrier is currently alerted.
func (b *SequenceBarrier) CheckAlert() error {
	if b.alert.IsAlerted() {
		return ErrAlerted
	}
	return nil
}
