package ringbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSingleProducerSequencerRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewSingleProducerSequencer(3, NewBusySpinWaitStrategy())
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestNewMultiProducerSequencerRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewMultiProducerSequencer(0, NewBusySpinWaitStrategy())
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestSingleProducerSequencerClaimAndPublish(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	for i := int64(0); i < 8; i++ {
		claimed := seq.Next()
		require.Equal(t, i, claimed)
		seq.Publish(claimed)
		require.Equal(t, claimed, seq.GetCursor().Get())
	}
}

func TestSingleProducerSequencerTryNextFailsWhenFull(t *testing.T) {
	seq, err := NewSingleProducerSequencer(2, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	gating := NewSequence(InitialSequenceValue)
	seq.AddGatingSequences(gating)

	_, err = seq.TryNext()
	require.NoError(t, err)
	seq.Publish(0)

	_, err = seq.TryNext()
	require.NoError(t, err)
	seq.Publish(1)

	_, err = seq.TryNext()
	require.ErrorIs(t, err, ErrCapacityUnavailable)

	gating.Set(0)
	claimed, err := seq.TryNext()
	require.NoError(t, err)
	require.Equal(t, int64(2), claimed)
}

func TestSingleProducerSequencerNextNInvalidCount(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	_, err = seq.TryNextN(0)
	require.ErrorIs(t, err, ErrInvalidSequenceCount)

	_, err = seq.TryNextN(9)
	require.ErrorIs(t, err, ErrInvalidSequenceCount)
}

func TestMultiProducerSequencerConcurrentClaimsAreUnique(t *testing.T) {
	seq, err := NewMultiProducerSequencer(4096, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	const producers = 16
	const perProducer = 200

	claims := make(chan int64, producers*perProducer)
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				s := seq.Next()
				seq.Publish(s)
				claims <- s
			}
		}()
	}
	wg.Wait()
	close(claims)

	seen := make(map[int64]bool, producers*perProducer)
	for c := range claims {
		require.False(t, seen[c], "sequence %d claimed twice", c)
		seen[c] = true
	}
	require.Len(t, seen, producers*perProducer)
}

func TestMultiProducerSequencerGetHighestPublishedSequenceCollapsesGaps(t *testing.T) {
	seq, err := NewMultiProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	// Claim three slots but publish out of order: 2, then 0, then 1. The
	// highest *contiguous* published sequence starting from 0 is -1 while
	// 0 is unpublished, 0 while 1 is still missing, and 2 once 1 lands.
	require.Equal(t, int64(0), seq.Next())
	require.Equal(t, int64(1), seq.Next())
	require.Equal(t, int64(2), seq.Next())

	seq.Publish(2)
	require.Equal(t, int64(-1), seq.GetHighestPublishedSequence(0, 2))

	seq.Publish(0)
	require.Equal(t, int64(0), seq.GetHighestPublishedSequence(0, 2))

	seq.Publish(1)
	require.Equal(t, int64(2), seq.GetHighestPublishedSequence(0, 2))
}

func TestMultiProducerSequencerGatingBlocksOverwrite(t *testing.T) {
	seq, err := NewMultiProducerSequencer(2, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	gating := NewSequence(InitialSequenceValue)
	seq.AddGatingSequences(gating)

	s0 := seq.Next()
	seq.Publish(s0)
	s1 := seq.Next()
	seq.Publish(s1)

	_, err = seq.TryNext()
	require.ErrorIs(t, err, ErrCapacityUnavailable)

	gating.Set(0)
	s2, err := seq.TryNext()
	require.NoError(t, err)
	require.Equal(t, int64(2), s2)
}

func TestSequencerRemoveGatingSequence(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	g := NewSequence(4)
	seq.AddGatingSequences(g)
	require.Equal(t, int64(4), seq.GetMinimumSequence())

	require.True(t, seq.RemoveGatingSequence(g))
	require.Equal(t, seq.GetCursor().Get(), seq.GetMinimumSequence())
}
