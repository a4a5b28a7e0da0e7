package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRingBufferRejectsNonPowerOfTwo(t *testing.T) {
	_, err := NewRingBuffer[int](10, SingleProducer, NewBusySpinWaitStrategy(), nil)
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestRingBufferPublishEventAndGet(t *testing.T) {
	rb, err := NewRingBuffer[int](8, SingleProducer, NewBusySpinWaitStrategy(), nil)
	require.NoError(t, err)

	seq := rb.PublishEvent(func(slot *int, sequence int64) {
		*slot = int(sequence) * 10
	})
	require.Equal(t, int64(0), seq)
	require.Equal(t, 0, *rb.Get(0))

	seq = rb.PublishEvent(func(slot *int, sequence int64) {
		*slot = int(sequence) * 10
	})
	require.Equal(t, int64(1), seq)
	require.Equal(t, 10, *rb.Get(1))
}

func TestRingBufferTryPublishEventFailsWhenFull(t *testing.T) {
	rb, err := NewRingBuffer[int](2, SingleProducer, NewBusySpinWaitStrategy(), nil)
	require.NoError(t, err)

	gating := NewSequence(InitialSequenceValue)
	rb.AddGatingSequences(gating)

	_, err = rb.TryPublishEvent(func(slot *int, sequence int64) { *slot = 1 })
	require.NoError(t, err)
	_, err = rb.TryPublishEvent(func(slot *int, sequence int64) { *slot = 2 })
	require.NoError(t, err)

	_, err = rb.TryPublishEvent(func(slot *int, sequence int64) { *slot = 3 })
	require.ErrorIs(t, err, ErrCapacityUnavailable)

	gating.Set(0)
	_, err = rb.TryPublishEvent(func(slot *int, sequence int64) { *slot = 3 })
	require.NoError(t, err)
}

func TestRingBufferResetToRefusesWhileConsumerBehind(t *testing.T) {
	rb, err := NewRingBuffer[int](8, SingleProducer, NewBusySpinWaitStrategy(), nil)
	require.NoError(t, err)

	consumer := NewSequence(InitialSequenceValue)
	rb.AddGatingSequences(consumer)

	rb.PublishEvent(func(slot *int, sequence int64) {})

	err = rb.ResetTo(InitialSequenceValue)
	require.ErrorIs(t, err, ErrResetWhileActive)

	consumer.Set(0)
	err = rb.ResetTo(InitialSequenceValue)
	require.NoError(t, err)
	require.Equal(t, int64(InitialSequenceValue), rb.GetCursor().Get())
}

func TestRingBufferFactoryPreallocatesSlots(t *testing.T) {
	type slot struct{ buf []byte }

	rb, err := NewRingBuffer[slot](4, SingleProducer, NewBusySpinWaitStrategy(), func() slot {
		return slot{buf: make([]byte, 16)}
	})
	require.NoError(t, err)

	for i := int64(0); i < 4; i++ {
		require.Len(t, rb.Get(i).buf, 16)
	}
}
