package ringbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrierWaitForReturnsAvailableSequence(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	barrier := seq.NewBarrier()

	s := seq.Next()
	seq.Publish(s)

	available, err := barrier.WaitFor(0)
	require.NoError(t, err)
	require.Equal(t, int64(0), available)
}

func TestBarrierAlertInterruptsWait(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBlockingWaitStrategy())
	require.NoError(t, err)

	barrier := seq.NewBarrier()

	errCh := make(chan error, 1)
	go func() {
		_, waitErr := barrier.WaitFor(0)
		errCh <- waitErr
	}()

	barrier.Alert()

	err = <-errCh
	require.ErrorIs(t, err, ErrAlerted)
	require.True(t, barrier.IsAlerted())

	barrier.ClearAlert()
	require.False(t, barrier.IsAlerted())
}

func TestBarrierMultiProducerNarrowsToContiguousPublish(t *testing.T) {
	seq, err := NewMultiProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)
	barrier := seq.NewBarrier()

	s0 := seq.Next()
	s1 := seq.Next()

	// Publish the second claim first; a barrier waiting for sequence 0
	// must not report sequence 1 as available until 0 lands too. Until
	// then WaitFor returns a value below 0, and the waiter retries the
	// way a processor loop does.
	seq.Publish(s1)

	done := make(chan int64, 1)
	go func() {
		for {
			available, waitErr := barrier.WaitFor(0)
			require.NoError(t, waitErr)
			if available >= 0 {
				done <- available
				return
			}
		}
	}()

	seq.Publish(s0)

	select {
	case available := <-done:
		require.Equal(t, int64(1), available)
	case <-time.After(2 * time.Second):
		t.Fatal("barrier did not resolve after both sequences published")
	}
}

func TestBarrierDependentSequenceGatesDownstream(t *testing.T) {
	seq, err := NewSingleProducerSequencer(8, NewBusySpinWaitStrategy())
	require.NoError(t, err)

	upstream := NewSequence(InitialSequenceValue)
	downstreamBarrier := seq.NewBarrier(upstream)

	s := seq.Next()
	seq.Publish(s) // producer side is ready, but upstream consumer isn't yet

	result := make(chan int64, 1)
	go func() {
		available, waitErr := downstreamBarrier.WaitFor(0)
		require.NoError(t, waitErr)
		result <- available
	}()

	select {
	case <-result:
		t.Fatal("downstream barrier resolved before upstream sequence advanced")
	case <-time.After(20 * time.Millisecond):
	}

	upstream.Set(0)

	select {
	case available := <-result:
		require.Equal(t, int64(0), available)
	case <-time.After(2 * time.Second):
		t.Fatal("downstream barrier never resolved after upstream advanced")
	}
}
