package ringbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatingSequencesAddLoad(t *testing.T) {
	g := newGatingSequences()
	require.Empty(t, g.load())

	a, b := NewSequence(1), NewSequence(2)
	g.add(a, b)
	require.Equal(t, []*Sequence{a, b}, g.load())
}

func TestGatingSequencesRemove(t *testing.T) {
	g := newGatingSequences()
	a, b := NewSequence(1), NewSequence(2)
	g.add(a, b)

	require.True(t, g.remove(a))
	require.Equal(t, []*Sequence{b}, g.load())

	require.False(t, g.remove(a))
}

func TestGatingSequencesConcurrentReadDuringWrite(t *testing.T) {
	g := newGatingSequences()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				// Must never see a nil or partially built slice.
				require.NotNil(t, g.load())
			}
		}
	}()

	for i := 0; i < 100; i++ {
		g.add(NewSequence(int64(i)))
	}
	close(stop)
	wg.Wait()

	require.Len(t, g.load(), 100)
}
