package ringbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitStrategies() map[string]WaitStrategy {
	return map[string]WaitStrategy{
		"BusySpin":       NewBusySpinWaitStrategy(),
		"Yielding":       NewYieldingWaitStrategy(10),
		"Sleeping":       NewSleepingWaitStrategy(time.Microsecond),
		"Blocking":       NewBlockingWaitStrategy(),
		"TimeoutBlocking": NewTimeoutBlockingWaitStrategy(time.Second),
	}
}

func TestWaitStrategyReturnsImmediatelyWhenAvailable(t *testing.T) {
	for name, ws := range waitStrategies() {
		t.Run(name, func(t *testing.T) {
			cursor := NewSequence(5)
			var alert AlertGate

			result, err := ws.WaitFor(3, cursor, cursor, &alert)
			require.NoError(t, err)
			require.Equal(t, int64(5), result.AvailableSequence)
		})
	}
}

func TestWaitStrategyWakesOnPublish(t *testing.T) {
	for name, ws := range waitStrategies() {
		t.Run(name, func(t *testing.T) {
			cursor := NewSequence(InitialSequenceValue)
			var alert AlertGate

			done := make(chan WaitResult, 1)
			errCh := make(chan error, 1)
			go func() {
				r, err := ws.WaitFor(0, cursor, cursor, &alert)
				errCh <- err
				done <- r
			}()

			time.Sleep(5 * time.Millisecond)
			cursor.Set(0)
			ws.SignalAllWhenBlocking()

			select {
			case r := <-done:
				require.NoError(t, <-errCh)
				require.Equal(t, int64(0), r.AvailableSequence)
			case <-time.After(2 * time.Second):
				t.Fatal("WaitFor did not wake after publish")
			}
		})
	}
}

func TestWaitStrategyAlertedReturnsErrAlerted(t *testing.T) {
	for name, ws := range waitStrategies() {
		t.Run(name, func(t *testing.T) {
			cursor := NewSequence(InitialSequenceValue)
			var alert AlertGate

			errCh := make(chan error, 1)
			go func() {
				_, err := ws.WaitFor(0, cursor, cursor, &alert)
				errCh <- err
			}()

			time.Sleep(5 * time.Millisecond)
			alert.Alert()
			ws.SignalAllWhenBlocking()

			select {
			case err := <-errCh:
				require.ErrorIs(t, err, ErrAlerted)
			case <-time.After(2 * time.Second):
				t.Fatal("WaitFor did not return after alert")
			}
		})
	}
}

func TestTimeoutBlockingWaitStrategyTimesOut(t *testing.T) {
	ws := NewTimeoutBlockingWaitStrategy(10 * time.Millisecond)
	cursor := NewSequence(InitialSequenceValue)
	var alert AlertGate

	_, err := ws.WaitFor(0, cursor, cursor, &alert)
	require.ErrorIs(t, err, ErrTimedOut)
}

func TestMinSequenceViewReadsLive(t *testing.T) {
	a, b := NewSequence(3), NewSequence(7)
	view := minSequenceView{a, b}
	require.Equal(t, int64(3), view.Get())

	a.Set(9)
	require.Equal(t, int64(7), view.Get())
}
