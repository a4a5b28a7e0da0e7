package ringbuf

import (
	"runtime"
	"sync"
	"time"
)

// AlertGate is the cooperative cancellation flag a wait strategy polls
// while blocked. Setting it and calling SignalAllWhenBlocking on the
// strategy that is waiting on it is the only sanctioned way to abort a
// blocked waiter.
type AlertGate struct {
	alerted bool
	mu      sync.RWMutex
}

// IsAlerted reports whether the gate has been raised.
func (a *AlertGate) IsAlerted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.alerted
}

// Alert raises the gate.
func (a *AlertGate) Alert() {
	a.mu.Lock()
	a.alerted = true
	a.mu.Unlock()
}

// Clear lowers the gate.
func (a *AlertGate) Clear() {
	a.mu.Lock()
	a.alerted = false
	a.mu.Unlock()
}

// WaitResult is the outcome of a WaitStrategy.WaitFor call: the highest
// sequence observed available, and whether the cursor itself had already
// advanced past the target (an optimisation hint some strategies choose
// never to set).
type WaitResult struct {
	AvailableSequence int64
	CursorAdvanced    bool
}

// sequenceReader is anything WaitFor can poll for a current value: a
// lone *Sequence for the common single-dependency case, or an aggregate
// over several dependencies (see barrier.go's minSequenceView) for a
// barrier with more than one upstream stage. Re-read on every poll so a
// waiter always observes live progress, never a snapshot taken when the
// wait began.
type sequenceReader interface {
	Get() int64
}

// WaitStrategy is the pluggable protocol a consumer uses to wait until
// cursor and dependentSequence have both reached targetSequence. Every
// strategy must periodically check alert and return ErrAlerted as soon
// as it observes the gate raised.
type WaitStrategy interface {
	// WaitFor blocks until cursor.Get() >= targetSequence and
	// dependentSequence.Get() >= targetSequence, or the alert gate is
	// raised, or (for timeout variants) a timeout elapses.
	WaitFor(targetSequence int64, cursor *Sequence, dependentSequence sequenceReader, alert *AlertGate) (WaitResult, error)
	// SignalAllWhenBlocking wakes any goroutine parked inside WaitFor.
	// Strategies with no sleep/park step may implement this as a no-op.
	SignalAllWhenBlocking()
}

func waitReady(targetSequence int64, cursor *Sequence, dependentSequence sequenceReader) (WaitResult, bool) {
	available := dependentSequence.Get()
	if available >= targetSequence {
		return WaitResult{AvailableSequence: available, CursorAdvanced: cursor.Get() >= targetSequence}, true
	}
	return WaitResult{}, false
}

// BusySpinWaitStrategy spins on a tight load loop with no yield. Lowest
// latency, highest CPU usage; appropriate when a core can be dedicated
// to the consumer.
type BusySpinWaitStrategy struct{}

func NewBusySpinWaitStrategy() *BusySpinWaitStrategy { return &BusySpinWaitStrategy{} }

func (s *BusySpinWaitStrategy) WaitFor(target int64, cursor *Sequence, dep sequenceReader, alert *AlertGate) (WaitResult, error) {
	for {
		if r, ok := waitReady(target, cursor, dep); ok {
			return r, nil
		}
		if alert.IsAlerted() {
			return WaitResult{}, ErrAlerted
		}
	}
}

func (s *BusySpinWaitStrategy) SignalAllWhenBlocking() {}

// YieldingWaitStrategy spins a fixed number of times, then yields the
// goroutine to the scheduler via runtime.Gosched, trading some latency
// for much lower CPU usage than BusySpin. Modeled on the teacher's
// YieldingWaitStrategy in pkg/ringbuffer/strategy.go, generalized to the
// full cursor+dependent-sequence wait contract.
type YieldingWaitStrategy struct {
	spinTries int
}

// NewYieldingWaitStrategy returns a YieldingWaitStrategy that busy-spins
// spinTries times before yielding on each wait iteration.
func NewYieldingWaitStrategy(spinTries int) *YieldingWaitStrategy {
	if spinTries <= 0 {
		spinTries = 100
	}
	return &YieldingWaitStrategy{spinTries: spinTries}
}

func (s *YieldingWaitStrategy) WaitFor(target int64, cursor *Sequence, dep sequenceReader, alert *AlertGate) (WaitResult, error) {
	counter := s.spinTries
	for {
		if r, ok := waitReady(target, cursor, dep); ok {
			return r, nil
		}
		if alert.IsAlerted() {
			return WaitResult{}, ErrAlerted
		}
		if counter == 0 {
			runtime.Gosched()
		} else {
			counter--
		}
	}
}

func (s *YieldingWaitStrategy) SignalAllWhenBlocking() {}

// SleepingWaitStrategy spins, then yields, then parks for sleepFor
// between polls. The park duration is fixed: it does not grow over the
// course of a wait. Matches the teacher's SleepWaitStrategy in shape (a
// plain time.Sleep backoff), with a spin/yield ramp before the first
// sleep so short waits still resolve without a park.
type SleepingWaitStrategy struct {
	spinTries  int
	yieldTries int
	sleepFor   time.Duration
}

// NewSleepingWaitStrategy returns a SleepingWaitStrategy. sleepFor is the
// duration parked between polls once the spin/yield budget is spent;
// defaults to 1 microsecond, matching LMAX's own default.
func NewSleepingWaitStrategy(sleepFor time.Duration) *SleepingWaitStrategy {
	if sleepFor <= 0 {
		sleepFor = time.Microsecond
	}
	return &SleepingWaitStrategy{spinTries: 100, yieldTries: 100, sleepFor: sleepFor}
}

func (s *SleepingWaitStrategy) WaitFor(target int64, cursor *Sequence, dep sequenceReader, alert *AlertGate) (WaitResult, error) {
	spin, yield := s.spinTries, s.yieldTries
	for {
		if r, ok := waitReady(target, cursor, dep); ok {
			return r, nil
		}
		if alert.IsAlerted() {
			return WaitResult{}, ErrAlerted
		}
		switch {
		case spin > 0:
			spin--
		case yield > 0:
			yield--
			runtime.Gosched()
		default:
			time.Sleep(s.sleepFor)
		}
	}
}

func (s *SleepingWaitStrategy) SignalAllWhenBlocking() {}

// BlockingWaitStrategy parks the waiting goroutine on a sync.Cond until
// signalled by a publish, then busy-reads the dependent sequence.
// Lowest CPU usage of the family, highest wake latency.
type BlockingWaitStrategy struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func NewBlockingWaitStrategy() *BlockingWaitStrategy {
	b := &BlockingWaitStrategy{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (s *BlockingWaitStrategy) WaitFor(target int64, cursor *Sequence, dep sequenceReader, alert *AlertGate) (WaitResult, error) {
	if cursor.Get() < target {
		s.mu.Lock()
		for cursor.Get() < target {
			if alert.IsAlerted() {
				s.mu.Unlock()
				return WaitResult{}, ErrAlerted
			}
			s.cond.Wait()
		}
		s.mu.Unlock()
	}

	for {
		if r, ok := waitReady(target, cursor, dep); ok {
			return r, nil
		}
		if alert.IsAlerted() {
			return WaitResult{}, ErrAlerted
		}
		runtime.Gosched()
	}
}

func (s *BlockingWaitStrategy) SignalAllWhenBlocking() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// TimeoutBlockingWaitStrategy behaves like BlockingWaitStrategy but gives
// up and returns ErrTimedOut if the cursor has not advanced within
// timeout of the wait starting.
type TimeoutBlockingWaitStrategy struct {
	mu      sync.Mutex
	cond    *sync.Cond
	timeout time.Duration
}

func NewTimeoutBlockingWaitStrategy(timeout time.Duration) *TimeoutBlockingWaitStrategy {
	t := &TimeoutBlockingWaitStrategy{timeout: timeout}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (s *TimeoutBlockingWaitStrategy) WaitFor(target int64, cursor *Sequence, dep sequenceReader, alert *AlertGate) (WaitResult, error) {
	deadline := time.Now().Add(s.timeout)

	if cursor.Get() < target {
		done := make(chan struct{})
		go func() {
			select {
			case <-time.After(time.Until(deadline)):
				s.mu.Lock()
				s.cond.Broadcast()
				s.mu.Unlock()
			case <-done:
			}
		}()

		s.mu.Lock()
		for cursor.Get() < target {
			if alert.IsAlerted() {
				s.mu.Unlock()
				close(done)
				return WaitResult{}, ErrAlerted
			}
			if time.Now().After(deadline) {
				s.mu.Unlock()
				close(done)
				return WaitResult{}, ErrTimedOut
			}
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(done)
	}

	for {
		if r, ok := waitReady(target, cursor, dep); ok {
			return r, nil
		}
		if alert.IsAlerted() {
			return WaitResult{}, ErrAlerted
		}
		if time.Now().After(deadline) {
			return WaitResult{}, ErrTimedOut
		}
		runtime.Gosched()
	}
}

func (s *TimeoutBlockingWaitStrategy) SignalAllWhenBlocking() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
