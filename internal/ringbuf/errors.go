package ringbuf

import "errors"

// Configuration errors, returned from constructors. Never recoverable at
// the call site other than fixing the arguments.
var (
	// ErrInvalidBufferSize is returned when a buffer size is not a
	// positive power of two, or exceeds 2^30.
	ErrInvalidBufferSize = errors.New("ringbuf: buffer size must be a power of two in [1, 2^30]")
	// ErrInvalidSequenceCount is returned by Next(n)/TryNext(n) when n is
	// not in (0, bufferSize].
	ErrInvalidSequenceCount = errors.New("ringbuf: sequence count must be in (0, bufferSize]")
)

// ErrCapacityUnavailable is returned by TryNext/TryNext(n) when the ring
// has no free slots for the requested claim. It is not a fault: callers
// are expected to back off and retry, or drop the event.
var ErrCapacityUnavailable = errors.New("ringbuf: capacity unavailable")

// ErrAlerted is the control-flow sentinel a wait strategy or barrier
// returns when the alert flag was observed during a wait. It is the only
// sanctioned cross-frame cancellation signal in the core; processors use
// errors.Is(err, ErrAlerted) to distinguish cancellation from a real
// fault.
var ErrAlerted = errors.New("ringbuf: wait aborted by alert")

// ErrTimedOut is returned by TimeoutBlocking's WaitFor when the timeout
// elapses before the target sequence becomes available.
var ErrTimedOut = errors.New("ringbuf: wait timed out")

// ErrResetWhileActive is returned by RingBuffer.ResetTo when a
// registered gating sequence is still behind the producer cursor.
var ErrResetWhileActive = errors.New("ringbuf: cannot reset sequences while processors are running")
