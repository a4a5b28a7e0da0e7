package ringbuf

import (
	"sync"
	"sync/atomic"
)

// gatingSequences holds the set of consumer sequences a producer must
// stay behind. Reads happen on every claim (the hot path) and must never
// block; writes only happen at wiring time (AddGatingSequences /
// RemoveGatingSequence), which is rare enough to afford a lock. The set
// is therefore copy-on-write: the writer builds a new slice and installs
// it atomically, so a concurrent reader always sees a complete, never a
// partially-built, set.
type gatingSequences struct {
	writeMu sync.Mutex
	ptr     atomic.Pointer[[]*Sequence]
}

func newGatingSequences() *gatingSequences {
	g := &gatingSequences{}
	empty := []*Sequence{}
	g.ptr.Store(&empty)
	return g
}

// load returns the current gating set. Lock-free; never mutated by the
// caller.
func (g *gatingSequences) load() []*Sequence {
	return *g.ptr.Load()
}

func (g *gatingSequences) add(seqs ...*Sequence) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	cur := *g.ptr.Load()
	next := make([]*Sequence, len(cur)+len(seqs))
	copy(next, cur)
	copy(next[len(cur):], seqs)
	g.ptr.Store(&next)
}

func (g *gatingSequences) remove(seq *Sequence) bool {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	cur := *g.ptr.Load()
	for i, s := range cur {
		if s == seq {
			next := make([]*Sequence, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			g.ptr.Store(&next)
			return true
		}
	}
	return false
}
