package takeoff

import (
	"sync/atomic"
	"time"
)

// IDGenerator hands out item identifiers.
type IDGenerator interface {
	Next() int64
}

// Sequence is a monotonic IDGenerator. Identifiers start above both the
// current Unix millisecond clock and any identifier already in use, so ids
// stay distinct from those minted by earlier runs.
type Sequence struct {
	last atomic.Int64
}

// NewSequence creates a Sequence seeded from now and the highest existing id.
func NewSequence(now time.Time, existing ...int64) *Sequence {
	seed := now.UnixMilli()
	for _, id := range existing {
		if id > seed {
			seed = id
		}
	}
	s := &Sequence{}
	s.last.Store(seed)
	return s
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Observe raises the sequence floor so that later ids exceed id.
func (s *Sequence) Observe(id int64) {
	for {
		cur := s.last.Load()
		if id <= cur || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}
