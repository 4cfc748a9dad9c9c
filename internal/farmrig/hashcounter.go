package farmrig

import (
	"sync/atomic"
	"time"
)

// hashCounter is a running hashes/second estimate, in the style of the
// mean hashrate counter the teacher's resources/hashrate/hashrate package
// keeps per worker: total work divided by elapsed wall time, both tracked
// with atomics so worker goroutines never take a lock to report progress.
type hashCounter struct {
	total     atomic.Uint64
	startedAt atomic.Int64 // unix nanos, 0 until the first Add
}

func (h *hashCounter) Add(n uint64) {
	h.startedAt.CompareAndSwap(0, time.Now().UnixNano())
	h.total.Add(n)
}

func (h *hashCounter) Reset() {
	h.total.Store(0)
	h.startedAt.Store(0)
}

// Rate returns the mean hashes/second since the first Add after the last
// Reset, or 0 if no work has been reported yet.
func (h *hashCounter) Rate() uint64 {
	started := h.startedAt.Load()
	if started == 0 {
		return 0
	}
	elapsed := time.Since(time.Unix(0, started)).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(h.total.Load()) / elapsed)
}
