package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ReconcileCounters tracks payment reconciliation outcomes. Failed counts
// runs that errored out; NoOrder counts the verified-but-unmatched terminal
// outcome separately so Failed stays an error signal.
type ReconcileCounters struct {
	Attempts  Counter
	Succeeded Counter
	Declined  Counter
	NoOrder   Counter
	Failed    Counter
}

// HubCounters tracks realtime fan-out behavior.
type HubCounters struct {
	Published Counter
	Delivered Counter
	Dropped   Counter
}
