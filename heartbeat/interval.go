// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package heartbeat

import (
	"sync"
	"time"
)

// Interval is a Heartbeat that calls send once per period until Close.
type Interval struct {
	period time.Duration
	send   func()
	now    func() time.Time

	mu     sync.Mutex
	last   time.Time
	closed bool
}

// NewInterval returns a heartbeat sending every period. The first send is one
// period after creation.
func NewInterval(period time.Duration, send func()) *Interval {
	return newInterval(period, send, time.Now)
}

func newInterval(period time.Duration, send func(), now func() time.Time) *Interval {
	return &Interval{period: period, send: send, now: now, last: now()}
}

// PollTimeout sends when the period has elapsed and returns the time left until the next send.
func (h *Interval) PollTimeout() (time.Duration, bool) {
	h.mu.Lock()
	if h.closed || h.period <= 0 {
		h.mu.Unlock()
		return 0, false
	}
	now := h.now()
	due := h.last.Add(h.period)
	if now.Before(due) {
		h.mu.Unlock()
		return due.Sub(now), true
	}
	h.last = now
	h.mu.Unlock()

	h.send()
	return h.period, true
}

// Close ends the heartbeat at its next poll.
func (h *Interval) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}
