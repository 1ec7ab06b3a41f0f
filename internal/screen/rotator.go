package screen

import (
	"sync"
	"time"
)

// Rotator cycles through pages on a fixed period. A manual Next restarts the
// period so a button press always gets a full dwell.
type Rotator struct {
	mu     sync.Mutex
	pages  int
	period time.Duration
	idx    int
	last   time.Time
}

func NewRotator(pages int, period time.Duration, now time.Time) *Rotator {
	if pages <= 0 {
		pages = 1
	}
	return &Rotator{pages: pages, period: period, last: now}
}

// Current returns the page to show at now, advancing by one page if the
// period has elapsed since the last switch.
func (r *Rotator) Current(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.period > 0 && now.Sub(r.last) >= r.period {
		r.idx = (r.idx + 1) % r.pages
		r.last = now
	}
	return r.idx
}

func (r *Rotator) Next(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = (r.idx + 1) % r.pages
	r.last = now
	return r.idx
}
