// Package button turns a momentary push button on a GPIO line into a stream
// of page-advance presses.
package button

import (
	"sync"
	"time"
)

// Button delivers one value per debounced press.
type Button struct {
	presses  chan struct{}
	debounce time.Duration

	mu     sync.Mutex
	last   time.Time
	closed bool
	closer func() error
}

func newButton(debounce time.Duration) *Button {
	return &Button{
		presses:  make(chan struct{}, 1),
		debounce: debounce,
	}
}

// Presses is closed by Close.
func (b *Button) Presses() <-chan struct{} { return b.presses }

// press records an edge at ts. Edges closer than the debounce window to the
// previous accepted press are ignored, and a press is dropped if the consumer
// has not taken the previous one yet.
func (b *Button) press(ts time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	if !b.last.IsZero() && ts.Sub(b.last) < b.debounce {
		return false
	}
	b.last = ts
	select {
	case b.presses <- struct{}{}:
		return true
	default:
		return false
	}
}

func (b *Button) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	closer := b.closer
	b.closer = nil
	b.mu.Unlock()

	var err error
	if closer != nil {
		err = closer()
	}
	close(b.presses)
	return err
}
