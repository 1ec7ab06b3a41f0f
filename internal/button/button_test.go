package button

import (
	"errors"
	"testing"
	"time"
)

func TestPress_Debounce(t *testing.T) {
	b := newButton(50 * time.Millisecond)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if !b.press(t0) {
		t.Fatalf("first press should be accepted")
	}
	<-b.Presses()

	if b.press(t0.Add(20 * time.Millisecond)) {
		t.Fatalf("bounce within window should be ignored")
	}
	if !b.press(t0.Add(60 * time.Millisecond)) {
		t.Fatalf("press after window should be accepted")
	}
	<-b.Presses()
}

func TestPress_DropsWhenConsumerBusy(t *testing.T) {
	b := newButton(0)
	t0 := time.Now()
	if !b.press(t0) {
		t.Fatalf("first press should be accepted")
	}
	if b.press(t0.Add(time.Second)) {
		t.Fatalf("second press should be dropped while the first is pending")
	}
	select {
	case <-b.Presses():
	default:
		t.Fatalf("expected a pending press")
	}
}

func TestClose(t *testing.T) {
	b := newButton(0)
	closed := 0
	b.closer = func() error {
		closed++
		return errors.New("line busy")
	}

	if err := b.Close(); err == nil || err.Error() != "line busy" {
		t.Fatalf("Close err=%v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close err=%v", err)
	}
	if closed != 1 {
		t.Fatalf("closer called %d times", closed)
	}
	if _, ok := <-b.Presses(); ok {
		t.Fatalf("presses channel should be closed")
	}
	if b.press(time.Now()) {
		t.Fatalf("press after Close should be ignored")
	}
}
