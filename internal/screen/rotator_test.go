package screen

import (
	"testing"
	"time"
)

func TestRotator_AdvancesAfterPeriod(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRotator(3, 5*time.Second, t0)

	steps := []struct {
		at   time.Duration
		want int
	}{
		{0, 0},
		{4 * time.Second, 0},
		{5 * time.Second, 1},
		{9 * time.Second, 1},
		{10 * time.Second, 2},
		{15 * time.Second, 0},
		// A long stall advances only one page.
		{60 * time.Second, 1},
	}
	for _, st := range steps {
		if got := r.Current(t0.Add(st.at)); got != st.want {
			t.Fatalf("at %s page=%d want %d", st.at, got, st.want)
		}
	}
}

func TestRotator_NextRestartsPeriod(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRotator(3, 5*time.Second, t0)

	if got := r.Next(t0.Add(4 * time.Second)); got != 1 {
		t.Fatalf("Next=%d want 1", got)
	}
	if got := r.Current(t0.Add(6 * time.Second)); got != 1 {
		t.Fatalf("page=%d want 1 (period restarted)", got)
	}
	if got := r.Current(t0.Add(9 * time.Second)); got != 2 {
		t.Fatalf("page=%d want 2", got)
	}
}
