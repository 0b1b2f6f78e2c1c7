package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTrailingEdgeOnlyLastRuns(t *testing.T) {
	d := New(30 * time.Millisecond)
	var ran atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		i := i
		d.Call(func() {
			ran.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := ran.Load(); got != 1 {
		t.Errorf("ran %d times, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("last call = %d, want 5", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	var ran atomic.Int32
	d.Call(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Errorf("stopped debouncer still ran %d times", got)
	}
}

func TestCallAfterStop(t *testing.T) {
	d := New(10 * time.Millisecond)
	d.Stop()

	done := make(chan struct{})
	d.Call(func() { close(done) })
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Call after Stop should still schedule")
	}
}
