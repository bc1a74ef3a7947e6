package room

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRoundTicker_Fires(t *testing.T) {
	var called atomic.Int32
	tk := NewRoundTicker()
	tk.Arm(20*time.Millisecond, func() { called.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestRoundTicker_StopPreventsCallback(t *testing.T) {
	var called atomic.Int32
	tk := NewRoundTicker()
	tk.Arm(50*time.Millisecond, func() { called.Add(1) })
	tk.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestRoundTicker_RearmSupersedes(t *testing.T) {
	var first, second atomic.Int32
	tk := NewRoundTicker()
	tk.Arm(30*time.Millisecond, func() { first.Add(1) })
	tk.Arm(30*time.Millisecond, func() { second.Add(1) })
	time.Sleep(70 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatalf("superseded callback fired %d times", first.Load())
	}
	if second.Load() != 1 {
		t.Fatalf("expected current callback called once, got %d", second.Load())
	}
}

func TestRoundTicker_StopIdempotent(t *testing.T) {
	tk := NewRoundTicker()
	tk.Arm(50*time.Millisecond, func() {})
	tk.Stop()
	tk.Stop()
	tk.Stop()
}
