// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// ring_test.go — Unit and property tests for the SPSC ring buffer.
package concurrency

import (
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestRingBuffer_FIFO(t *testing.T) {
	for _, capacity := range []int{1, 3, 8, 100} {
		r := NewRingBuffer[int](capacity)
		for i := 0; i < capacity; i++ {
			if !r.TryPush(i) {
				t.Fatalf("cap %d: push %d failed", capacity, i)
			}
		}
		if r.TryPush(-1) {
			t.Fatalf("cap %d: push past capacity succeeded", capacity)
		}
		for i := 0; i < capacity; i++ {
			v, ok := r.TryPop()
			if !ok || v != i {
				t.Fatalf("cap %d: pop = (%d, %v), want (%d, true)", capacity, v, ok, i)
			}
		}
		if _, ok := r.TryPop(); ok {
			t.Fatalf("cap %d: pop on empty ring succeeded", capacity)
		}
	}
}

func TestRingBuffer_InvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero capacity")
		}
	}()
	NewRingBuffer[int](0)
}

func TestRingBuffer_PopClearsSlot(t *testing.T) {
	r := NewRingBuffer[*int](2)
	v := 7
	r.Push(&v)
	if p, ok := r.TryPop(); !ok || *p != 7 {
		t.Fatal("pop returned wrong pointer")
	}
	if r.data[0] != nil {
		t.Error("popped slot still references value")
	}
}

// TestRingPropertyBased performs randomized operations to check key invariants.
func TestRingPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		const capacity = 37
		r := NewRingBuffer[int](capacity)

		var model []int
		for i := 0; i < 5000; i++ {
			switch rnd.Intn(2) {
			case 0:
				val := rnd.Intn(100000)
				if r.TryPush(val) {
					model = append(model, val)
				} else if len(model) != capacity {
					t.Fatalf("push failed with %d items", len(model))
				}
			case 1:
				v, ok := r.TryPop()
				if ok {
					if v != model[0] {
						t.Fatalf("pop = %d, want %d", v, model[0])
					}
					model = model[1:]
				} else if len(model) != 0 {
					t.Fatalf("pop failed with %d items", len(model))
				}
			}
			if len(model) != r.Len() {
				t.Fatalf("Invariant failed: expected %d, got %d", len(model), r.Len())
			}
		}
	}
}

func TestRingBuffer_PushBlocksWhenFull(t *testing.T) {
	r := NewRingBuffer[int](2)
	r.Push(1)
	r.Push(2)

	pushed := make(chan struct{})
	go func() {
		r.Push(3)
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push on full ring returned before a pop")
	case <-time.After(20 * time.Millisecond):
	}
	if r.Len() != 2 {
		t.Fatalf("ring holds %d items, want 2", r.Len())
	}

	if v, _ := r.TryPop(); v != 1 {
		t.Fatalf("pop = %d, want 1", v)
	}
	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not resume after pop")
	}
	for _, want := range []int{2, 3} {
		if v, ok := r.TryPop(); !ok || v != want {
			t.Fatalf("pop = (%d, %v), want %d", v, ok, want)
		}
	}
}

// TestRingBuffer_ConcurrentSPSC streams values across two goroutines and
// checks every value arrives exactly once and in order.
func TestRingBuffer_ConcurrentSPSC(t *testing.T) {
	const n = 200000
	r := NewRingBuffer[int](7)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			r.Push(i)
		}
	}()

	var b Backoff
	for want := 0; want < n; {
		v, ok := r.TryPop()
		if !ok {
			b.Wait()
			continue
		}
		b.Reset()
		if v != want {
			t.Fatalf("got %d, want %d", v, want)
		}
		want++
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Fatalf("ring not drained: %d", r.Len())
	}
}

func BenchmarkRingBuffer_SPSC(b *testing.B) {
	r := NewRingBuffer[int](1024)
	done := make(chan struct{})
	go func() {
		var bo Backoff
		for i := 0; i < b.N; {
			if _, ok := r.TryPop(); ok {
				i++
				bo.Reset()
				continue
			}
			bo.Wait()
		}
		close(done)
	}()
	for i := 0; i < b.N; i++ {
		r.Push(i)
	}
	<-done
}

func TestRingBuffer_PushUntilGivesUp(t *testing.T) {
	r := NewRingBuffer[int](1)
	r.Push(1)
	calls := 0
	ok := r.PushUntil(2, func() bool {
		calls++
		return calls == 3
	})
	if ok {
		t.Fatal("PushUntil stored into a full ring")
	}
	if calls != 3 {
		t.Fatalf("stop polled %d times, want 3", calls)
	}
	r.TryPop()
	if !r.PushUntil(2, func() bool { return true }) {
		t.Fatal("PushUntil with free space must store without consulting stop")
	}
}
