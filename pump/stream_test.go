//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package pump

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-pump/api"
)

func TestStream_CollectsInOrder(t *testing.T) {
	tx, rx := newPump[int](t, 3)
	for _, v := range []int{1, 2, 3} {
		if err := tx.Send(v); err != nil {
			t.Fatal(err)
		}
	}
	s, err := rx.Stream()
	if err != nil {
		t.Fatal(err)
	}
	var got []int
	for len(got) < 3 {
		res, err := s.Poll()
		if err != nil {
			t.Fatal(err)
		}
		if res.State != api.Ready {
			t.Fatalf("Poll state = %v with %d values left", res.State, 3-len(got))
		}
		got = append(got, res.Value)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestStream_StateMachine(t *testing.T) {
	tx, rx := newPump[string](t, 2)
	s, _ := rx.Stream()

	if s.State() != Idle {
		t.Fatalf("initial state = %v", s.State())
	}
	res, err := s.Poll()
	if err != nil || res.State != api.NotReady || s.State() != AwaitingReadiness {
		t.Fatalf("empty poll = (%v, %v), state %v", res.State, err, s.State())
	}

	tx.Send("a")
	res, _ = s.Poll()
	if !res.IsReady() || res.Value != "a" || s.State() != ValueReady {
		t.Fatalf("ready poll = %+v, state %v", res, s.State())
	}
	res, _ = s.Poll()
	if res.State != api.NotReady || s.State() != AwaitingReadiness {
		t.Fatalf("after delivery = %v, state %v", res.State, s.State())
	}

	tx.Send("b")
	tx.Close()
	if res, _ = s.Poll(); res.Value != "b" {
		t.Fatalf("poll = %+v, want b", res)
	}
	for i := 0; i < 2; i++ {
		res, err = s.Poll()
		if err != nil || res.State != api.Done || s.State() != Closed {
			t.Fatalf("poll after close = (%v, %v), state %v", res.State, err, s.State())
		}
	}
}

func TestStream_CrossGoroutine(t *testing.T) {
	// capacity 1; producer sends 1; consumer redrives the stream until ready
	tx, rx := newPump[int](t, 1)
	s, _ := rx.Stream()
	go func() {
		time.Sleep(time.Millisecond)
		if err := tx.Send(1); err != nil {
			t.Error(err)
		}
	}()
	deadline := time.Now().Add(5 * time.Second)
	for {
		res, err := s.Poll()
		if err != nil {
			t.Fatal(err)
		}
		if res.State == api.Ready {
			if res.Value != 1 {
				t.Fatalf("value = %d, want 1", res.Value)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stream never became ready")
		}
	}
	if res, _ := s.Poll(); res.State == api.Ready {
		t.Fatal("single value delivered twice")
	}
}

func TestStream_CloseEndsSequence(t *testing.T) {
	_, rx := newPump[int](t, 1)
	s, _ := rx.Stream()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	res, err := s.Poll()
	if err != nil || res.State != api.Done {
		t.Fatalf("poll on closed stream = (%v, %v)", res.State, err)
	}
	if !errors.Is(s.Deregister(nil), api.ErrClosed) {
		t.Fatal("Deregister on closed stream must fail with ErrClosed")
	}
}
