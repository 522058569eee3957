//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package notify_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/fake"
	"github.com/momentics/hioload-pump/notify"
	"github.com/momentics/hioload-pump/reactor"
)

func newPair(t *testing.T, opts ...notify.Option) (*notify.Notifier, *notify.Listener) {
	t.Helper()
	n, l, err := notify.NewPair(opts...)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	t.Cleanup(func() {
		n.Close()
		l.Close()
	})
	return n, l
}

func TestIncrementReset(t *testing.T) {
	n, l := newPair(t)
	for i := 0; i < 5; i++ {
		if err := n.Increment(); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if got := l.Pending(); got != 5 {
		t.Fatalf("Pending = %d, want 5", got)
	}
	got, err := l.Reset()
	if err != nil || got != 5 {
		t.Fatalf("Reset = (%d, %v), want (5, nil)", got, err)
	}
	if got, _ := l.Reset(); got != 0 {
		t.Fatalf("second Reset = %d, want 0", got)
	}
	if l.Pending() != 0 {
		t.Fatalf("Pending after reset = %d", l.Pending())
	}
}

func TestIncrementSaturates(t *testing.T) {
	n, l := newPair(t, notify.WithLimit(2))
	if err := n.Increment(); err != nil {
		t.Fatal(err)
	}
	if err := n.Increment(); err != nil {
		t.Fatal(err)
	}
	err := n.Increment()
	if !errors.Is(err, api.ErrNotificationSaturated) {
		t.Fatalf("third Increment = %v, want ErrNotificationSaturated", err)
	}
	if l.Pending() != 2 {
		t.Fatalf("failed increment was recorded: pending %d", l.Pending())
	}
	if _, err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := n.Increment(); err != nil {
		t.Fatalf("Increment after Reset: %v", err)
	}
}

func TestZeroLimitRejected(t *testing.T) {
	_, _, err := notify.NewPair(notify.WithLimit(0))
	if !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestClosedSides(t *testing.T) {
	n, l := newPair(t)
	n.Close()
	if err := n.Increment(); !errors.Is(err, api.ErrClosed) {
		t.Fatalf("Increment after Close = %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	// listener keeps working until it is closed too
	if _, err := l.Reset(); err != nil {
		t.Fatalf("Reset with notifier closed: %v", err)
	}
	l.Close()
	if _, err := l.Reset(); !errors.Is(err, api.ErrClosed) {
		t.Fatalf("Reset after Close = %v", err)
	}
}

func TestRegistrationDelegates(t *testing.T) {
	_, l := newPair(t)
	sel := fake.NewReactor()

	if err := l.Register(sel, 9, api.Readable, api.Edge); err != nil {
		t.Fatal(err)
	}
	if err := l.Reregister(sel, 10, api.Readable, api.Level); err != nil {
		t.Fatal(err)
	}
	if err := l.Deregister(sel); err != nil {
		t.Fatal(err)
	}
	calls := sel.Calls()
	want := []fake.Call{
		{Op: "register", Registration: fake.Registration{Fd: l.Fd(), Token: 9, Interest: api.Readable, Opts: api.Edge}},
		{Op: "reregister", Registration: fake.Registration{Fd: l.Fd(), Token: 10, Interest: api.Readable, Opts: api.Level}},
		{Op: "deregister", Registration: fake.Registration{Fd: l.Fd()}},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}

	boom := errors.New("selector rejected")
	sel.RegisterErr = boom
	if err := l.Register(sel, 1, api.Readable, api.Level); err != boom {
		t.Fatalf("Register error = %v, want verbatim selector error", err)
	}
}

func TestReactorWakesOnIncrement(t *testing.T) {
	n, l := newPair(t)
	p, err := reactor.NewPoller()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if err := l.Register(p, 3, api.Readable, api.Level); err != nil {
		t.Fatal(err)
	}

	events := make([]api.Event, 4)
	if got, _ := p.Wait(events, 0); got != 0 {
		t.Fatalf("idle listener reported %d events", got)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		n.Increment()
	}()
	got, err := p.Wait(events, 2*time.Second)
	if err != nil || got != 1 || events[0].Token != 3 {
		t.Fatalf("Wait = (%d, %v, %+v)", got, err, events[0])
	}
	l.Reset()
	if got, _ := p.Wait(events, 0); got != 0 {
		t.Fatalf("reset listener still readable: %d events", got)
	}
}

func TestConcurrentIncrementReset(t *testing.T) {
	n, l := newPair(t)
	const total = 10000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			if err := n.Increment(); err != nil {
				t.Errorf("Increment: %v", err)
				return
			}
		}
	}()
	var seen uint64
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	for {
		got, err := l.Reset()
		if err != nil {
			t.Fatal(err)
		}
		seen += got
		select {
		case <-done:
			got, _ = l.Reset()
			seen += got
			if seen != total {
				t.Fatalf("consumed %d notifications, want %d", seen, total)
			}
			if l.Pending() != 0 {
				t.Fatalf("pending = %d after full drain", l.Pending())
			}
			return
		default:
		}
	}
}
