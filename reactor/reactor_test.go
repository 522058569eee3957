//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package reactor

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pump/api"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p[0], p[1]
}

func newPoller(t *testing.T) *Poller {
	t.Helper()
	p, err := NewPoller()
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestTimeoutMillis(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{-1, -1},
		{0, 0},
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{time.Second, 1000},
	}
	for _, c := range cases {
		if got := timeoutMillis(c.in); got != c.want {
			t.Errorf("timeoutMillis(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPoller_ReadableEvent(t *testing.T) {
	p := newPoller(t)
	r, w := newPipe(t)
	const token = api.Token(^uintptr(0) >> 3)

	if err := p.Register(uintptr(r), token, api.Readable, api.Level); err != nil {
		t.Fatalf("Register: %v", err)
	}

	events := make([]api.Event, 8)
	n, err := p.Wait(events, 0)
	if err != nil || n != 0 {
		t.Fatalf("Wait on idle pipe = (%d, %v), want (0, nil)", n, err)
	}

	if _, err := unix.Write(w, []byte{1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err = p.Wait(events, time.Second)
	if err != nil || n != 1 {
		t.Fatalf("Wait = (%d, %v), want (1, nil)", n, err)
	}
	if events[0].Token != token {
		t.Errorf("token = %#x, want %#x", events[0].Token, token)
	}
	if !events[0].Readiness.IsReadable() {
		t.Errorf("readiness = %v, want readable", events[0].Readiness)
	}

	// level-triggered: still ready until drained
	if n, _ = p.Wait(events, 0); n != 1 {
		t.Fatalf("level-triggered re-poll returned %d events", n)
	}
	var buf [1]byte
	unix.Read(r, buf[:])
	if n, _ = p.Wait(events, 0); n != 0 {
		t.Fatalf("drained pipe still reported %d events", n)
	}
}

func TestPoller_ReregisterAndDeregister(t *testing.T) {
	p := newPoller(t)
	r, w := newPipe(t)

	if err := p.Register(uintptr(r), 1, api.Readable, api.Level); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := p.Register(uintptr(r), 1, api.Readable, api.Level); err == nil {
		t.Fatal("duplicate Register succeeded")
	}
	if err := p.Reregister(uintptr(r), 2, api.Readable, api.Level); err != nil {
		t.Fatalf("Reregister: %v", err)
	}
	unix.Write(w, []byte{1})

	events := make([]api.Event, 4)
	n, err := p.Wait(events, time.Second)
	if err != nil || n != 1 || events[0].Token != 2 {
		t.Fatalf("Wait = (%d, %v, %+v), want token 2", n, err, events[0])
	}

	if err := p.Deregister(uintptr(r)); err != nil {
		t.Fatalf("Deregister: %v", err)
	}
	if n, _ := p.Wait(events, 10*time.Millisecond); n != 0 {
		t.Fatalf("deregistered fd reported %d events", n)
	}
	if err := p.Deregister(uintptr(r)); err == nil {
		t.Fatal("second Deregister succeeded")
	}
}

func TestPoller_WaitTimeout(t *testing.T) {
	p := newPoller(t)
	start := time.Now()
	n, err := p.Wait(make([]api.Event, 4), 20*time.Millisecond)
	if err != nil || n != 0 {
		t.Fatalf("Wait = (%d, %v)", n, err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatal("Wait returned before timeout")
	}
}

func TestPoller_WaitRejectsEmptySlice(t *testing.T) {
	p := newPoller(t)
	r, w := newPipe(t)
	if err := p.Register(uintptr(r), 5, api.Readable, api.Level); err != nil {
		t.Fatalf("Register: %v", err)
	}
	unix.Write(w, []byte{1})
	// an event is pending, yet nothing may be reported without room for it
	for _, events := range [][]api.Event{nil, {}} {
		n, err := p.Wait(events, time.Second)
		if !errors.Is(err, api.ErrInvalidArgument) || n != 0 {
			t.Fatalf("Wait(len %d) = (%d, %v), want (0, ErrInvalidArgument)", len(events), n, err)
		}
	}
	events := make([]api.Event, 1)
	if n, err := p.Wait(events, time.Second); err != nil || n != 1 || events[0].Token != 5 {
		t.Fatalf("Wait after rejection = (%d, %v, %+v)", n, err, events[0])
	}
}
