// File: loop/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-pump/affinity"
	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/control"
	"github.com/momentics/hioload-pump/notify"
	"github.com/momentics/hioload-pump/pump"
	"github.com/momentics/hioload-pump/reactor"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("loop: already running")
	// ErrLoopClosed is returned when attaching to a closed loop.
	ErrLoopClosed = errors.New("loop: closed")
)

// wakeToken is reserved for the loop's own wake-up pair.
const wakeToken api.Token = 0

// Stats is a snapshot of loop counters.
type Stats struct {
	Wakeups      uint64 // readiness events for attached streams
	StaleWakeups uint64 // events after which the stream had nothing
	Delivered    uint64 // values handed to handlers
	Sources      int    // attached streams
}

// Loop drives pump streams from readiness events on one goroutine.
type Loop struct {
	r     api.Reactor
	ownsR bool
	cfg   Config

	batch   atomic.Int64
	timeout atomic.Int64

	wakeTx *notify.Notifier
	wakeRx *notify.Listener

	mu        sync.Mutex
	sources   map[api.Token]source
	scheduled []api.Token
	detaching []api.Token
	nextToken api.Token
	closed    bool

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	wakeups   atomic.Uint64
	stale     atomic.Uint64
	delivered atomic.Uint64
}

// New creates a loop over r. A nil r makes the loop create and own the
// platform reactor.
func New(r api.Reactor, cfg Config) (*Loop, error) {
	cfg.normalize()
	owns := false
	if r == nil {
		var err error
		if r, err = reactor.New(); err != nil {
			return nil, fmt.Errorf("loop: reactor: %w", err)
		}
		owns = true
	}
	cleanup := func() {
		if owns {
			r.Close()
		}
	}

	tx, rx, err := notify.NewPair()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("loop: wake pair: %w", err)
	}
	if err := rx.Register(r, wakeToken, api.Readable, api.Level); err != nil {
		tx.Close()
		rx.Close()
		cleanup()
		return nil, fmt.Errorf("loop: register wake pair: %w", err)
	}

	l := &Loop{
		r:         r,
		ownsR:     owns,
		cfg:       cfg,
		wakeTx:    tx,
		wakeRx:    rx,
		sources:   make(map[api.Token]source),
		nextToken: wakeToken + 1,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	l.batch.Store(int64(cfg.BatchSize))
	l.timeout.Store(int64(cfg.PollTimeout))

	if cfg.Debug != nil {
		control.RegisterPlatformProbes(cfg.Debug)
		cfg.Debug.RegisterProbe("loop.stats", func() any { return l.Stats() })
	}
	return l, nil
}

// Attach registers s with the loop's reactor and delivers every value it
// yields to fn on the loop goroutine. onDone, if set, runs once the stream
// ends or is detached. One drive is scheduled right away, so values sent
// before registration are not stranded.
func Attach[T any](l *Loop, s *pump.Stream[T], fn func(T), onDone func()) (api.Token, error) {
	if s == nil || fn == nil {
		return 0, fmt.Errorf("loop: attach: %w", api.ErrInvalidArgument)
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, ErrLoopClosed
	}
	tok := l.nextToken
	l.nextToken++
	l.mu.Unlock()

	src := &streamSource[T]{token: tok, stream: s, fn: fn, onDone: onDone}
	if err := src.Register(l.r, tok, api.Readable, api.Level); err != nil {
		return 0, api.NewError(api.ErrCodeRegistration, "loop: attach").
			Wrap(err).
			WithContext("token", tok)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		src.Deregister(l.r)
		return 0, ErrLoopClosed
	}
	l.sources[tok] = src
	l.scheduled = append(l.scheduled, tok)
	l.mu.Unlock()

	if l.cfg.Debug != nil {
		l.cfg.Debug.RegisterProbe(probeName(tok), func() any { return src.stats() })
	}
	l.wake()
	return tok, nil
}

// Detach asks the loop to drop the stream behind tok. The stream is
// deregistered and closed on the loop goroutine.
func (l *Loop) Detach(tok api.Token) error {
	l.mu.Lock()
	if _, ok := l.sources[tok]; !ok {
		l.mu.Unlock()
		return api.ErrNotFound
	}
	l.detaching = append(l.detaching, tok)
	l.mu.Unlock()
	l.wake()
	return nil
}

// Run drives attached streams until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer close(l.doneCh)

	if l.cfg.Pin {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := affinity.SetAffinity(l.cfg.CPU); err != nil {
			log.Printf("[loop] pin to cpu %d: %v", l.cfg.CPU, err)
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			l.wake()
		case <-l.doneCh:
		}
	}()

	events := make([]api.Event, l.cfg.MaxEvents)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		default:
		}

		ran, more := l.runScheduled()
		timeout := time.Duration(l.timeout.Load())
		if more {
			timeout = 0
		}
		n, err := l.r.Wait(events, timeout)
		if err != nil {
			return fmt.Errorf("loop: wait: %w", err)
		}
		for _, ev := range events[:n] {
			if ev.Token == wakeToken {
				if _, err := l.wakeRx.Reset(); err != nil {
					log.Printf("[loop] reset wake pair: %v", err)
				}
				continue
			}
			l.wakeups.Add(1)
			l.dispatch(ev.Token, true)
		}
		if ran || n > 0 {
			l.publish()
		}
	}
}

// runScheduled handles pending detaches and initial or continued drives.
// It reports whether anything ran and whether more work is queued.
func (l *Loop) runScheduled() (ran, more bool) {
	l.mu.Lock()
	detaching := l.detaching
	scheduled := l.scheduled
	l.detaching = nil
	l.scheduled = nil
	l.mu.Unlock()

	for _, tok := range detaching {
		l.remove(tok)
	}
	for _, tok := range scheduled {
		l.dispatch(tok, false)
	}

	l.mu.Lock()
	more = len(l.scheduled) > 0
	l.mu.Unlock()
	return len(detaching)+len(scheduled) > 0, more
}

func (l *Loop) dispatch(tok api.Token, fromEvent bool) {
	l.mu.Lock()
	src, ok := l.sources[tok]
	l.mu.Unlock()
	if !ok {
		return
	}

	budget := int(l.batch.Load())
	n, done, err := src.drive(budget)
	l.delivered.Add(uint64(n))
	if fromEvent && n == 0 && !done && err == nil {
		l.stale.Add(1)
	}
	switch {
	case err != nil:
		log.Printf("[loop] source %d: %v", tok, err)
		l.remove(tok)
	case done:
		l.remove(tok)
	case n == budget:
		// more may be waiting; come back after other sources had a turn
		l.mu.Lock()
		l.scheduled = append(l.scheduled, tok)
		l.mu.Unlock()
	}
}

func (l *Loop) remove(tok api.Token) {
	l.mu.Lock()
	src, ok := l.sources[tok]
	delete(l.sources, tok)
	l.mu.Unlock()
	if !ok {
		return
	}
	l.release(tok, src)
}

func (l *Loop) release(tok api.Token, src source) {
	if err := src.Deregister(l.r); err != nil && !errors.Is(err, api.ErrClosed) {
		log.Printf("[loop] deregister source %d: %v", tok, err)
	}
	if l.cfg.Debug != nil {
		l.cfg.Debug.UnregisterProbe(probeName(tok))
	}
	src.finish()
}

func (l *Loop) wake() {
	err := l.wakeTx.Increment()
	if err != nil && !errors.Is(err, api.ErrNotificationSaturated) && !errors.Is(err, api.ErrClosed) {
		log.Printf("[loop] wake: %v", err)
	}
}

func (l *Loop) publish() {
	if l.cfg.Metrics == nil {
		return
	}
	st := l.Stats()
	l.cfg.Metrics.Set("loop.wakeups", st.Wakeups)
	l.cfg.Metrics.Set("loop.stale_wakeups", st.StaleWakeups)
	l.cfg.Metrics.Set("loop.delivered", st.Delivered)
	l.cfg.Metrics.Set("loop.sources", uint64(st.Sources))
}

// Stats returns a snapshot of loop counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	sources := len(l.sources)
	l.mu.Unlock()
	return Stats{
		Wakeups:      l.wakeups.Load(),
		StaleWakeups: l.stale.Load(),
		Delivered:    l.delivered.Load(),
		Sources:      sources,
	}
}

// Follow applies BatchSize and PollTimeout changes from cs on every reload.
// MaxEvents and pinning only take effect at construction.
func (l *Loop) Follow(cs *control.ConfigStore) {
	cs.OnReload(func() {
		cfg := ConfigFromStore(cs)
		cfg.normalize()
		l.batch.Store(int64(cfg.BatchSize))
		l.timeout.Store(int64(cfg.PollTimeout))
		l.wake()
	})
}

// Stop makes Run return and waits for it. It must not be called from a
// handler running on the loop goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	if !l.running.Load() {
		return
	}
	l.wake()
	<-l.doneCh
}

// Close stops the loop, detaches and closes every stream, and releases
// the wake pair and an owned reactor.
func (l *Loop) Close() error {
	l.Stop()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	sources := l.sources
	l.sources = make(map[api.Token]source)
	l.mu.Unlock()

	for tok, src := range sources {
		l.release(tok, src)
	}
	if err := l.wakeRx.Deregister(l.r); err != nil {
		log.Printf("[loop] deregister wake pair: %v", err)
	}
	l.wakeTx.Close()
	l.wakeRx.Close()
	if l.ownsR {
		return l.r.Close()
	}
	return nil
}
