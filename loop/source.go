// File: loop/source.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loop

import (
	"fmt"
	"log"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/pump"
)

// source is one stream attached to a loop, with its element type erased.
type source interface {
	api.Evented
	// drive delivers up to budget values. done reports end of sequence.
	drive(budget int) (delivered int, done bool, err error)
	stats() pump.Stats
	finish()
}

type streamSource[T any] struct {
	token  api.Token
	stream *pump.Stream[T]
	fn     func(T)
	onDone func()
}

func (s *streamSource[T]) Register(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return s.stream.Register(sel, token, interest, opts)
}

func (s *streamSource[T]) Reregister(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return s.stream.Reregister(sel, token, interest, opts)
}

func (s *streamSource[T]) Deregister(sel api.Selector) error {
	return s.stream.Deregister(sel)
}

func (s *streamSource[T]) drive(budget int) (int, bool, error) {
	n := 0
	for n < budget {
		res, err := s.stream.Poll()
		if err != nil {
			return n, false, err
		}
		switch res.State {
		case api.NotReady:
			return n, false, nil
		case api.Done:
			return n, true, nil
		}
		s.deliver(res.Value)
		n++
	}
	return n, false, nil
}

func (s *streamSource[T]) deliver(v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[loop] handler panic on source %d: %v", s.token, r)
		}
	}()
	s.fn(v)
}

func (s *streamSource[T]) stats() pump.Stats { return s.stream.Stats() }

func (s *streamSource[T]) finish() {
	if err := s.stream.Close(); err != nil {
		log.Printf("[loop] close source %d: %v", s.token, err)
	}
	if s.onDone != nil {
		s.onDone()
	}
}

func probeName(token api.Token) string {
	return fmt.Sprintf("loop.source.%d", token)
}
