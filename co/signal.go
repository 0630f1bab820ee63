// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Waiter observes one broadcast of a Signal.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces events, like a newly sealed block, to any number of waiters.
// Unlike sync.Cond it is channel based, so waiting composes with select.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
	n  uint64
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast wakes every waiter created before the call.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	close(s.ch)
	s.ch = make(chan struct{})
	s.n++
}

// Count returns how many broadcasts happened.
func (s *Signal) Count() uint64 {
	s.l.Lock()
	defer s.l.Unlock()
	return s.n
}

// NewWaiter returns a waiter for the next broadcast. After that broadcast fires, the
// waiter rearms itself on each call to C.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	s.init()
	ref := s.ch
	s.l.Unlock()

	return waiterFunc(func() <-chan struct{} {
		ch := ref
		select {
		case <-ch:
			s.l.Lock()
			ref = s.ch
			s.l.Unlock()
		default:
		}
		return ch
	})
}

// Wait blocks until the next broadcast or ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.NewWaiter().C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type waiterFunc func() <-chan struct{}

func (w waiterFunc) C() <-chan struct{} {
	return w()
}
