// Copyright 2025 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package winpipe

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"
	"golang.org/x/sync/semaphore"

	"github.com/winpipe-go/winpipe/pipe"
	"github.com/winpipe-go/winpipe/reactor"
	"github.com/winpipe-go/winpipe/readiness"
	"github.com/winpipe-go/winpipe/ring"
)

// writableInner is the state shared between the user goroutine and the
// writable worker goroutine.
type writableInner struct {
	cell      readiness.Cell
	terminate terminateFlag

	// notEmpty is a 1-buffered "wake the worker" signal: Write sends
	// (non-blocking) whenever a Push transitions the ring from empty to
	// non-empty.
	notEmpty chan struct{}
	// termWake is closed exactly once, by Close, to wake a worker parked
	// on notEmpty. Unlike the readable side's pending pipe.Read, the
	// writable worker is never blocked inside the pipe syscall without
	// bytes already in flight, so closing termWake is sufficient - no
	// thread-cancellation syscall is needed on this side (SPEC_FULL.md §5).
	termWake chan struct{}

	done chan struct{} // closed by the worker on exit

	registration reactor.Registration

	failed atomic.Bool // latched terminal pipe-write error (REDESIGN FLAGS)

	closeOnce sync.Once
	closeErr  error

	// blockingSem backs WriteContext, present only when WithBlockingWrite
	// was supplied.
	blockingSem *semaphore.Weighted
}

// WritableAdapter exposes a blocking pipe.WriteHandle as a non-blocking,
// readiness-signalling sink for a readiness reactor.
type WritableAdapter struct {
	cfg       *config
	ring      *ring.Ring
	inner     *writableInner
	lifecycle atomic.Int32
}

// NewWritableAdapter takes ownership of p (it is moved into the worker
// goroutine; the caller must not use it again) and spawns the worker. The
// adapter immediately asserts Writable, since the ring starts empty.
func NewWritableAdapter(p pipe.WriteHandle, opts ...Option) *WritableAdapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	a := &WritableAdapter{
		cfg:  cfg,
		ring: ring.New(cfg.ringCapacity),
		inner: &writableInner{
			notEmpty: make(chan struct{}, 1),
			termWake: make(chan struct{}),
			done:     make(chan struct{}),
		},
	}
	a.lifecycle.Store(int32(lifecycleActive))
	if cfg.blockingCap > 0 {
		a.inner.blockingSem = semaphore.NewWeighted(int64(cfg.blockingCap))
	}

	a.inner.cell.Set(readiness.Writable)

	go a.runWorker(p)

	return a
}

func (a *WritableAdapter) runWorker(p pipe.WriteHandle) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("winpipe: panic in writable worker: %v\n%s", r, debug.Stack())
		}
		_ = p.Close()
		close(a.inner.done)
	}()

	scratch := mcache.Malloc(a.cfg.scratchSize)
	defer mcache.Free(scratch)

	for {
		if a.inner.terminate.isSet() {
			return
		}

		for a.ring.IsEmpty() {
			if a.inner.terminate.isSet() {
				return
			}
			select {
			case <-a.inner.notEmpty:
			case <-a.inner.termWake:
				return
			}
		}

		wasFull := a.ring.IsFull()
		n := a.ring.Pop(scratch)
		if wasFull {
			a.inner.cell.Set(readiness.Writable)
		}

		written := 0
		for written < n {
			m, err := p.Write(scratch[written:n])
			if err != nil {
				a.latchFailure()
				return
			}
			written += m
		}
	}
}

func (a *WritableAdapter) latchFailure() {
	a.inner.failed.Store(true)
	a.inner.cell.Set(readiness.None)
}

// Write copies up to len(src) bytes into the ring. It never blocks on the
// pipe and returns 0, nil when the ring is currently full. Once a pipe
// write has failed (see REDESIGN FLAGS in SPEC_FULL.md), it returns
// 0, ErrPipeClosed instead of silently accepting bytes nothing will drain.
func (a *WritableAdapter) Write(src []byte) (int, error) {
	if a.inner.failed.Load() {
		return 0, ErrPipeClosed
	}

	wasEmpty := a.ring.IsEmpty()
	n := a.ring.Push(src)

	if a.ring.IsFull() {
		a.inner.cell.Set(readiness.None)
		// Race-closing recheck: the worker may have popped bytes between
		// our Push and our Set(None) above.
		if !a.ring.IsFull() {
			a.inner.cell.Set(readiness.Writable)
		}
	}

	if wasEmpty && n > 0 {
		select {
		case a.inner.notEmpty <- struct{}{}:
		default:
		}
	}

	return n, nil
}

// WriteContext blocks (respecting ctx) until at least one byte of src has
// been accepted. It requires the adapter to have been constructed with
// WithBlockingWrite and returns an error otherwise. It is an optional
// helper for callers outside the reactor's own goroutine that would rather
// park than poll; it is not part of the non-blocking contract Write
// provides and must never be called from the reactor's own goroutine,
// since it can block.
func (a *WritableAdapter) WriteContext(ctx context.Context, src []byte) (int, error) {
	if a.inner.blockingSem == nil {
		return 0, errBlockingWriteDisabled
	}
	if err := a.inner.blockingSem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer a.inner.blockingSem.Release(1)
	for {
		n, err := a.Write(src)
		if n > 0 || err != nil || len(src) == 0 {
			return n, err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// Flush is a no-op: bytes handed to Write are already owned by the worker,
// which drains them to the pipe on its own schedule. winpipe does not offer
// a stricter "block until the pipe has them" flush, since the pipe's own
// write semantics already define that.
func (a *WritableAdapter) Flush() error { return nil }

// Register forwards to r.Register, correlating the adapter's readiness
// cell with token under interest.
func (a *WritableAdapter) Register(r reactor.Reactor, token reactor.Token, interest reactor.Interest) error {
	reg, err := r.Register(&a.inner.cell, token, interest)
	if err != nil {
		return err
	}
	a.inner.registration = reg
	return nil
}

// Reregister forwards to r.Reregister using the Registration captured by
// Register.
func (a *WritableAdapter) Reregister(r reactor.Reactor, token reactor.Token, interest reactor.Interest) error {
	return r.Reregister(a.inner.registration, token, interest)
}

// Deregister forwards to r.Deregister using the Registration captured by
// Register.
func (a *WritableAdapter) Deregister(r reactor.Reactor) error {
	return r.Deregister(a.inner.registration)
}

// Close terminates the worker and waits for it to exit. Unlike the readable
// side, no thread-cancellation syscall is needed: the writable worker only
// ever blocks on the ring's notEmpty signal or inside a pipe.Write that
// already has bytes in flight, and termWake wakes the former immediately.
func (a *WritableAdapter) Close() error {
	a.inner.closeOnce.Do(func() {
		a.lifecycle.Store(int32(lifecycleTerminating))
		a.inner.terminate.set()
		close(a.inner.termWake)

		select {
		case <-a.inner.done:
			a.inner.closeErr = nil
		case <-time.After(a.cfg.closeTimeout):
			a.inner.closeErr = ErrWorkerJoinTimeout
		}
		a.lifecycle.Store(int32(lifecycleJoined))
	})
	return a.inner.closeErr
}
