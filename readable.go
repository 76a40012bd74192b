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
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/winpipe-go/winpipe/internal/threadctl"
	"github.com/winpipe-go/winpipe/pipe"
	"github.com/winpipe-go/winpipe/reactor"
	"github.com/winpipe-go/winpipe/readiness"
	"github.com/winpipe-go/winpipe/ring"
)

// readableInner is the state shared between the user goroutine and the
// readable worker goroutine. It is held through a plain pointer - Go's GC
// makes the reference counting the original Rust Arc<T> needed unnecessary.
type readableInner struct {
	cell      readiness.Cell
	terminate terminateFlag

	// notFull is a 1-buffered "wake the worker" signal: the user's Read
	// sends (non-blocking) whenever a Pop transitions the ring from full
	// to non-full. It is the Go rendering of the condition variable
	// design note in SPEC_FULL.md - a channel whose only job is waking a
	// single parked waiter, not protecting any data.
	notFull chan struct{}
	// termWake is closed exactly once, by Close, to wake a worker parked
	// on notFull without waiting for a real not-full edge.
	termWake chan struct{}

	// handleCh publishes the worker's threadctl.Handle once, right after
	// the worker pins itself to an OS thread, so Close can cancel its
	// pending blocking read from a different goroutine.
	handleCh chan threadctl.Handle

	done chan struct{} // closed by the worker on exit

	registration reactor.Registration

	closeOnce sync.Once
	closeErr  error
}

// ReadableAdapter exposes a blocking pipe.ReadHandle as a non-blocking,
// readiness-signalling io-style source for a readiness reactor.
type ReadableAdapter struct {
	cfg       *config
	ring      *ring.Ring
	inner     *readableInner
	lifecycle atomic.Int32
}

// NewReadableAdapter takes ownership of pipe (it is moved into the worker
// goroutine; the caller must not use it again) and spawns the worker.
func NewReadableAdapter(p pipe.ReadHandle, opts ...Option) *ReadableAdapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	a := &ReadableAdapter{
		cfg:  cfg,
		ring: ring.New(cfg.ringCapacity),
		inner: &readableInner{
			notFull:  make(chan struct{}, 1),
			termWake: make(chan struct{}),
			handleCh: make(chan threadctl.Handle, 1),
			done:     make(chan struct{}),
		},
	}
	a.lifecycle.Store(int32(lifecycleActive))

	go a.runWorker(p)

	return a
}

func (a *ReadableAdapter) runWorker(p pipe.ReadHandle) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("winpipe: panic in readable worker: %v\n%s", r, debug.Stack())
		}
		_ = p.Close()
		close(a.inner.done)
	}()

	handle := threadctl.Begin()
	a.inner.handleCh <- handle

	scratch := mcache.Malloc(a.cfg.scratchSize)
	defer mcache.Free(scratch)

	for {
		if a.inner.terminate.isSet() {
			return
		}

		// This call may block indefinitely inside the pipe syscall;
		// Close cancels it via threadctl.Cancel(handle).
		n, err := p.Read(scratch)
		if err != nil && a.cfg.onReadError != nil {
			a.cfg.onReadError(err)
		}
		if n <= 0 {
			continue
		}

		written := 0
		for written < n {
			for a.ring.IsFull() {
				if a.inner.terminate.isSet() {
					return
				}
				select {
				case <-a.inner.notFull:
				case <-a.inner.termWake:
					return
				}
			}

			wasEmpty := a.ring.IsEmpty()
			written += a.ring.Push(scratch[written:n])
			if wasEmpty {
				a.inner.cell.Set(readiness.Readable)
			}
		}
	}
}

// Read copies up to len(dst) bytes from the ring into dst. It never blocks
// on the pipe and returns 0, nil when the ring is currently empty. The
// returned error is always nil: per spec, Ring protocol violations are
// impossible by construction and pipe-level errors are observed through
// readiness, not through Read's return value.
func (a *ReadableAdapter) Read(dst []byte) (int, error) {
	wasFull := a.ring.IsFull()
	n := a.ring.Pop(dst)

	if a.ring.IsEmpty() {
		a.inner.cell.Set(readiness.None)
		// Race-closing recheck: the worker may have pushed a byte between
		// our Pop and our Set(None) above. If so, restore Readable rather
		// than leaving the edge silently dropped (see SPEC_FULL.md §9 on
		// the reference implementation's inverted recheck).
		if !a.ring.IsEmpty() {
			a.inner.cell.Set(readiness.Readable)
		}
	}

	if wasFull && n > 0 {
		select {
		case a.inner.notFull <- struct{}{}:
		default:
		}
	}

	return n, nil
}

// Register forwards to r.Register, correlating the adapter's readiness
// cell with token under interest.
func (a *ReadableAdapter) Register(r reactor.Reactor, token reactor.Token, interest reactor.Interest) error {
	reg, err := r.Register(&a.inner.cell, token, interest)
	if err != nil {
		return err
	}
	a.inner.registration = reg
	return nil
}

// Reregister forwards to r.Reregister using the Registration captured by
// Register.
func (a *ReadableAdapter) Reregister(r reactor.Reactor, token reactor.Token, interest reactor.Interest) error {
	return r.Reregister(a.inner.registration, token, interest)
}

// Deregister forwards to r.Deregister using the Registration captured by
// Register.
func (a *ReadableAdapter) Deregister(r reactor.Reactor) error {
	return r.Deregister(a.inner.registration)
}

// Close terminates the worker and waits for it to exit, cancelling its
// pending blocking read if necessary. It is idempotent: calling it more
// than once returns the result of the first call. Bytes still sitting in
// the ring are dropped; there is no flush contract.
func (a *ReadableAdapter) Close() error {
	a.inner.closeOnce.Do(func() {
		a.lifecycle.Store(int32(lifecycleTerminating))
		a.inner.terminate.set()

		var handle threadctl.Handle
		select {
		case handle = <-a.inner.handleCh:
		case <-a.inner.done:
			// Worker already exited without a handle left to receive
			// (the handle is published before the first Read, so this
			// only happens if threadctl.Begin panicked) - nothing to
			// cancel.
		}
		_ = threadctl.Cancel(handle)
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
