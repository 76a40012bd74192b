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

import "time"

const (
	defaultRingCapacity = 65536
	defaultScratchSize  = 65535 // one byte under the default ring capacity
	defaultCloseTimeout = 2 * time.Second
)

// config holds the resolved Option values for one adapter. Both
// ReadableAdapter and WritableAdapter build one from the same Option set,
// the way concurrency/gopool.Option is shared across pool construction.
type config struct {
	ringCapacity int
	scratchSize  int
	closeTimeout time.Duration
	onReadError  func(error)
	blockingCap  int // 0 disables the blocking-write helper
}

func defaultConfig() *config {
	return &config{
		ringCapacity: defaultRingCapacity,
		scratchSize:  defaultScratchSize,
		closeTimeout: defaultCloseTimeout,
	}
}

// Option configures a ReadableAdapter or WritableAdapter at construction.
type Option func(*config)

// WithRingCapacity sets the fixed capacity of the adapter's ring buffer.
// Panics at construction time if capacity <= 0.
func WithRingCapacity(capacity int) Option {
	return func(c *config) { c.ringCapacity = capacity }
}

// WithScratchSize sets the size of the worker's per-iteration scratch
// buffer. A scratch buffer at least as large as the ring capacity lets a
// single pipe syscall fill (or drain) the whole ring.
func WithScratchSize(size int) Option {
	return func(c *config) { c.scratchSize = size }
}

// WithCloseTimeout bounds how long Close waits for the worker goroutine to
// exit before returning ErrWorkerJoinTimeout.
func WithCloseTimeout(d time.Duration) Option {
	return func(c *config) { c.closeTimeout = d }
}

// WithReadErrorHook installs a diagnostic callback the readable worker
// invokes (best-effort, never on the hot path for a successful read) when
// the underlying pipe.Read returns a non-nil error. It exists purely so a
// caller can distinguish EOF-by-error from EOF-by-zero-read for logging;
// it never changes ReadableAdapter's behavior, which continues looping
// either way per spec.
func WithReadErrorHook(f func(error)) Option {
	return func(c *config) { c.onReadError = f }
}

// WithBlockingWrite enables (*WritableAdapter).WriteContext, a helper for
// callers outside the reactor's own goroutine that would rather park than
// poll. maxConcurrent bounds how many goroutines may be blocked inside
// WriteContext at once; additional callers wait on a
// golang.org/x/sync/semaphore.Weighted acquire, which WriteContext's ctx
// can cancel.
func WithBlockingWrite(maxConcurrent int) Option {
	return func(c *config) { c.blockingCap = maxConcurrent }
}
