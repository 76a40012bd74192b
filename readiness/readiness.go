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

// Package readiness implements the readiness cell the winpipe adapters use
// to broadcast readable/writable edges to a reactor. A Cell is the winpipe
// analogue of connstate's atomic ConnState: any goroutine may Set it, and
// the reactor's poll loop may Get it concurrently, without a lock.
package readiness

import "sync/atomic"

// Mask is a bitmask of readiness edges. An adapter only ever writes the
// subset appropriate to its direction: a ReadableAdapter never asserts
// Writable, a WritableAdapter never asserts Readable.
type Mask uint32

const (
	// None means neither edge is currently asserted.
	None Mask = 0
	// Readable means bytes are available to read without blocking.
	Readable Mask = 1 << 0
	// Writable means the sink currently has room to accept more bytes.
	Writable Mask = 1 << 1
)

func (m Mask) String() string {
	switch m {
	case None:
		return "none"
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	default:
		return "invalid"
	}
}

// Cell holds a readiness bitmask. The zero value is None. Safe for
// concurrent use by any number of goroutines.
type Cell struct {
	bits atomic.Uint32
}

// Set overwrites the cell's value. Called by the adapter's worker and by
// the adapter's user-facing Read/Write when an edge transitions.
func (c *Cell) Set(m Mask) {
	c.bits.Store(uint32(m))
}

// Get returns the cell's current value.
func (c *Cell) Get() Mask {
	return Mask(c.bits.Load())
}
