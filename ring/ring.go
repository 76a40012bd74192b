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

// Package ring provides a fixed-capacity single-producer/single-consumer
// byte queue.
//
// Exactly one goroutine may call Push, and exactly one goroutine may call
// Pop, concurrently with each other. Push and Pop never block and never
// allocate; a full Push or an empty Pop simply returns 0. The ring does not
// enforce the single-producer/single-consumer contract - callers violating
// it get torn writes, not a panic.
package ring

import (
	"sync/atomic"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// Ring is a fixed-capacity SPSC byte queue.
//
// writePos and readPos are monotonically increasing byte counts, each owned
// by exactly one side: writePos is only ever stored by Push (the producer),
// readPos is only ever stored by Pop (the consumer). Neither side derives
// its own buffer offset from a field the other side writes - each computes
// writeStart/readStart purely from its own cursor, modulo cap. The other
// side's cursor is only ever Loaded to compute a conservative (never
// overestimated) bound on available space/data: a stale Load of the other
// cursor can only make Push see less free space or Pop see fewer queued
// bytes than truly available, never more, so a racing Pop/Push can never
// cause Push to overwrite bytes Pop has not yet copied out, or Pop to read
// bytes Push has not yet published. This is the same two-cursor discipline
// drgolem's RingBuffer uses (writePos/readPos, each touched by one side),
// adapted from its power-of-2 bitmask indexing to plain modulo so Ring's
// capacity need not be a power of 2.
type Ring struct {
	buf      []byte
	cap      int
	writePos atomic.Uint64 // owned by Push
	readPos  atomic.Uint64 // owned by Pop
}

// New returns a Ring with the given capacity. Panics if capacity <= 0.
func New(capacity int) *Ring {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	return &Ring{
		buf: dirtmake.Bytes(capacity, capacity),
		cap: capacity,
	}
}

// Cap returns the ring's fixed capacity.
func (r *Ring) Cap() int { return r.cap }

// Len returns the number of bytes currently queued.
func (r *Ring) Len() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// IsEmpty reports whether the ring currently holds no bytes.
func (r *Ring) IsEmpty() bool { return r.writePos.Load() == r.readPos.Load() }

// IsFull reports whether the ring currently holds Cap() bytes.
func (r *Ring) IsFull() bool {
	return int(r.writePos.Load()-r.readPos.Load()) == r.cap
}

// Push copies up to min(len(src), Cap()-Len()) bytes into the ring,
// starting at the logical write cursor, wrapping as needed. It returns the
// number of bytes copied, which is 0 iff the ring is full or src is empty.
//
// Push must only be called by the producer.
func (r *Ring) Push(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	writePos := r.writePos.Load()
	length := int(writePos - r.readPos.Load())
	free := r.cap - length
	if free == 0 {
		return 0
	}
	n := len(src)
	if n > free {
		n = free
	}

	writeStart := int(writePos) % r.cap
	if tail := r.cap - writeStart; n <= tail {
		copy(r.buf[writeStart:writeStart+n], src[:n])
	} else {
		copy(r.buf[writeStart:], src[:tail])
		copy(r.buf[:n-tail], src[tail:n])
	}

	r.writePos.Store(writePos + uint64(n))
	return n
}

// Pop copies up to min(len(dst), Len()) bytes out of the ring into dst,
// starting at the logical read cursor, wrapping as needed. It returns the
// number of bytes copied, which is 0 iff the ring is empty or dst is empty.
//
// Pop must only be called by the consumer.
func (r *Ring) Pop(dst []byte) int {
	if len(dst) == 0 {
		return 0
	}
	readPos := r.readPos.Load()
	length := int(r.writePos.Load() - readPos)
	if length == 0 {
		return 0
	}
	n := len(dst)
	if n > length {
		n = length
	}

	readStart := int(readPos) % r.cap
	if tail := r.cap - readStart; n <= tail {
		copy(dst[:n], r.buf[readStart:readStart+n])
	} else {
		copy(dst[:tail], r.buf[readStart:])
		copy(dst[tail:n], r.buf[:n-tail])
	}

	r.readPos.Store(readPos + uint64(n))
	return n
}
