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

package reactor

import (
	"sync"

	"github.com/winpipe-go/winpipe/readiness"
)

// Memory is a minimal in-process Reactor used by winpipe's own tests and by
// callers exercising an adapter without a real OS-level reactor. It tracks
// registrations in a slot table the way connstate's pollCache tracks
// fdOperators, but with no epoll/kqueue underneath - it simply remembers
// the (token, interest, cell) tuple so tests can poll Cell.Get() themselves
// instead of being woken asynchronously.
type Memory struct {
	mu    sync.Mutex
	slots map[*memorySlot]struct{}
}

type memorySlot struct {
	token    Token
	interest Interest
	cell     *readiness.Cell
}

// NewMemory returns an empty in-process Reactor.
func NewMemory() *Memory {
	return &Memory{slots: make(map[*memorySlot]struct{})}
}

func (m *Memory) Register(cell *readiness.Cell, token Token, interest Interest) (Registration, error) {
	slot := &memorySlot{token: token, interest: interest, cell: cell}
	m.mu.Lock()
	m.slots[slot] = struct{}{}
	m.mu.Unlock()
	return slot, nil
}

func (m *Memory) Reregister(reg Registration, token Token, interest Interest) error {
	slot, ok := reg.(*memorySlot)
	if !ok {
		return ErrNotRegistered
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return ErrNotRegistered
	}
	slot.token = token
	slot.interest = interest
	return nil
}

func (m *Memory) Deregister(reg Registration) error {
	slot, ok := reg.(*memorySlot)
	if !ok {
		return ErrNotRegistered
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return ErrNotRegistered
	}
	delete(m.slots, slot)
	return nil
}

// Len returns the number of live registrations. Test helper only.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// Readiness returns the current readiness mask for reg, as the reactor's
// poll loop would observe it. Test helper only.
func (m *Memory) Readiness(reg Registration) readiness.Mask {
	slot, ok := reg.(*memorySlot)
	if !ok {
		return readiness.None
	}
	return slot.cell.Get()
}
