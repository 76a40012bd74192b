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

// Package reactor defines the registration contract a winpipe adapter
// forwards to an external readiness-driven I/O reactor. winpipe never
// implements a production epoll/IOCP poll loop itself - the reactor is an
// opaque collaborator the same way connstate treats its poller interface:
// a thing that gets told to add/remove a descriptor and otherwise runs on
// its own.
package reactor

import (
	"errors"

	"github.com/winpipe-go/winpipe/readiness"
)

// ErrNotRegistered is returned by Reregister/Deregister when called on a
// Registration the Reactor does not know about.
var ErrNotRegistered = errors.New("reactor: registration not known to this reactor")

// Token is the opaque value a reactor associates with a registered source
// so its poll loop can map a woken edge back to the source that raised it.
type Token uint64

// Interest is the set of readiness edges a registration cares about.
type Interest uint8

const (
	// InterestReadable means the registration wants to be woken when the
	// source becomes readable.
	InterestReadable Interest = 1 << 0
	// InterestWritable means the registration wants to be woken when the
	// source becomes writable.
	InterestWritable Interest = 1 << 1
)

// Registration is the descriptor a Reactor binds to a Token. winpipe treats
// it as opaque: it stores whatever the Reactor handed back from Register
// and forwards it unmodified to Reregister/Deregister.
type Registration interface{}

// Reactor is implemented by the readiness-driven poll loop that consumes a
// winpipe adapter. An adapter's Register/Reregister/Deregister methods are
// pure forwarding to a Reactor supplied by the caller; winpipe never calls
// these methods itself.
type Reactor interface {
	// Register binds a new Registration to token with the given interest,
	// correlated with cell so the reactor's poll loop can observe edges
	// the adapter's worker asserts on cell without winpipe needing to
	// know how the reactor wakes itself (an eventfd, a self-pipe, IOCP
	// completion, ...). It returns the Registration descriptor to be used
	// in subsequent Reregister/Deregister calls.
	Register(cell *readiness.Cell, token Token, interest Interest) (Registration, error)
	// Reregister updates the interest associated with reg.
	Reregister(reg Registration, token Token, interest Interest) error
	// Deregister removes reg from the reactor.
	Deregister(reg Registration) error
}
