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

package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winpipe-go/winpipe/reactor"
	"github.com/winpipe-go/winpipe/readiness"
)

func TestMemoryRegisterReregisterDeregister(t *testing.T) {
	m := reactor.NewMemory()
	var cell readiness.Cell
	cell.Set(readiness.Readable)

	reg, err := m.Register(&cell, 1, reactor.InterestReadable)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, readiness.Readable, m.Readiness(reg))

	require.NoError(t, m.Reregister(reg, 1, reactor.InterestReadable|reactor.InterestWritable))

	require.NoError(t, m.Deregister(reg))
	assert.Equal(t, 0, m.Len())

	assert.ErrorIs(t, m.Deregister(reg), reactor.ErrNotRegistered)
}

func TestMemoryRejectsForeignRegistration(t *testing.T) {
	m := reactor.NewMemory()
	assert.ErrorIs(t, m.Reregister("not a slot", 1, reactor.InterestReadable), reactor.ErrNotRegistered)
}
