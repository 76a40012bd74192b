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

package winpipe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winpipe-go/winpipe"
	"github.com/winpipe-go/winpipe/pipe"
	"github.com/winpipe-go/winpipe/reactor"
	"github.com/winpipe-go/winpipe/readiness"
)

func waitUntil(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

// TestReadableSmallMessage is end-to-end scenario 1 from SPEC_FULL.md §8: a
// short write arrives whole and flips the readiness cell to Readable.
func TestReadableSmallMessage(t *testing.T) {
	r, w := pipe.NewPortablePair()
	a := winpipe.NewReadableAdapter(r, winpipe.WithRingCapacity(16))
	defer a.Close()

	m := reactor.NewMemory()
	reg, err := a.Register(m, 1, reactor.InterestReadable)
	require.NoError(t, err)

	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool { return m.Readiness(reg) == readiness.Readable })

	dst := make([]byte, 16)
	n, err := a.Read(dst)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(dst[:n]))
}

// TestReadableRingSmallerThanStream is end-to-end scenario 2: a 1000-byte
// stream drained through a 100-byte ring, one Read(100) at a time.
func TestReadableRingSmallerThanStream(t *testing.T) {
	r, w := pipe.NewPortablePair()
	a := winpipe.NewReadableAdapter(r, winpipe.WithRingCapacity(100))
	defer a.Close()

	pattern := make([]byte, 1000)
	for i := range pattern {
		pattern[i] = 1
	}
	go func() {
		_, _ = w.Write(pattern)
		_ = w.Close()
	}()

	dst := make([]byte, 100)
	total := 0
	deadline := time.Now().Add(5 * time.Second)
	for total < 1000 {
		n, err := a.Read(dst)
		require.NoError(t, err)
		for _, b := range dst[:n] {
			require.Equal(t, byte(1), b)
		}
		total += n
		if total < 1000 && n == 0 {
			if time.Now().After(deadline) {
				t.Fatal("timed out waiting for bytes")
			}
			time.Sleep(time.Millisecond)
		}
	}
	assert.Equal(t, 1000, total)
}

// TestReadableRaceClosingRecheck is end-to-end scenario 6: across 50
// write/drain cycles the worker's push must reassert Readable after each
// draining Read cleared it, and once the last byte has been drained and
// both sides quiesce, readiness must no longer be Readable.
func TestReadableRaceClosingRecheck(t *testing.T) {
	r, w := pipe.NewPortablePair()
	a := winpipe.NewReadableAdapter(r, winpipe.WithRingCapacity(4))
	defer a.Close()

	m := reactor.NewMemory()
	reg, err := a.Register(m, 1, reactor.InterestReadable)
	require.NoError(t, err)

	dst := make([]byte, 1)
	for i := 0; i < 50; i++ {
		_, err := w.Write([]byte{byte(i)})
		require.NoError(t, err)
		waitUntil(t, time.Second, func() bool { return m.Readiness(reg) == readiness.Readable })
		_, _ = a.Read(dst)
	}

	waitUntil(t, time.Second, func() bool { return m.Readiness(reg) != readiness.Readable })
}

// TestReadableCloseCancelsPendingRead is end-to-end scenario 5: dropping the
// adapter while the worker is blocked in a pipe Read with no data pending
// must return within a bounded time.
func TestReadableCloseCancelsPendingRead(t *testing.T) {
	r, _ := pipe.NewPortablePair()
	a := winpipe.NewReadableAdapter(r, winpipe.WithCloseTimeout(100*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- a.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestReadableReregisterDeregister(t *testing.T) {
	r, _ := pipe.NewPortablePair()
	a := winpipe.NewReadableAdapter(r)
	defer a.Close()

	m := reactor.NewMemory()
	_, err := a.Register(m, 1, reactor.InterestReadable)
	require.NoError(t, err)
	require.NoError(t, a.Reregister(m, 2, reactor.InterestReadable))
	require.NoError(t, a.Deregister(m))
}
