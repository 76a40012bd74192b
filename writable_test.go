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
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winpipe-go/winpipe"
	"github.com/winpipe-go/winpipe/pipe"
	"github.com/winpipe-go/winpipe/reactor"
	"github.com/winpipe-go/winpipe/readiness"
)

// TestWritableAssertsWritableImmediately covers the construction invariant
// from SPEC_FULL.md §3/§4.3: the ring starts empty, so Writable is asserted
// before any byte is ever written.
func TestWritableAssertsWritableImmediately(t *testing.T) {
	r, w := pipe.NewPortablePair()
	defer r.Close()
	a := winpipe.NewWritableAdapter(w, winpipe.WithRingCapacity(64))
	defer a.Close()

	m := reactor.NewMemory()
	reg, err := a.Register(m, 1, reactor.InterestWritable)
	require.NoError(t, err)
	assert.Equal(t, readiness.Writable, m.Readiness(reg))
}

// TestWritableBackpressure is end-to-end scenario 3: a slow downstream
// reader causes Write to saturate the ring, return 0 until drained, and the
// readiness cell to cycle Writable -> None -> Writable.
func TestWritableBackpressure(t *testing.T) {
	r, w := pipe.NewPortablePair()
	a := winpipe.NewWritableAdapter(w, winpipe.WithRingCapacity(64), winpipe.WithScratchSize(64))
	defer a.Close()

	m := reactor.NewMemory()
	reg, err := a.Register(m, 1, reactor.InterestWritable)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 1)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := r.Read(buf); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
	defer func() { close(stop); _ = r.Close(); wg.Wait() }()

	payload := make([]byte, 128)
	n, err := a.Write(payload)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.LessOrEqual(t, n, 64)

	waitUntil(t, time.Second, func() bool { return m.Readiness(reg) != readiness.Writable })

	// Further writes are refused while the ring stays full.
	n2, err := a.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, 0, n2)

	waitUntil(t, 2*time.Second, func() bool { return m.Readiness(reg) == readiness.Writable })
}

// TestWritableWraparound is the data-model wraparound law from SPEC_FULL.md
// §8, exercised through the adapter's public Write rather than the Ring
// directly.
func TestWritableWraparound(t *testing.T) {
	r, w := pipe.NewPortablePair()
	a := winpipe.NewWritableAdapter(w, winpipe.WithRingCapacity(10), winpipe.WithScratchSize(10))
	defer a.Close()

	first := []byte("abcdef")
	n, err := a.Write(first)
	require.NoError(t, err)
	require.Equal(t, len(first), n)

	received := make([]byte, 0, 6)
	buf := make([]byte, 6)
	for len(received) < 6 {
		m, err := r.Read(buf[:6-len(received)])
		require.NoError(t, err)
		received = append(received, buf[:m]...)
	}
	assert.Equal(t, first, received)

	second := []byte("ZYXWVUTS")
	n, err = a.Write(second)
	require.NoError(t, err)
	require.Equal(t, len(second), n)

	received = received[:0]
	for len(received) < len(second) {
		m, err := r.Read(buf[:cap(buf)])
		require.NoError(t, err)
		received = append(received, buf[:m]...)
	}
	assert.Equal(t, second, received)
}

// TestWritableLatchesTerminalError exercises the REDESIGN FLAGS decision in
// SPEC_FULL.md §9: once the worker observes a pipe-write error, Write must
// latch ErrPipeClosed rather than silently accepting bytes nothing will
// drain.
func TestWritableLatchesTerminalError(t *testing.T) {
	w := &failingWriter{}
	a := winpipe.NewWritableAdapter(w, winpipe.WithRingCapacity(16))
	defer a.Close()

	_, err := a.Write([]byte("x"))
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool {
		_, werr := a.Write([]byte("y"))
		return werr != nil
	})

	_, err = a.Write([]byte("z"))
	assert.ErrorIs(t, err, winpipe.ErrPipeClosed)
}

type failingWriter struct{}

func (f *failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }
func (f *failingWriter) Close() error              { return nil }

func TestWritableFlushIsNoop(t *testing.T) {
	r, w := pipe.NewPortablePair()
	defer r.Close()
	a := winpipe.NewWritableAdapter(w)
	defer a.Close()
	assert.NoError(t, a.Flush())
}

func TestWritableBlockingWriteContext(t *testing.T) {
	r, w := pipe.NewPortablePair()
	defer r.Close()
	a := winpipe.NewWritableAdapter(w, winpipe.WithRingCapacity(16), winpipe.WithBlockingWrite(4))
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := a.WriteContext(ctx, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWritableCloseIsPrompt(t *testing.T) {
	r, w := pipe.NewPortablePair()
	defer r.Close()
	a := winpipe.NewWritableAdapter(w, winpipe.WithCloseTimeout(100*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- a.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
