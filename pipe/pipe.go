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

// Package pipe defines the blocking pipe-handle contract winpipe's worker
// goroutines sit on top of, plus two implementations: the real Windows
// anonymous-pipe handles (pipe_windows.go) and a portable os.Pipe-backed
// pair (pipe_portable.go) used by tests and non-Windows builds.
package pipe

// ReadHandle is a blocking, non-overlapped readable pipe end.
//
// The worker goroutine that owns a ReadHandle is responsible for pinning
// itself to an OS thread (via internal/threadctl) before calling Read for
// the first time, so that a concurrent Close can interrupt a pending Read
// through threadctl.Cancel. That pinning is a property of the worker loop,
// not of the handle itself, since it is the thread, not the handle, that a
// cancellation syscall targets.
type ReadHandle interface {
	// Read blocks until at least one byte is available, the pipe is
	// closed (n == 0, err == nil or io.EOF), or an error occurs.
	Read(buf []byte) (n int, err error)

	// Close releases the underlying OS handle.
	Close() error
}

// WriteHandle is a blocking, non-overlapped writable pipe end.
type WriteHandle interface {
	// Write blocks until at least one byte has been accepted by the
	// pipe, or an error occurs. Short writes (n < len(buf)) are
	// possible and must be retried by the caller.
	Write(buf []byte) (n int, err error)

	// Close releases the underlying OS handle.
	Close() error
}
