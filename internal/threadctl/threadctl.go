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

// Package threadctl pins the readable-side worker to an OS thread and
// cancels its in-flight blocking read from the destructor's goroutine.
//
// Windows anonymous pipe reads are synchronous and not natively cancellable
// except by CancelSynchronousIo, which targets a specific OS thread handle.
// A goroutine does not own a stable OS thread unless it calls
// runtime.LockOSThread, so the worker must do that before entering its read
// loop, and must publish the resulting handle so Close can reach it.
package threadctl

// Handle identifies the OS thread a worker goroutine locked itself to, in a
// form the platform's cancellation primitive can target. On platforms
// without a native cancellation primitive (including non-Windows builds)
// Handle is a no-op and Cancel always returns nil without interrupting
// anything.
type Handle struct {
	platform platformHandle
}

// Begin pins the calling goroutine to its current OS thread and returns a
// Handle that a different goroutine can later pass to Cancel to interrupt a
// blocking syscall the pinned thread is inside of. On non-Windows builds
// Begin does not pin the goroutine and returns an empty Handle.
//
// Begin must be called from the goroutine that will perform the blocking
// I/O, before the first blocking call. The caller must not call
// runtime.UnlockOSThread itself; the worker goroutine exits (and the OS
// thread is torn down with it) once its loop returns.
func Begin() Handle {
	return Handle{platform: beginPlatform()}
}

// Cancel interrupts any pending synchronous I/O on the thread identified by
// h. It is safe to call from any goroutine, including concurrently with the
// pinned thread entering or leaving a blocking syscall: on Windows,
// CancelSynchronousIo is documented to return an error (passed back to the
// caller unchanged) if the target thread has no pending synchronous I/O at
// the moment of the call, which simply means there is nothing to cancel.
func Cancel(h Handle) error {
	return cancelPlatform(h.platform)
}
