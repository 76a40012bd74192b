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

//go:build windows

package threadctl

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// platformHandle is a duplicated, waitable handle to the OS thread the
// worker locked itself to. It must be a duplicate (rather than the
// pseudo-handle GetCurrentThread returns) because the pseudo-handle is only
// valid from the thread that retrieved it; Cancel runs on a different
// thread.
type platformHandle struct {
	h windows.Handle
}

func beginPlatform() platformHandle {
	runtime.LockOSThread()

	pseudo := windows.CurrentThread()
	proc := windows.CurrentProcess()

	var dup windows.Handle
	err := windows.DuplicateHandle(proc, pseudo, proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		// Nothing sane to cancel against; Cancel below degrades to a no-op.
		return platformHandle{}
	}
	return platformHandle{h: dup}
}

func cancelPlatform(h platformHandle) error {
	if h.h == 0 {
		return nil
	}
	return windows.CancelSynchronousIo(h.h)
}
