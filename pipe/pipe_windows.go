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

package pipe

import "golang.org/x/sys/windows"

// NewAnonymousPair creates a Windows anonymous pipe (CreatePipe) and
// returns its blocking read and write ends. Unlike a named pipe opened with
// FILE_FLAG_OVERLAPPED, an anonymous pipe's ReadFile/WriteFile calls always
// block the calling thread until bytes move - this is exactly the handle
// type winpipe's ReadableAdapter/WritableAdapter exist to bridge into a
// readiness reactor.
func NewAnonymousPair(bufSize uint32) (ReadHandle, WriteHandle, error) {
	var rh, wh windows.Handle
	if err := windows.CreatePipe(&rh, &wh, nil, bufSize); err != nil {
		return nil, nil, err
	}
	return &anonRead{h: rh}, &anonWrite{h: wh}, nil
}

type anonRead struct {
	h windows.Handle
}

func (a *anonRead) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uint32
	err := windows.ReadFile(a.h, buf, &n, nil)
	if err != nil {
		if err == windows.ERROR_BROKEN_PIPE {
			return 0, nil
		}
		return int(n), err
	}
	return int(n), nil
}

func (a *anonRead) Close() error {
	return windows.CloseHandle(a.h)
}

type anonWrite struct {
	h windows.Handle
}

func (a *anonWrite) Write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uint32
	err := windows.WriteFile(a.h, buf, &n, nil)
	return int(n), err
}

func (a *anonWrite) Close() error {
	return windows.CloseHandle(a.h)
}
