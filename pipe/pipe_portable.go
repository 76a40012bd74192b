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

package pipe

import (
	"os"
)

// NewPortablePair returns an in-memory ReadHandle/WriteHandle pair backed by
// os.Pipe. It exists for tests and non-Windows development: it has the same
// blocking, non-overlapped Read/Write semantics as a Windows anonymous pipe,
// but os.Pipe's Read already unblocks when the write end is closed, so
// unlike the real Windows implementation it needs no CancelSynchronousIo
// equivalent for its teardown to be prompt.
func NewPortablePair() (ReadHandle, WriteHandle) {
	r, w, err := os.Pipe()
	if err != nil {
		// os.Pipe only fails if the process is out of file descriptors;
		// there is no sane recovery for a test helper.
		panic(err)
	}
	return &portableRead{f: r}, &portableWrite{f: w}
}

type portableRead struct {
	f *os.File
}

func (p *portableRead) Read(buf []byte) (int, error) {
	return p.f.Read(buf)
}

func (p *portableRead) Close() error {
	return p.f.Close()
}

type portableWrite struct {
	f *os.File
}

func (p *portableWrite) Write(buf []byte) (int, error) {
	return p.f.Write(buf)
}

func (p *portableWrite) Close() error {
	return p.f.Close()
}
