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

//go:build !windows

package threadctl

// platformHandle is empty off Windows: there is no portable equivalent of
// CancelSynchronousIo, and the portable pipe.ReadHandle (pipe_portable.go)
// never blocks past a Close anyway - it is backed by os.Pipe, whose Read
// unblocks on its own once the write end is closed.
type platformHandle struct{}

func beginPlatform() platformHandle { return platformHandle{} }

func cancelPlatform(platformHandle) error { return nil }
