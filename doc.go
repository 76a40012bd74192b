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

// Package winpipe adapts blocking, non-overlapped Windows anonymous pipe
// handles into non-blocking, readiness-signalling sources and sinks for a
// readiness-driven I/O reactor (the "poll for events, then do non-blocking
// I/O" model used by reactors built on epoll/kqueue/IOCP readiness ports).
//
// Windows anonymous pipes do not support overlapped I/O: a ReadFile or
// WriteFile against one blocks the calling thread until bytes move.
// ReadableAdapter and WritableAdapter each run a dedicated worker goroutine
// that performs that blocking call on the caller's behalf, decoupled from
// the user-facing, never-blocking Read/Write through a fixed-capacity
// single-producer/single-consumer ring (package ring) and a readiness cell
// (package readiness) the worker and the user side both touch.
package winpipe
