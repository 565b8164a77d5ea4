// Copyright 2025 The Cognitad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clock provides the logical timestamp used across the cognitive
// core. Beliefs, goals, and campaign history only need to compare "before"
// and "after" (the contract is comparison, not resolution), so a monotone
// counter is used instead of wall-clock time. This also keeps replay
// deterministic: replaying a log twice produces identical timestamps.
package clock

import "sync/atomic"

// Logical is a monotone, strictly increasing timestamp.
type Logical uint64

// Source hands out Logical timestamps.
type Source struct {
	counter atomic.Uint64
}

// New returns a fresh Source starting at zero.
func New() *Source {
	return &Source{}
}

// Now returns the next Logical timestamp. Safe for concurrent use.
func (s *Source) Now() Logical {
	return Logical(s.counter.Add(1))
}

// Observe advances the source so that future Now() calls are strictly
// greater than t. Used when replaying a log to keep the counter consistent
// with previously recorded timestamps.
func (s *Source) Observe(t Logical) {
	for {
		cur := s.counter.Load()
		if Logical(cur) >= t {
			return
		}
		if s.counter.CompareAndSwap(cur, uint64(t)) {
			return
		}
	}
}
