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

// Package belief is the belief store: keyed knowledge with a confidence
// in [0,1], an append-only evidence trail, and contradiction handling by
// supersession rather than overwrite.
package belief

import "github.com/quietloop/cognitad/internal/clock"

// Source tags where a belief came from.
type Source string

const (
	SourcePerception   Source = "perception"
	SourceToolResult   Source = "tool_result"
	SourceLLMInference Source = "llm_inference"
	SourceUser         Source = "user"
	SourceInherited    Source = "inherited"
)

// Belief is one keyed fact. Evidence is append-only; Confidence only
// changes when an evidence item is appended or a contradiction supersedes
// the record.
type Belief struct {
	Key        string
	Value      any
	Confidence float64
	Evidence   []string
	Source     Source
	CreatedAt  clock.Logical
	UpdatedAt  clock.Logical

	Superseded       bool
	SupersededReason string
}

// ReinforcementFunc computes the new confidence given the current value
// and a positive reinforcement delta, both expected in [0,1]. The default,
// DefaultReinforcement, is the noisy-OR blend `1 - (1-c)·(1-delta)`: it
// is deterministic, monotone in both inputs, and saturates at 1.
type ReinforcementFunc func(current, delta float64) float64

// DefaultReinforcement is the store's built-in ReinforcementFunc.
func DefaultReinforcement(current, delta float64) float64 {
	current = clamp01(current)
	delta = clamp01(delta)
	return clamp01(1 - (1-current)*(1-delta))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
