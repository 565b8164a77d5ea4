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

package bdi

import "github.com/quietloop/cognitad/internal/clock"

// cycleState carries everything one Run call threads through its cycles.
//
// OWNERSHIP MODEL:
//   - Run-loop owned (mutated only between cycles, at well-defined steps 1-5):
//     iteration, lastEventCursor, goals, activeGoalID, intentions
//   - Per-cycle-local (reset or consulted entirely within one step, never
//     read across a cycle boundary): replanAttemptsThisCycle
//   - Cross-cycle budget (monotone, never reset): totalReplanAttempts
//   - Shared immutable for the whole Run call: maxCycles, placeholders (the
//     keyword -> path map Run's caller passes in; nothing in this package
//     derives it from the goal description)
type cycleState struct {
	iteration       int
	maxCycles       int
	lastEventCursor clock.Logical

	goals        map[string]*Goal
	activeGoalID string
	intentions   map[string]*Intention // goalID -> latest Intention

	replanAttemptsThisCycle int
	totalReplanAttempts     int

	placeholders map[string]string
}

func newCycleState(rootGoal *Goal, maxCycles int, placeholders map[string]string) *cycleState {
	return &cycleState{
		maxCycles:    maxCycles,
		goals:        map[string]*Goal{rootGoal.ID: rootGoal},
		activeGoalID: rootGoal.ID,
		intentions:   make(map[string]*Intention),
		placeholders: placeholders,
	}
}

func (s *cycleState) activeGoal() *Goal {
	return s.goals[s.activeGoalID]
}

// maxTotalReplans is the per-run replan budget: at most ⌈maxCycles/2⌉
// attempts across all cycles.
func (s *cycleState) maxTotalReplans() int {
	return (s.maxCycles + 1) / 2
}

// selectActiveGoal implements the tie-break rule: among PENDING goals,
// pick the highest priority (lowest number), breaking ties by nearer
// deadline then lexicographic id.
func selectActiveGoal(goals map[string]*Goal) *Goal {
	var best *Goal
	for _, g := range goals {
		if g.Status != GoalPending {
			continue
		}
		if best == nil || better(g, best) {
			best = g
		}
	}
	return best
}

func better(a, b *Goal) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	switch {
	case a.Deadline != nil && b.Deadline == nil:
		return true
	case a.Deadline == nil && b.Deadline != nil:
		return false
	case a.Deadline != nil && b.Deadline != nil && *a.Deadline != *b.Deadline:
		return *a.Deadline < *b.Deadline
	default:
		return a.ID < b.ID
	}
}
