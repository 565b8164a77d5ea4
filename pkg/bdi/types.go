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

// Package bdi is the tactical reasoner: a Belief-Desire-Intention
// planner that decomposes a delegated objective into a plan of tool
// invocations, executes it through the tool registry, and reports success
// or failure upward to the governor.
package bdi

import "github.com/quietloop/cognitad/internal/clock"

// GoalStatus is the lifecycle state of a Goal.
type GoalStatus string

const (
	GoalPending   GoalStatus = "PENDING"
	GoalActive    GoalStatus = "ACTIVE"
	GoalAchieved  GoalStatus = "ACHIEVED"
	GoalFailed    GoalStatus = "FAILED"
	GoalAbandoned GoalStatus = "ABANDONED"
)

// Terminal reports whether s is an absorbing status.
func (s GoalStatus) Terminal() bool {
	switch s {
	case GoalAchieved, GoalFailed, GoalAbandoned:
		return true
	default:
		return false
	}
}

// Goal is a Desire: something the agent wants achieved.
type Goal struct {
	ID                   string
	Description          string
	Priority             int // 1 = most important
	Deadline             *clock.Logical
	RequiredCapabilities []string
	Status               GoalStatus
	ParentGoalID         string
}

// IntentionStatus is the lifecycle state of an Intention.
type IntentionStatus string

const (
	IntentionPlanned   IntentionStatus = "PLANNED"
	IntentionExecuting IntentionStatus = "EXECUTING"
	IntentionSucceeded IntentionStatus = "SUCCEEDED"
	IntentionFailed    IntentionStatus = "FAILED"
)

func (s IntentionStatus) Terminal() bool {
	return s == IntentionSucceeded || s == IntentionFailed
}

// PlanAction is one step of an Intention's plan.
type PlanAction struct {
	// Type is a registered tool name, or one of the built-in control
	// actions CREATE_AGENT / UPDATE_BELIEF / NO_OP.
	Type        string
	Params      map[string]any
	Contingency *PlanAction
}

// Intention is a Plan pursuing a Goal. Actions are never mutated after
// planning; a replan produces a new Intention linked to the same GoalID.
type Intention struct {
	GoalID  string
	Actions []PlanAction
	Cursor  int
	Status  IntentionStatus
}

// OutcomeStatus is the terminal result Reasoner.Run reports upward.
type OutcomeStatus string

const (
	Achieved  OutcomeStatus = "ACHIEVED"
	Failed    OutcomeStatus = "FAILED"
	Abandoned OutcomeStatus = "ABANDONED"
)

// Outcome is the result of Reasoner.Run.
type Outcome struct {
	Status    OutcomeStatus
	Reason    string
	Artifacts map[string]any
}
