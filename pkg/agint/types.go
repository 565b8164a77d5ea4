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

// Package agint is the AGInt cognitive governor: a
// Perceive-Orient-Decide-Act loop that chooses, every tick, whether to
// delegate the campaign objective to a BDI instance, repair a failed
// dependency, research to enrich beliefs, or cool down an overloaded
// system.
package agint

import (
	"github.com/quietloop/cognitad/pkg/bdi"
	"github.com/quietloop/cognitad/pkg/telemetry"
)

// LLMHealth is the provider liveness state the governor probes every
// tick.
type LLMHealth string

const (
	LLMOperational LLMHealth = "operational"
	LLMDegraded    LLMHealth = "degraded"
	LLMDown        LLMHealth = "down"
)

// LastAction summarizes the previous tick's Act outcome for the decide
// table; "none" only holds before the first tick.
type LastAction string

const (
	LastActionNone    LastAction = "none"
	LastActionSuccess LastAction = "success"
	LastActionFailure LastAction = "failure"
)

// Decision is one of the four outcomes the Decide phase can reach.
type Decision string

const (
	DecisionCooldown   Decision = "COOLDOWN"
	DecisionSelfRepair Decision = "SELF_REPAIR"
	DecisionResearch   Decision = "RESEARCH"
	DecisionDelegate   Decision = "DELEGATE"
)

// Tick is one completed P-O-D-A iteration, handed to the caller's onTick
// callback so the Mastermind can record campaign progress without the
// governor holding a pointer back to its owner.
type Tick struct {
	Iteration    int
	SystemHealth telemetry.SystemHealth
	LLMHealth    LLMHealth
	Decision     Decision
	Outcome      *bdi.Outcome // set only when Decision == DELEGATE and it returned
}
