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

import (
	"context"
	"errors"
	"fmt"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// Reasoner is the BDI tactical reasoner. One Reasoner instance belongs
// to exactly one agent_id: beliefs, memory events, and tool invocations
// it performs are all scoped to that identity, keeping belief writes
// single-writer per agent.
//
// CREATE_AGENT is handled like any other plan action: the wiring layer
// registers it into the same Registry Reasoner already holds (see
// pkg/toolregistry.NewCreateAgentTool), so Reasoner never touches the
// identity store or agent factory directly; every external effect goes
// through the one registry dispatch path.
type Reasoner struct {
	agentID   string
	agentType string

	llmProvider llm.Provider
	beliefs     belief.Store
	mem         memlog.Memory
	tools       *toolregistry.Registry

	clock *clock.Source
}

// New constructs a Reasoner for agentID/agentType.
func New(agentID, agentType string, provider llm.Provider, beliefs belief.Store, mem memlog.Memory, tools *toolregistry.Registry, src *clock.Source) *Reasoner {
	return &Reasoner{
		agentID:     agentID,
		agentType:   agentType,
		llmProvider: provider,
		beliefs:     beliefs,
		mem:         mem,
		tools:       tools,
		clock:       src,
	}
}

// Run executes the BDI cycle for goal up to maxCycles times.
// Placeholders maps a lowercased keyword to the actual path it resolves
// to in plan params like "path/to/<keyword>".
func (r *Reasoner) Run(ctx context.Context, goal *Goal, maxCycles int, placeholders map[string]string) (Outcome, error) {
	goal.Status = GoalActive
	state := newCycleState(goal, maxCycles, placeholders)

	for state.iteration = 0; state.iteration < maxCycles; state.iteration++ {
		if err := ctx.Err(); err != nil {
			return r.interrupt(ctx, goal), nil
		}

		r.reviseBeliefs(state)

		if done, outcome := r.evaluateDesires(state, goal); done {
			return outcome, nil
		}

		if err := r.formIntention(ctx, state, goal); err != nil {
			var ce *cogerr.Error
			if asCogerr(err, &ce) {
				if ce.Category == cogerr.Dependency {
					return Outcome{}, err
				}
				goal.Status = GoalFailed
				return Outcome{Status: Failed, Reason: string(ce.Reason)}, nil
			}
			goal.Status = GoalFailed
			return Outcome{Status: Failed, Reason: err.Error()}, nil
		}

		if goal.Status.Terminal() {
			return r.terminalOutcome(goal), nil
		}

		outcome, terminal := r.executeIntention(ctx, state, goal)
		if terminal {
			return outcome, nil
		}
	}

	goal.Status = GoalFailed
	return Outcome{Status: Failed, Reason: "max_cycles_exhausted"}, nil
}

func asCogerr(err error, target **cogerr.Error) bool {
	ce, ok := err.(*cogerr.Error)
	if ok {
		*target = ce
	}
	return ok
}

func (r *Reasoner) abandon(goal *Goal, reason string) Outcome {
	goal.Status = GoalAbandoned
	return Outcome{Status: Abandoned, Reason: reason}
}

// interrupt maps a context interruption to the right terminal outcome: an
// exceeded deadline means the tick's wall-clock budget ran out, which
// converts to a failure with tick_timeout as the reason, while a plain
// cancellation abandons the goal.
func (r *Reasoner) interrupt(ctx context.Context, goal *Goal) Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		goal.Status = GoalFailed
		return Outcome{Status: Failed, Reason: string(cogerr.ReasonTickTimeout)}
	}
	return r.abandon(goal, "cancelled")
}

func (r *Reasoner) terminalOutcome(goal *Goal) Outcome {
	switch goal.Status {
	case GoalAchieved:
		return Outcome{Status: Achieved}
	case GoalAbandoned:
		return Outcome{Status: Abandoned}
	default:
		return Outcome{Status: Failed, Reason: "capability_lost"}
	}
}

// reviseBeliefs implements step 1: pull perceptions committed since the
// last cycle and fold them into the belief store, detecting and
// invalidating contradictions.
func (r *Reasoner) reviseBeliefs(state *cycleState) {
	events := r.mem.Query(memlog.Filter{AgentID: r.agentID, Since: state.lastEventCursor})
	for _, ev := range events {
		if ev.Timestamp > state.lastEventCursor {
			state.lastEventCursor = ev.Timestamp
		}
		key, value, ok := perceptionFields(ev)
		if !ok {
			continue
		}

		confidence, _ := ev.Data["confidence"].(float64)
		evidence, _ := ev.Data["evidence"].(string)
		source := belief.Source(stringField(ev.Data, "source", string(belief.SourcePerception)))

		existing, has := r.beliefs.Get(key)
		if has && !existing.Superseded && !equalValue(existing.Value, value) {
			r.beliefs.Supersede(key, value, confidence, evidence, source)
			continue
		}
		r.beliefs.Add(key, value, confidence, evidence, source)
	}
}

func perceptionFields(ev memlog.Event) (key string, value any, ok bool) {
	k, kok := ev.Data["key"].(string)
	if !kok || k == "" {
		return "", nil, false
	}
	return k, ev.Data["value"], true
}

func stringField(m map[string]any, field, def string) string {
	if v, ok := m[field].(string); ok && v != "" {
		return v
	}
	return def
}

func equalValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// evaluateDesires implements step 2: fail the goal if its required
// capabilities are no longer resolvable, otherwise pick the highest
// priority PENDING goal as active.
func (r *Reasoner) evaluateDesires(state *cycleState, rootGoal *Goal) (bool, Outcome) {
	active := state.activeGoal()

	for _, cap := range active.RequiredCapabilities {
		if !r.capabilityResolvable(cap) {
			active.Status = GoalFailed
			if active.ID == rootGoal.ID {
				return true, Outcome{Status: Failed, Reason: "capability_lost"}
			}
		}
	}

	if next := selectActiveGoal(state.goals); next != nil {
		next.Status = GoalActive
		state.activeGoalID = next.ID
	}

	if active.Status.Terminal() && active.ID == rootGoal.ID {
		return true, r.terminalOutcome(active)
	}
	return false, Outcome{}
}

func (r *Reasoner) capabilityResolvable(capability string) bool {
	_, err := r.tools.ResolveCapability(capability, r.agentType)
	return err == nil
}
