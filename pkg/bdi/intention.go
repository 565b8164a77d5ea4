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
	"fmt"

	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// formIntention implements step 3: generate a new plan if none is live
// for the active goal, validating every action and replanning up to the
// per-cycle and per-run budgets before giving up.
func (r *Reasoner) formIntention(ctx context.Context, state *cycleState, rootGoal *Goal) error {
	active := state.activeGoal()
	current := state.intentions[active.ID]

	if current != nil && !current.Status.Terminal() {
		return nil
	}
	if current != nil && current.Status == IntentionSucceeded {
		return nil
	}

	state.replanAttemptsThisCycle = 0
	var priorFailures []string
	toolDefs := r.toolDefinitions()

	for {
		if state.replanAttemptsThisCycle >= 2 || state.totalReplanAttempts >= state.maxTotalReplans() {
			active.Status = GoalFailed
			return cogerr.New(cogerr.Planning, cogerr.ReasonPlanningFailed, "replan budget exhausted")
		}

		state.replanAttemptsThisCycle++
		state.totalReplanAttempts++

		relevant := r.beliefs.Query(belief.Query{})
		actions, err := generatePlan(ctx, r.llmProvider, active, relevant, toolDefs, priorFailures, state.placeholders)
		if err != nil {
			if isLLMUnavailable(err) {
				return err
			}
			priorFailures = append(priorFailures, err.Error())
			continue
		}

		if err := r.validatePlan(actions); err != nil {
			priorFailures = append(priorFailures, err.Error())
			continue
		}

		state.intentions[active.ID] = &Intention{GoalID: active.ID, Actions: actions, Status: IntentionPlanned}
		r.beliefs.Supersede("planning.attempts.last", state.replanAttemptsThisCycle, 1.0, "plan accepted", belief.SourceLLMInference)
		return nil
	}
}

func isLLMUnavailable(err error) bool {
	var ce *cogerr.Error
	return asCogerr(err, &ce) && ce.Category == cogerr.Dependency
}

// toolDefinitions advertises the current tool surface to the model,
// translating each resolvable tool's declared ParameterSchema into the
// JSON-Schema-shaped map llm.ToolDefinition.Parameters carries, so the
// model sees each tool's parameters rather than a bare name list. The
// schema a plan response is validated against (see pkg/bdi/plan.go)
// covers only the plan's own shape; per-tool parameters are checked
// separately through the registry's ValidateParams.
func (r *Reasoner) toolDefinitions() []llm.ToolDefinition {
	tools := r.tools.Resolvable(r.agentType)
	defs := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  paramSchema(t.ParameterSchema()),
		})
	}
	return defs
}

// paramSchema builds the JSON-Schema object describing a tool's declared
// parameters: {"type":"object","properties":{...},"required":[...]}.
func paramSchema(params map[string]toolregistry.ParamSpec) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for name, spec := range params {
		prop := map[string]any{"type": jsonSchemaType(spec.Type)}
		if spec.Description != "" {
			prop["description"] = spec.Description
		}
		properties[name] = prop
		if spec.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// jsonSchemaType maps a ParamSpec.Type to its JSON-Schema primitive name.
// ParamSpec's vocabulary already matches JSON-Schema's, so this only
// exists to fail closed (fall back to "string") on an unrecognized spec
// type instead of emitting an invalid schema.
func jsonSchemaType(t string) string {
	switch t {
	case "string", "number", "boolean", "object", "array":
		return t
	default:
		return "string"
	}
}

// validatePlan gates the PLANNED state: every action must resolve to a
// registered tool and pass that tool's parameter schema before the
// Intention may execute.
func (r *Reasoner) validatePlan(actions []PlanAction) error {
	for _, a := range actions {
		tool, err := r.tools.Resolve(a.Type, r.agentType)
		if err != nil {
			return cogerr.Wrap(cogerr.Planning, cogerr.ReasonPlanInvalid, fmt.Sprintf("action %q", a.Type), err)
		}
		if err := toolregistry.ValidateParams(tool, a.Params); err != nil {
			return cogerr.Wrap(cogerr.Planning, cogerr.ReasonPlanInvalid, fmt.Sprintf("action %q params", a.Type), err)
		}
	}
	return nil
}

// executeIntention implements steps 4-5: run actions[cursor], advance
// the cursor on success, run the contingency on failure, and record a
// tool-reliability evidence item either way.
func (r *Reasoner) executeIntention(ctx context.Context, state *cycleState, rootGoal *Goal) (Outcome, bool) {
	active := state.activeGoal()
	intention := state.intentions[active.ID]
	if intention == nil {
		return Outcome{}, false
	}

	intention.Status = IntentionExecuting

	for intention.Cursor < len(intention.Actions) {
		if err := ctx.Err(); err != nil {
			return r.interrupt(ctx, rootGoal), true
		}

		action := intention.Actions[intention.Cursor]
		result, execErr := r.invoke(ctx, action)

		if execErr == nil && result.OK {
			r.recordReliability(action.Type, true, "")
			intention.Cursor++
			continue
		}

		// An invocation that failed only because the context was
		// interrupted is not a tool failure; the cursor stays where it is
		// and no reliability evidence is recorded against the tool.
		if ctx.Err() != nil {
			return r.interrupt(ctx, rootGoal), true
		}

		failureReason := failureString(result, execErr)
		if action.Contingency != nil {
			cResult, cErr := r.invoke(ctx, *action.Contingency)
			if cErr == nil && cResult.OK {
				r.recordReliability(action.Type, false, failureReason)
				r.recordReliability(action.Contingency.Type, true, "")
				intention.Cursor++
				continue
			}
			r.recordReliability(action.Type, false, failureReason)
			intention.Status = IntentionFailed
			active.Status = GoalFailed
			return r.actionFailureOutcome(rootGoal, active, failureReason), active.ID == rootGoal.ID
		}

		r.recordReliability(action.Type, false, failureReason)
		intention.Status = IntentionFailed
		active.Status = GoalFailed
		return r.actionFailureOutcome(rootGoal, active, failureReason), active.ID == rootGoal.ID
	}

	intention.Status = IntentionSucceeded
	active.Status = GoalAchieved
	if active.ID == rootGoal.ID {
		return Outcome{Status: Achieved}, true
	}
	return Outcome{}, false
}

func (r *Reasoner) actionFailureOutcome(rootGoal, active *Goal, reason string) Outcome {
	if active.ID != rootGoal.ID {
		return Outcome{}
	}
	return Outcome{Status: Failed, Reason: reason}
}

func (r *Reasoner) invoke(ctx context.Context, action PlanAction) (toolregistry.Result, error) {
	tool, err := r.tools.Resolve(action.Type, r.agentType)
	if err != nil {
		return toolregistry.Result{}, err
	}
	return r.tools.Invoke(ctx, tool, r.agentID, action.Params)
}

func failureString(result toolregistry.Result, err error) string {
	if err != nil {
		return "tool_failed"
	}
	if result.Error != "" {
		return result.Error
	}
	return "tool_failed"
}

func (r *Reasoner) recordReliability(toolName string, ok bool, reason string) {
	key := fmt.Sprintf("tool.%s.reliability", toolName)
	delta := 0.5
	evidence := "success"
	if !ok {
		delta = 0.1
		evidence = "failure: " + reason
	}
	r.beliefs.Update(key, evidence, delta)

	r.mem.Append(memlog.Event{
		AgentID:     r.agentID,
		ProcessName: "bdi",
		Data:        map[string]any{"tool": toolName, "ok": ok, "reason": reason},
		Tags:        []string{"action"},
	})
}
