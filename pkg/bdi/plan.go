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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	invopopschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/llm"
)

// rawPlan is the JSON shape the prompt asks the model for. The Provider
// interface is a plain chat completion with no guarantee the backend
// supports structured output, so the model's raw text is decoded,
// validated against a JSON Schema reflected from this type, and only then
// unmarshaled into it; see parsePlan and compiledPlanSchema.
type rawPlan struct {
	Actions []rawAction `json:"actions"`
}

type rawAction struct {
	Type        string         `json:"type"`
	Params      map[string]any `json:"params"`
	Contingency *rawAction     `json:"contingency,omitempty"`
}

// buildPlanPrompt assembles the planning prompt from the goal, a filtered
// view of current beliefs, the available tools (name, description, and
// parameter schema), and any prior failure reasons.
func buildPlanPrompt(goal *Goal, beliefs []belief.Belief, tools []llm.ToolDefinition, priorFailures []string) []llm.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Goal: %s\n", goal.Description)
	sb.WriteString("Available tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
		if len(t.Parameters) > 0 {
			if schema, err := json.Marshal(t.Parameters); err == nil {
				fmt.Fprintf(&sb, "  params schema: %s\n", schema)
			}
		}
	}
	if len(beliefs) > 0 {
		sb.WriteString("Relevant beliefs:\n")
		for _, b := range beliefs {
			fmt.Fprintf(&sb, "- %s = %v (confidence %.2f)\n", b.Key, b.Value, b.Confidence)
		}
	}
	if len(priorFailures) > 0 {
		sb.WriteString("Prior planning failures this cycle:\n")
		for _, f := range priorFailures {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	sb.WriteString(`Respond with strict JSON only: {"actions":[{"type":"<tool_name>","params":{...},"contingency":null}]}`)

	return []llm.Message{
		{Role: "system", Content: "You are a tactical planner. Output only the requested JSON, no prose."},
		{Role: "user", Content: sb.String()},
	}
}

var (
	planSchemaOnce sync.Once
	planSchema     *jsonschema.Schema
	planSchemaErr  error
)

// compiledPlanSchema reflects rawPlan into a JSON Schema document via
// invopop/jsonschema and compiles it once with
// santhosh-tekuri/jsonschema/v6. rawAction.Contingency is
// self-referential, so the reflector is left at its defaults: the
// resulting $ref/$defs pair is resolved by the validator within the one
// compiled resource.
func compiledPlanSchema() (*jsonschema.Schema, error) {
	planSchemaOnce.Do(func() {
		reflected := (&invopopschema.Reflector{}).Reflect(&rawPlan{})
		data, err := json.Marshal(reflected)
		if err != nil {
			planSchemaErr = fmt.Errorf("marshal plan schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			planSchemaErr = fmt.Errorf("unmarshal plan schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("plan.json", doc); err != nil {
			planSchemaErr = fmt.Errorf("add plan schema resource: %w", err)
			return
		}
		compiled, err := c.Compile("plan.json")
		if err != nil {
			planSchemaErr = fmt.Errorf("compile plan schema: %w", err)
			return
		}
		planSchema = compiled
	})
	return planSchema, planSchemaErr
}

// parsePlan decodes text into []PlanAction, failing closed (returning an
// error) on malformed JSON, a schema-validation failure, or an empty plan
// rather than attempting partial recovery. The decoded document is checked
// against compiledPlanSchema before it is ever unmarshaled into the
// concrete rawPlan type, so a plausible-looking but malformed action
// (wrong field types, a missing required field) is rejected here instead
// of reaching the BDI execution loop as a zero-valued action.
func parsePlan(text string) ([]PlanAction, error) {
	text = extractJSONObject(text)

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("plan_invalid: %w", err)
	}

	schema, err := compiledPlanSchema()
	if err != nil {
		return nil, fmt.Errorf("plan_invalid: schema unavailable: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("plan_invalid: schema validation: %w", err)
	}

	var raw rawPlan
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("plan_invalid: %w", err)
	}
	if len(raw.Actions) == 0 {
		return nil, fmt.Errorf("plan_invalid: empty plan")
	}

	actions := make([]PlanAction, len(raw.Actions))
	for i, a := range raw.Actions {
		actions[i] = toPlanAction(a)
	}
	return actions, nil
}

func toPlanAction(a rawAction) PlanAction {
	pa := PlanAction{Type: a.Type, Params: a.Params}
	if a.Contingency != nil {
		c := toPlanAction(*a.Contingency)
		pa.Contingency = &c
	}
	return pa
}

// extractJSONObject trims any leading/trailing prose a model might add
// despite instructions, taking the outermost {...} span.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

var placeholderPattern = regexp.MustCompile(`path/to/([A-Za-z0-9_]+)`)

// resolvePlaceholders substitutes path/to/X-style placeholders in every
// string param against placeholders (keyword -> actual path, derived from
// the goal description). Ambiguous or unresolvable references fail
// planning rather than guess.
func resolvePlaceholders(actions []PlanAction, placeholders map[string]string) ([]PlanAction, error) {
	out := make([]PlanAction, len(actions))
	for i, a := range actions {
		resolved, err := resolveAction(a, placeholders)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func resolveAction(a PlanAction, placeholders map[string]string) (PlanAction, error) {
	params := make(map[string]any, len(a.Params))
	for k, v := range a.Params {
		s, ok := v.(string)
		if !ok {
			params[k] = v
			continue
		}
		resolved, err := resolveString(s, placeholders)
		if err != nil {
			return PlanAction{}, fmt.Errorf("plan_invalid: param %q: %w", k, err)
		}
		params[k] = resolved
	}

	resolved := PlanAction{Type: a.Type, Params: params}
	if a.Contingency != nil {
		c, err := resolveAction(*a.Contingency, placeholders)
		if err != nil {
			return PlanAction{}, err
		}
		resolved.Contingency = &c
	}
	return resolved, nil
}

func resolveString(s string, placeholders map[string]string) (string, error) {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	result := s
	for _, m := range matches {
		keyword := strings.ToLower(m[1])
		actual, ok := placeholders[keyword]
		if !ok {
			return "", fmt.Errorf("ambiguous placeholder %q: no mapping for keyword %q", m[0], keyword)
		}
		result = strings.ReplaceAll(result, m[0], actual)
	}
	return result, nil
}

// generatePlan calls the model and returns a fully resolved, ready-to-
// validate set of actions.
func generatePlan(ctx context.Context, provider llm.Provider, goal *Goal, beliefs []belief.Belief, tools []llm.ToolDefinition, priorFailures []string, placeholders map[string]string) ([]PlanAction, error) {
	messages := buildPlanPrompt(goal, beliefs, tools, priorFailures)
	completion, err := provider.Chat(ctx, messages, tools, llm.Options{})
	if err != nil {
		return nil, cogerr.Wrap(cogerr.Dependency, cogerr.ReasonLLMUnavailable, "chat completion failed", err)
	}

	actions, err := parsePlan(completion.Text)
	if err != nil {
		return nil, cogerr.Wrap(cogerr.Planning, cogerr.ReasonPlanInvalid, "unparseable plan", err)
	}
	resolved, err := resolvePlaceholders(actions, placeholders)
	if err != nil {
		return nil, cogerr.Wrap(cogerr.Planning, cogerr.ReasonPlanInvalid, "placeholder resolution", err)
	}
	return resolved, nil
}
