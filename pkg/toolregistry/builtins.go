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

package toolregistry

import "context"

// The three built-in control actions a plan may reference (CREATE_AGENT,
// UPDATE_BELIEF, NO_OP) are ordinary Tools from the registry's point of
// view. They're defined here as thin adapters over caller-supplied
// functions so this package never imports the identity, belief, or
// agent-factory packages; the wiring layer supplies the closures that
// actually reach them.

// funcTool adapts a plain function to CallableTool.
type funcTool struct {
	name         string
	version      string
	description  string
	capabilities []string
	params       map[string]ParamSpec
	callers      []string
	sideEffects  bool
	fn           func(ctx context.Context, params map[string]any) Result
}

func (f *funcTool) Name() string                          { return f.name }
func (f *funcTool) Version() string                       { return f.version }
func (f *funcTool) Description() string                   { return f.description }
func (f *funcTool) Capabilities() []string                { return f.capabilities }
func (f *funcTool) ParameterSchema() map[string]ParamSpec { return f.params }
func (f *funcTool) AllowedCallers() []string              { return f.callers }
func (f *funcTool) SideEffects() bool                     { return f.sideEffects }
func (f *funcTool) Call(ctx context.Context, params map[string]any) Result {
	return f.fn(ctx, params)
}

// NewCreateAgentTool wraps create, the Agent Factory's creation sequence,
// as the CREATE_AGENT control action. create is expected to return the
// new agent's public handle as Result.Value on success.
func NewCreateAgentTool(create func(ctx context.Context, params map[string]any) Result) CallableTool {
	return &funcTool{
		name:         "CREATE_AGENT",
		version:      "1",
		description:  "Creates a new agent: identity, tool validation, memory seeding.",
		capabilities: []string{"control"},
		params: map[string]ParamSpec{
			"agent_type": {Type: "string", Required: true},
			"agent_id":   {Type: "string", Required: true},
			"config":     {Type: "object", Required: false},
		},
		callers:     []string{"*"},
		sideEffects: true,
		fn:          create,
	}
}

// NewUpdateBeliefTool wraps update, a closure over a belief.Store's
// Add/Update, as the UPDATE_BELIEF control action.
func NewUpdateBeliefTool(update func(ctx context.Context, params map[string]any) Result) CallableTool {
	return &funcTool{
		name:         "UPDATE_BELIEF",
		version:      "1",
		description:  "Writes or reinforces a belief in the belief store.",
		capabilities: []string{"control"},
		params: map[string]ParamSpec{
			"key":        {Type: "string", Required: true},
			"value":      {Type: "object", Required: false},
			"confidence": {Type: "number", Required: true},
			"evidence":   {Type: "string", Required: true},
		},
		callers:     []string{"*"},
		sideEffects: true,
		fn:          update,
	}
}

// NewNoOpTool returns the NO_OP control action: a plan step that always
// succeeds without side effects, used for placeholder or test plans.
func NewNoOpTool() CallableTool {
	return &funcTool{
		name:         "NO_OP",
		version:      "1",
		description:  "Does nothing; always succeeds.",
		capabilities: []string{"control"},
		params:       map[string]ParamSpec{},
		callers:      []string{"*"},
		sideEffects:  false,
		fn: func(ctx context.Context, params map[string]any) Result {
			return Result{OK: true}
		},
	}
}

var _ CallableTool = (*funcTool)(nil)
