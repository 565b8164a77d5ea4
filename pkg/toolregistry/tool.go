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

// Package toolregistry is the tool registry: the only path by which
// agent plans reach external effects. Concrete tools (shell runners, web
// fetchers, code summarizers) are supplied by the embedding process; this
// package only defines the Tool contract and the dispatch machinery
// around it.
package toolregistry

import "context"

// ParamSpec describes one declared tool parameter.
type ParamSpec struct {
	Type        string // "string" | "number" | "boolean" | "object" | "array"
	Required    bool
	Description string
}

// Tool is the base contract every registered tool satisfies.
type Tool interface {
	Name() string
	Version() string
	Description() string
	Capabilities() []string
	ParameterSchema() map[string]ParamSpec

	// AllowedCallers returns the agent types permitted to resolve this
	// tool, or {"*"} to allow any caller.
	AllowedCallers() []string

	// SideEffects reports whether invocations mutate state outside the
	// registry's own bookkeeping. Side-effecting tools are serialized per
	// caller by the Registry.
	SideEffects() bool
}

// CallableTool extends Tool with the actual invocation. Invocation must
// honor ctx cancellation: a tool that ignores ctx breaks the contract
// that in-flight invocations are signaled to cancel on campaign
// abandonment.
type CallableTool interface {
	Tool
	Call(ctx context.Context, params map[string]any) Result
}

// Result is the outcome of one tool invocation.
type Result struct {
	OK        bool
	Value     any
	Error     string
	Artifacts map[string]any
}
