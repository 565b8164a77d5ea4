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

// Package llm is the LLM handler abstraction: the interface the
// cognitive core programs against, never a provider. No
// concrete backend lives in this module; callers register whatever
// Provider they have (a real API client, or the ScriptedProvider test
// double this package ships) with a Registry.
package llm

import "context"

// Options are the per-call completion hints a provider may honor.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Stop        []string
	Seed        *int64
}

// Message is one turn in a chat-style completion. Media-type and
// tool-call wire concerns belong to a concrete provider, not here.
type Message struct {
	Role    string // "system" | "user" | "assistant" | "tool"
	Content string
}

// ToolDefinition describes a tool the planner offers to the model during
// plan generation, independent of the registry's own Tool type (this
// package must not import the registry).
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON-Schema-shaped
}

// Completion is the provider-agnostic result of a Chat call.
type Completion struct {
	Text string
}

// Provider is the interface every concrete LLM backend must satisfy.
// Complete is the simple prompt/completion case; Chat is what the BDI
// planner uses for plan generation against a message history and tool
// list.
type Provider interface {
	// Name identifies the provider for model-selection tie-breaks and
	// logging; stable across calls.
	Name() string

	// Complete runs a single-shot text completion.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)

	// Chat runs a chat-style completion with optional tool definitions.
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, opts Options) (Completion, error)

	// Ping is a cheap liveness probe the governor's Perceive step uses to
	// assess llm_health without spending a full completion call.
	Ping(ctx context.Context) error
}
