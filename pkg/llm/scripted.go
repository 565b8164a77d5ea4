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

package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedProvider is a deterministic test double: each call to Chat (or
// Complete) consumes the next response from a fixed script, so reasoner
// and governor tests can assert exact planning and delegation behavior
// without a real backend. No core package may import a concrete provider; this lives
// here only because the interface it implements does too.
type ScriptedProvider struct {
	mu        sync.Mutex
	name      string
	responses []string
	errs      []error
	calls     int
	unhealthy bool
	lastTools []ToolDefinition
}

// NewScriptedProvider returns a provider that yields responses in order,
// repeating the final one once exhausted.
func NewScriptedProvider(name string, responses ...string) *ScriptedProvider {
	return &ScriptedProvider{name: name, responses: responses}
}

// SetUnhealthy makes Ping fail, simulating a down/degraded provider for
// the governor's llm_health sampling.
func (p *ScriptedProvider) SetUnhealthy(unhealthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unhealthy = unhealthy
}

// FailNext queues an error to be returned instead of the next scripted
// response.
func (p *ScriptedProvider) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

func (p *ScriptedProvider) Name() string { return p.name }

func (p *ScriptedProvider) Complete(ctx context.Context, _ string, _ Options) (string, error) {
	return p.next()
}

func (p *ScriptedProvider) Chat(ctx context.Context, _ []Message, tools []ToolDefinition, _ Options) (Completion, error) {
	p.mu.Lock()
	p.lastTools = tools
	p.mu.Unlock()

	text, err := p.next()
	if err != nil {
		return Completion{}, err
	}
	return Completion{Text: text}, nil
}

// LastTools returns the tool definitions passed to the most recent Chat
// call, so plan-generation tests can assert the tool surface actually
// reached the provider rather than a silently discarded nil.
func (p *ScriptedProvider) LastTools() []ToolDefinition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTools
}

func (p *ScriptedProvider) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unhealthy {
		return fmt.Errorf("llm: provider %s is unhealthy", p.name)
	}
	return nil
}

func (p *ScriptedProvider) next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return "", err
	}

	if len(p.responses) == 0 {
		return "", fmt.Errorf("llm: scripted provider %s has no responses configured", p.name)
	}

	idx := p.calls
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	p.calls++
	return p.responses[idx], nil
}

var _ Provider = (*ScriptedProvider)(nil)
