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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Version() string     { return "1" }
func (echoTool) Description() string { return "echoes text" }
func (echoTool) Capabilities() []string {
	return []string{"text"}
}
func (echoTool) ParameterSchema() map[string]toolregistry.ParamSpec {
	return map[string]toolregistry.ParamSpec{"text": {Type: "string", Required: true}}
}
func (echoTool) AllowedCallers() []string { return []string{"*"} }
func (echoTool) SideEffects() bool        { return false }
func (echoTool) Call(ctx context.Context, params map[string]any) toolregistry.Result {
	return toolregistry.Result{OK: true, Value: params["text"]}
}

func newHarness(t *testing.T, responses ...string) (*Reasoner, *llm.ScriptedProvider, belief.Store) {
	t.Helper()
	tools := toolregistry.New()
	require.NoError(t, tools.Register(echoTool{}))

	beliefs := belief.NewMemStore(clock.New(), nil)
	mem := memlog.NewInMemoryLog(clock.New())
	provider := llm.NewScriptedProvider("test", responses...)

	r := New("a1", "tactical", provider, beliefs, mem, tools, clock.New())
	return r, provider, beliefs
}

func TestHappyPathDelegation(t *testing.T) {
	r, _, beliefs := newHarness(t, `{"actions":[{"type":"echo","params":{"text":"hi"}}]}`)

	goal := &Goal{ID: "g1", Description: "say hi", Priority: 1}
	outcome, err := r.Run(context.Background(), goal, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, Achieved, outcome.Status)

	b, ok := beliefs.Get("tool.echo.reliability")
	require.True(t, ok)
	assert.GreaterOrEqual(t, b.Confidence, 0.5)
}

func TestPlanGenerationPassesToolDefinitionsToProvider(t *testing.T) {
	r, provider, _ := newHarness(t, `{"actions":[{"type":"echo","params":{"text":"hi"}}]}`)

	goal := &Goal{ID: "g1", Description: "say hi", Priority: 1}
	_, err := r.Run(context.Background(), goal, 10, nil)
	require.NoError(t, err)

	tools := provider.LastTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "echoes text", tools[0].Description)
	assert.Equal(t, "object", tools[0].Parameters["type"])

	properties, ok := tools[0].Parameters["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "text")
	assert.Equal(t, []string{"text"}, tools[0].Parameters["required"])
}

func TestPlanningFailureThenReplanSuccess(t *testing.T) {
	r, _, beliefs := newHarness(t,
		`{"actions":[{"type":"bogus","params":{}}]}`,
		`{"actions":[{"type":"echo","params":{"text":"hi"}}]}`,
	)

	goal := &Goal{ID: "g1", Description: "say hi via retry", Priority: 1}
	outcome, err := r.Run(context.Background(), goal, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, Achieved, outcome.Status)

	b, ok := beliefs.Get("planning.attempts.last")
	require.True(t, ok)
	assert.GreaterOrEqual(t, b.Value, 2)
}

func TestLLMOutageSurfacesDependencyError(t *testing.T) {
	r, provider, _ := newHarness(t)
	provider.FailNext(assertErr{})

	goal := &Goal{ID: "g1", Description: "anything", Priority: 1}
	_, err := r.Run(context.Background(), goal, 10, nil)
	require.Error(t, err)

	var ce *cogerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, cogerr.Dependency, ce.Category)
}

func TestDuplicateAgentCreationFailsAsToolFailed(t *testing.T) {
	tools := toolregistry.New()
	createCalls := 0
	require.NoError(t, tools.Register(toolregistry.NewCreateAgentTool(func(ctx context.Context, params map[string]any) toolregistry.Result {
		createCalls++
		return toolregistry.Result{OK: false, Error: "DuplicateIdentity"}
	})))

	beliefs := belief.NewMemStore(clock.New(), nil)
	beliefs.Add("identity.a1.exists", true, 1.0, "already created", belief.SourcePerception)
	mem := memlog.NewInMemoryLog(clock.New())
	provider := llm.NewScriptedProvider("test", `{"actions":[{"type":"CREATE_AGENT","params":{"agent_type":"service","agent_id":"a1","config":{}}}]}`)

	r := New("mastermind", "orchestrator", provider, beliefs, mem, tools, clock.New())
	goal := &Goal{ID: "g1", Description: "create a1", Priority: 1}
	outcome, err := r.Run(context.Background(), goal, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, Failed, outcome.Status)
	assert.Equal(t, "DuplicateIdentity", outcome.Reason)
	assert.Equal(t, 1, createCalls)

	b, ok := beliefs.Get("identity.a1.exists")
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Confidence)
}

type assertErr struct{}

func (assertErr) Error() string { return "llm unavailable" }

func TestPlaceholderResolutionFailsOnAmbiguity(t *testing.T) {
	actions := []PlanAction{{Type: "echo", Params: map[string]any{"text": "path/to/report"}}}
	_, err := resolvePlaceholders(actions, map[string]string{})
	assert.Error(t, err)

	resolved, err := resolvePlaceholders(actions, map[string]string{"report": "/var/data/report.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/var/data/report.txt", resolved[0].Params["text"])
}

func TestSelectActiveGoalTieBreaks(t *testing.T) {
	d1 := clock.Logical(5)
	d2 := clock.Logical(10)
	goals := map[string]*Goal{
		"b": {ID: "b", Priority: 1, Status: GoalPending, Deadline: &d2},
		"a": {ID: "a", Priority: 1, Status: GoalPending, Deadline: &d1},
		"c": {ID: "c", Priority: 2, Status: GoalPending},
	}
	best := selectActiveGoal(goals)
	require.NotNil(t, best)
	assert.Equal(t, "a", best.ID)
}
