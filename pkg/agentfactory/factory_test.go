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

package agentfactory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/identity"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

type echoTool struct{}

func (echoTool) Name() string                                       { return "echo" }
func (echoTool) Version() string                                    { return "1" }
func (echoTool) Description() string                                { return "" }
func (echoTool) Capabilities() []string                             { return []string{"text"} }
func (echoTool) ParameterSchema() map[string]toolregistry.ParamSpec { return nil }
func (echoTool) AllowedCallers() []string                           { return []string{"*"} }
func (echoTool) SideEffects() bool                                  { return false }
func (echoTool) Call(ctx context.Context, params map[string]any) toolregistry.Result {
	return toolregistry.Result{OK: true}
}

func newHarness(t *testing.T) *Factory {
	t.Helper()
	tools := toolregistry.New()
	require.NoError(t, tools.Register(echoTool{}))
	beliefs := belief.NewMemStore(clock.New(), nil)
	mem := memlog.NewInMemoryLog(clock.New())
	return New(identity.NewMemStore(), tools, mem, beliefs, nil)
}

func TestCreateAgentHappyPath(t *testing.T) {
	f := newHarness(t)

	handle, err := f.CreateAgent(context.Background(), Request{
		AgentType: TypeService,
		AgentID:   "svc-1",
		Config:    Config{RequiredTools: []string{"echo"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "svc-1", handle.AgentID)
	assert.Equal(t, StatusReady, handle.Status)
	assert.NotEmpty(t, handle.PublicKey)

	events := f.mem.Query(memlog.Filter{AgentID: "svc-1", Tag: "agent_created"})
	require.Len(t, events, 1)
}

func TestCreateAgentDuplicateIDFails(t *testing.T) {
	f := newHarness(t)

	_, err := f.CreateAgent(context.Background(), Request{AgentType: TypeService, AgentID: "a1"})
	require.NoError(t, err)

	result := f.AsCreateAgentTool(context.Background(), map[string]any{
		"agent_type": "service",
		"agent_id":   "a1",
		"config":     map[string]any{"required_tools": []any{}},
	})
	assert.False(t, result.OK)
	assert.Equal(t, "DuplicateIdentity", result.Error)

	b, ok := f.beliefs.Get("identity.a1.exists")
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Confidence)
}

func TestCreateAgentRollsBackOnMissingTool(t *testing.T) {
	f := newHarness(t)

	_, err := f.CreateAgent(context.Background(), Request{
		AgentType: TypeService,
		AgentID:   "svc-2",
		Config:    Config{RequiredTools: []string{"does-not-exist"}},
	})
	require.Error(t, err)

	ids := f.identities.ListIdentities()
	require.Len(t, ids, 1)
	assert.True(t, ids[0].Deprecated)
	assert.False(t, f.directory.Exists("svc-2"))
}

func TestAsCreateAgentToolMissingParams(t *testing.T) {
	f := newHarness(t)
	result := f.AsCreateAgentTool(context.Background(), map[string]any{})
	assert.False(t, result.OK)
	assert.Equal(t, "parameter_invalid", result.Error)
}
