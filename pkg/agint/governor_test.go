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

package agint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/bdi"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/config"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/telemetry"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		DefaultProvider: "primary",
		CooldownBaseMs:  1,
		CooldownCapMs:   5,
	}
	cfg.SetDefaults()
	cfg.MaxCycles = 5
	return cfg
}

func newGovernor(t *testing.T, sampler telemetry.HealthSampler, providers map[string]*llm.ScriptedProvider, responses ...string) (*Governor, belief.Store) {
	t.Helper()
	tools := toolregistry.New()
	require.NoError(t, tools.Register(toolregistry.NewNoOpTool()))

	beliefs := belief.NewMemStore(clock.New(), nil)
	mem := memlog.NewInMemoryLog(clock.New())

	reg := llm.NewRegistry()
	candidates := make([]llm.Candidate, 0, len(providers))
	for name, p := range providers {
		require.NoError(t, reg.RegisterProvider(name, p))
		candidates = append(candidates, llm.Candidate{Name: name, Provider: name, CapabilityMatch: 1})
	}

	factory := func(p llm.Provider) *bdi.Reasoner {
		return bdi.New("a1", "tactical", p, beliefs, mem, tools, clock.New())
	}

	g := New("a1", "tactical", reg, candidates, sampler, tools, beliefs, testConfig(), nil, factory, nil)
	return g, beliefs
}

func TestSelfRepairRecoversThenDelegates(t *testing.T) {
	sampler := telemetry.NewScriptedHealthSampler(
		telemetry.SystemUnhealthy, telemetry.SystemUnhealthy, telemetry.SystemUnhealthy, telemetry.SystemHealthy,
	)
	provider := llm.NewScriptedProvider("primary", `{"actions":[{"type":"NO_OP","params":{}}]}`)
	g, _ := newGovernor(t, sampler, map[string]*llm.ScriptedProvider{"primary": provider})

	var decisions []Decision
	goal := &bdi.Goal{ID: "g1", Description: "finish", Priority: 1}
	outcome, err := g.Run(context.Background(), goal, func(tick Tick) {
		decisions = append(decisions, tick.Decision)
	})

	require.NoError(t, err)
	assert.Equal(t, bdi.Achieved, outcome.Status)
	assert.Equal(t, []Decision{DecisionSelfRepair, DecisionSelfRepair, DecisionSelfRepair, DecisionDelegate}, decisions)
}

func TestSelfRepairExhaustionIsUnrecoverable(t *testing.T) {
	sampler := telemetry.NewScriptedHealthSampler(telemetry.SystemHealthy)
	provider := llm.NewScriptedProvider("primary")
	provider.SetUnhealthy(true)
	g, _ := newGovernor(t, sampler, map[string]*llm.ScriptedProvider{"primary": provider})

	goal := &bdi.Goal{ID: "g1", Description: "finish", Priority: 1}
	_, err := g.Run(context.Background(), goal, func(Tick) {})

	require.Error(t, err)
	var ce *cogerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, cogerr.Unrecoverable, ce.Category)
	assert.Equal(t, cogerr.ReasonMaxSelfRepairExceeded, ce.Reason)
}

func TestCooldownBacksOffThenDelegates(t *testing.T) {
	sampler := telemetry.NewScriptedHealthSampler(
		telemetry.SystemOverloaded, telemetry.SystemOverloaded, telemetry.SystemHealthy,
	)
	provider := llm.NewScriptedProvider("primary", `{"actions":[{"type":"NO_OP","params":{}}]}`)
	g, _ := newGovernor(t, sampler, map[string]*llm.ScriptedProvider{"primary": provider})

	var ticks []Tick
	start := time.Now()
	goal := &bdi.Goal{ID: "g1", Description: "finish", Priority: 1}
	outcome, err := g.Run(context.Background(), goal, func(tick Tick) {
		ticks = append(ticks, tick)
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, bdi.Achieved, outcome.Status)
	require.Len(t, ticks, 3)
	assert.Equal(t, DecisionCooldown, ticks[0].Decision)
	assert.Equal(t, DecisionCooldown, ticks[1].Decision)
	assert.Equal(t, DecisionDelegate, ticks[2].Decision)
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)
}

func TestSelfRepairSwitchesToHealthyProvider(t *testing.T) {
	sampler := telemetry.NewScriptedHealthSampler(telemetry.SystemHealthy)
	down := llm.NewScriptedProvider("primary")
	down.SetUnhealthy(true)
	up := llm.NewScriptedProvider("backup", `{"actions":[{"type":"NO_OP","params":{}}]}`)

	g, _ := newGovernor(t, sampler, map[string]*llm.ScriptedProvider{"primary": down, "backup": up})

	var decisions []Decision
	goal := &bdi.Goal{ID: "g1", Description: "finish", Priority: 1}
	outcome, err := g.Run(context.Background(), goal, func(tick Tick) {
		decisions = append(decisions, tick.Decision)
	})

	require.NoError(t, err)
	assert.Equal(t, bdi.Achieved, outcome.Status)
	assert.Equal(t, []Decision{DecisionSelfRepair, DecisionDelegate}, decisions)
}
