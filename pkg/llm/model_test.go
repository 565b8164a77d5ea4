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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/pkg/config"
)

func defaultWeights() config.ModelSelectionWeights {
	return config.ModelSelectionWeights{Capability: 0.4, Success: 0.3, Latency: 0.2, Cost: 0.1}
}

func TestSelectModelPicksHighestScore(t *testing.T) {
	candidates := []Candidate{
		{Name: "weak", CapabilityMatch: 0.2, RecentSuccessRate: 0.2, LatencyMs: 500, CostPerCall: 1},
		{Name: "strong", CapabilityMatch: 0.9, RecentSuccessRate: 0.9, LatencyMs: 200, CostPerCall: 1},
	}
	best, ok := SelectModel(candidates, defaultWeights())
	require.True(t, ok)
	assert.Equal(t, "strong", best.Name)
}

func TestSelectModelTieBreaksOnProviderThenName(t *testing.T) {
	candidates := []Candidate{
		{Name: "zeta", Provider: "p2", ProviderPreference: 1},
		{Name: "alpha", Provider: "p1", ProviderPreference: 0},
	}
	best, ok := SelectModel(candidates, defaultWeights())
	require.True(t, ok)
	assert.Equal(t, "alpha", best.Name)

	candidates = []Candidate{
		{Name: "zeta", ProviderPreference: 0},
		{Name: "alpha", ProviderPreference: 0},
	}
	best, ok = SelectModel(candidates, defaultWeights())
	require.True(t, ok)
	assert.Equal(t, "alpha", best.Name)
}

func TestSelectModelEmpty(t *testing.T) {
	_, ok := SelectModel(nil, defaultWeights())
	assert.False(t, ok)
}

func TestScriptedProviderChatSequencesResponses(t *testing.T) {
	p := NewScriptedProvider("test", "first", "second")

	c1, err := p.Chat(nil, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "first", c1.Text)

	c2, err := p.Chat(nil, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "second", c2.Text)

	c3, err := p.Chat(nil, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "second", c3.Text)
}

func TestScriptedProviderPingReflectsHealth(t *testing.T) {
	p := NewScriptedProvider("test", "ok")
	assert.NoError(t, p.Ping(nil))

	p.SetUnhealthy(true)
	assert.Error(t, p.Ping(nil))
}
