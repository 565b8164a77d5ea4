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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quietloop/cognitad/pkg/telemetry"
)

func TestDecideFirstMatchWins(t *testing.T) {
	cases := []struct {
		name string
		sys  telemetry.SystemHealth
		llm  LLMHealth
		last LastAction
		want Decision
	}{
		{"overloaded beats everything", telemetry.SystemOverloaded, LLMDown, LastActionFailure, DecisionCooldown},
		{"unhealthy beats llm/last", telemetry.SystemUnhealthy, LLMOperational, LastActionSuccess, DecisionSelfRepair},
		{"llm down triggers repair", telemetry.SystemHealthy, LLMDown, LastActionSuccess, DecisionSelfRepair},
		{"llm degraded triggers repair", telemetry.SystemHealthy, LLMDegraded, LastActionNone, DecisionSelfRepair},
		{"failure triggers research", telemetry.SystemHealthy, LLMOperational, LastActionFailure, DecisionResearch},
		{"success delegates", telemetry.SystemHealthy, LLMOperational, LastActionSuccess, DecisionDelegate},
		{"none delegates", telemetry.SystemHealthy, LLMOperational, LastActionNone, DecisionDelegate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decide(tc.sys, tc.llm, tc.last))
		})
	}
}

func TestCooldownBackoffGrowsThenCaps(t *testing.T) {
	cb := newCooldown(1, 8)
	got := []int64{}
	for i := 0; i < 5; i++ {
		got = append(got, int64(cb.next()))
	}
	assert.Equal(t, []int64{1, 2, 4, 8, 8}, got)
}

func TestCooldownResetReturnsToBase(t *testing.T) {
	cb := newCooldown(1, 100)
	cb.next()
	cb.next()
	cb.reset()
	assert.Equal(t, int64(1), int64(cb.next()))
}
