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

import "github.com/quietloop/cognitad/pkg/config"

// Candidate is one model the governor can choose to pin for a decision.
type Candidate struct {
	Name               string
	Provider           string
	ProviderPreference int // lower is more preferred
	CapabilityMatch    float64
	RecentSuccessRate  float64
	LatencyMs          float64
	CostPerCall        float64
}

// score computes w_cap·capability_match + w_succ·recent_success_rate +
// w_lat·(1/latency) + w_cost·(1/cost), guarding against division by zero
// for a candidate with no recorded latency or cost yet.
func (c Candidate) score(w config.ModelSelectionWeights) float64 {
	latencyTerm := 0.0
	if c.LatencyMs > 0 {
		latencyTerm = 1 / c.LatencyMs
	}
	costTerm := 0.0
	if c.CostPerCall > 0 {
		costTerm = 1 / c.CostPerCall
	}
	return w.Capability*c.CapabilityMatch +
		w.Success*c.RecentSuccessRate +
		w.Latency*latencyTerm +
		w.Cost*costTerm
}

// SelectModel scores candidates and returns the winner. Ties are broken
// by provider preference (lower wins), then lexicographic name order.
// An empty candidates slice yields the zero Candidate and false.
func SelectModel(candidates []Candidate, weights config.ModelSelectionWeights) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	bestScore := best.score(weights)

	for _, c := range candidates[1:] {
		s := c.score(weights)
		switch {
		case s > bestScore:
			best, bestScore = c, s
		case s == bestScore:
			if c.ProviderPreference < best.ProviderPreference ||
				(c.ProviderPreference == best.ProviderPreference && c.Name < best.Name) {
				best, bestScore = c, s
			}
		}
	}
	return best, true
}
