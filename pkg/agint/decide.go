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

import "github.com/quietloop/cognitad/pkg/telemetry"

// decide implements the first-match-wins decision table:
//
//	system_health | llm_health    | last_action    | decision
//	overloaded    | *             | *              | COOLDOWN
//	unhealthy     | *             | *              | SELF_REPAIR
//	healthy       | down/degraded | *              | SELF_REPAIR
//	healthy       | operational   | failure        | RESEARCH
//	healthy       | operational   | success/none   | DELEGATE
func decide(sys telemetry.SystemHealth, llmHealth LLMHealth, last LastAction) Decision {
	switch {
	case sys == telemetry.SystemOverloaded:
		return DecisionCooldown
	case sys == telemetry.SystemUnhealthy:
		return DecisionSelfRepair
	case llmHealth == LLMDown || llmHealth == LLMDegraded:
		return DecisionSelfRepair
	case last == LastActionFailure:
		return DecisionResearch
	default:
		return DecisionDelegate
	}
}
