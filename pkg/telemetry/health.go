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

package telemetry

import (
	"runtime"
	"sync"
)

// SystemHealth is one of the three states the governor's Perceive phase
// samples each tick.
type SystemHealth string

const (
	SystemHealthy    SystemHealth = "healthy"
	SystemOverloaded SystemHealth = "overloaded"
	SystemUnhealthy  SystemHealth = "unhealthy"
)

// HealthSampler is what the governor's Perceive phase reads system_health
// from.
// Kept as a narrow interface (rather than a concrete MemStats reader) so
// tests can script exact health sequences without touching runtime state.
type HealthSampler interface {
	Sample() SystemHealth
}

// RuntimeHealthSampler is the default HealthSampler: it watches Go heap
// usage against a configured soft ceiling and a rolling count of recent
// tool/LLM failures recorded via RecordResult. Neither signal is meant to
// be precise; both are proxies the governor can poll every tick without
// itself depending on a metrics backend.
type RuntimeHealthSampler struct {
	softCeilingBytes uint64

	mu           sync.Mutex
	window       []bool // true = ok, oldest first
	windowLimit  int
	overloadFrac float64 // error fraction at/above which system is "overloaded"
	unhealthFrac float64 // error fraction at/above which system is "unhealthy"
}

// NewRuntimeHealthSampler returns a sampler that reports SystemOverloaded
// once heap usage passes softCeilingBytes, and otherwise derives health
// from the error rate of the last windowLimit RecordResult calls.
func NewRuntimeHealthSampler(softCeilingBytes uint64, windowLimit int) *RuntimeHealthSampler {
	if windowLimit <= 0 {
		windowLimit = 20
	}
	return &RuntimeHealthSampler{
		softCeilingBytes: softCeilingBytes,
		windowLimit:      windowLimit,
		overloadFrac:     0.5,
		unhealthFrac:     0.2,
	}
}

// RecordResult folds one action's outcome into the rolling error-rate
// window. Call this after every DELEGATE/RESEARCH/SELF_REPAIR act.
func (s *RuntimeHealthSampler) RecordResult(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = append(s.window, ok)
	if len(s.window) > s.windowLimit {
		s.window = s.window[len(s.window)-s.windowLimit:]
	}
}

func (s *RuntimeHealthSampler) errorFraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.window) == 0 {
		return 0
	}
	failures := 0
	for _, ok := range s.window {
		if !ok {
			failures++
		}
	}
	return float64(failures) / float64(len(s.window))
}

func (s *RuntimeHealthSampler) Sample() SystemHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	if s.softCeilingBytes > 0 && mem.Alloc >= s.softCeilingBytes {
		return SystemOverloaded
	}

	switch frac := s.errorFraction(); {
	case frac >= s.overloadFrac:
		return SystemOverloaded
	case frac >= s.unhealthFrac:
		return SystemUnhealthy
	default:
		return SystemHealthy
	}
}

var _ HealthSampler = (*RuntimeHealthSampler)(nil)

// ScriptedHealthSampler is a deterministic test double mirroring
// llm.ScriptedProvider: each Sample call consumes the next scripted value,
// repeating the last one once exhausted.
type ScriptedHealthSampler struct {
	mu     sync.Mutex
	values []SystemHealth
	calls  int
}

// NewScriptedHealthSampler returns a sampler yielding values in order.
func NewScriptedHealthSampler(values ...SystemHealth) *ScriptedHealthSampler {
	return &ScriptedHealthSampler{values: values}
}

func (s *ScriptedHealthSampler) Sample() SystemHealth {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return SystemHealthy
	}
	idx := s.calls
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	s.calls++
	return s.values[idx]
}

var _ HealthSampler = (*ScriptedHealthSampler)(nil)
