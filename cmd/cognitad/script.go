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

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quietloop/cognitad/pkg/telemetry"
)

// script is the harness input this binary runs against in the absence of
// a concrete LLM provider or telemetry backend: a fixed sequence of
// completions and, optionally, system_health samples, mirroring
// llm.ScriptedProvider and telemetry.ScriptedHealthSampler one-for-one.
type script struct {
	Responses    []string `yaml:"responses"`
	SystemHealth []string `yaml:"system_health"`
}

func loadScript(path string) (script, error) {
	var s script
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read script file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse script file %s: %w", path, err)
	}
	if len(s.Responses) == 0 {
		return s, fmt.Errorf("script file %s declares no responses", path)
	}
	return s, nil
}

func (s script) healthValues() []telemetry.SystemHealth {
	out := make([]telemetry.SystemHealth, len(s.SystemHealth))
	for i, v := range s.SystemHealth {
		out[i] = telemetry.SystemHealth(v)
	}
	return out
}
