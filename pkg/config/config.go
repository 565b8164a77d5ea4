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

// Package config loads the process-level configuration recognized by the
// cognitive core. It never reaches into the embedding
// process's own configuration (databases, HTTP listeners, etc.).
package config

import "time"

// ModelSelectionWeights scores candidate models during the governor's
// model selection step.
type ModelSelectionWeights struct {
	Capability float64 `yaml:"capability" mapstructure:"capability"`
	Success    float64 `yaml:"success" mapstructure:"success"`
	Latency    float64 `yaml:"latency" mapstructure:"latency"`
	Cost       float64 `yaml:"cost" mapstructure:"cost"`
}

// Config is the root of the recognized process configuration.
type Config struct {
	DefaultModel    string `yaml:"default_model" mapstructure:"default_model"`
	DefaultProvider string `yaml:"default_provider" mapstructure:"default_provider"`

	MaxCycles      int `yaml:"max_cycles" mapstructure:"max_cycles"`
	CycleTimeoutMs int `yaml:"cycle_timeout_ms" mapstructure:"cycle_timeout_ms"`
	ToolTimeoutMs  int `yaml:"tool_timeout_ms" mapstructure:"tool_timeout_ms"`

	CooldownBaseMs int `yaml:"cooldown_base_ms" mapstructure:"cooldown_base_ms"`
	CooldownCapMs  int `yaml:"cooldown_cap_ms" mapstructure:"cooldown_cap_ms"`

	ModelSelectionWeights ModelSelectionWeights `yaml:"model_selection_weights" mapstructure:"model_selection_weights"`

	// CriticalComponents are treated as non-mutable by self-repair.
	CriticalComponents []string `yaml:"critical_components" mapstructure:"critical_components"`
}

// SetDefaults fills zero-valued fields with the process defaults.
func (c *Config) SetDefaults() {
	if c.MaxCycles <= 0 {
		c.MaxCycles = 100
	}
	if c.CycleTimeoutMs <= 0 {
		c.CycleTimeoutMs = 30_000
	}
	if c.ToolTimeoutMs <= 0 {
		c.ToolTimeoutMs = 15_000
	}
	if c.CooldownBaseMs <= 0 {
		c.CooldownBaseMs = 500
	}
	if c.CooldownCapMs <= 0 {
		c.CooldownCapMs = 60_000
	}
	w := &c.ModelSelectionWeights
	if w.Capability == 0 && w.Success == 0 && w.Latency == 0 && w.Cost == 0 {
		w.Capability, w.Success, w.Latency, w.Cost = 0.4, 0.3, 0.2, 0.1
	}
}

// CycleTimeout returns CycleTimeoutMs as a time.Duration.
func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.CycleTimeoutMs) * time.Millisecond
}

// ToolTimeout returns ToolTimeoutMs as a time.Duration.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutMs) * time.Millisecond
}

// CooldownTimeout returns CooldownBaseMs as a time.Duration.
func (c *Config) CooldownTimeout() time.Duration {
	return time.Duration(c.CooldownBaseMs) * time.Millisecond
}

// CooldownCap returns CooldownCapMs as a time.Duration.
func (c *Config) CooldownCap() time.Duration {
	return time.Duration(c.CooldownCapMs) * time.Millisecond
}

// IsCritical reports whether name is listed in CriticalComponents, meaning
// a SELF_REPAIR decision must not attempt to mutate it.
func (c *Config) IsCritical(name string) bool {
	for _, n := range c.CriticalComponents {
		if n == name {
			return true
		}
	}
	return false
}
