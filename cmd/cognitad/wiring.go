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
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/agentfactory"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/config"
	"github.com/quietloop/cognitad/pkg/config/provider"
	"github.com/quietloop/cognitad/pkg/identity"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/mastermind"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/telemetry"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// core bundles every component the CLI's submit/status/watch/replay
// subcommands need, one fresh instance per process invocation. There is
// no persistent storage format, so each run starts from a clean
// identity/belief/memory state.
type core struct {
	cfg          *config.Config
	orchestrator *mastermind.Orchestrator
	identities   identity.Store
	beliefs      belief.Store
	mem          memlog.Memory
}

func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path == "" {
		cfg.SetDefaults()
		return cfg, nil
	}

	src, err := provider.NewFileSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	loader := config.NewLoader(src, nil)
	return loader.Load(context.Background())
}

// buildCore wires the whole stack together: identities and beliefs feed
// the tool registry's CREATE_AGENT/UPDATE_BELIEF control actions, which
// in turn feed a single Mastermind instance.
func buildCore(configPath, scriptPath string) (*core, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	s, err := loadScript(scriptPath)
	if err != nil {
		return nil, err
	}

	src := clock.New()
	identities := identity.NewMemStore()
	beliefs := belief.NewMemStore(src, nil)
	mem := memlog.NewInMemoryLog(src)
	tools := toolregistry.New()

	if err := tools.Register(toolregistry.NewNoOpTool()); err != nil {
		return nil, err
	}

	factory := agentfactory.New(identities, tools, mem, beliefs, nil)
	if err := tools.Register(toolregistry.NewCreateAgentTool(factory.AsCreateAgentTool)); err != nil {
		return nil, err
	}
	if err := tools.Register(toolregistry.NewUpdateBeliefTool(updateBeliefTool(beliefs))); err != nil {
		return nil, err
	}
	if err := tools.Register(researchTool{}); err != nil {
		return nil, err
	}

	scripted := llm.NewScriptedProvider("scripted", s.Responses...)
	registry := llm.NewRegistry()
	if err := registry.RegisterProvider(scripted.Name(), scripted); err != nil {
		return nil, err
	}
	cfg.DefaultProvider = scripted.Name()

	candidates := []llm.Candidate{{Name: scripted.Name(), Provider: scripted.Name(), CapabilityMatch: 1, RecentSuccessRate: 1}}

	var sampler telemetry.HealthSampler
	if values := s.healthValues(); len(values) > 0 {
		sampler = telemetry.NewScriptedHealthSampler(values...)
	} else {
		sampler = telemetry.NewRuntimeHealthSampler(0, 20)
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	orch := mastermind.New(mem, src, tools, beliefs, registry, candidates, sampler, cfg, metrics)

	return &core{cfg: cfg, orchestrator: orch, identities: identities, beliefs: beliefs, mem: mem}, nil
}

// updateBeliefTool adapts beliefs to the UPDATE_BELIEF control action's
// closure signature: writes a fresh belief if key is new, otherwise
// reinforces the existing one.
func updateBeliefTool(beliefs belief.Store) func(ctx context.Context, params map[string]any) toolregistry.Result {
	return func(ctx context.Context, params map[string]any) toolregistry.Result {
		key, _ := params["key"].(string)
		evidence, _ := params["evidence"].(string)
		confidence, _ := params["confidence"].(float64)
		if key == "" || evidence == "" {
			return toolregistry.Result{OK: false, Error: "parameter_invalid"}
		}

		if _, ok := beliefs.Get(key); ok {
			return toolregistry.Result{OK: true, Value: beliefs.Update(key, evidence, confidence)}
		}
		return toolregistry.Result{OK: true, Value: beliefs.Add(key, params["value"], confidence, evidence, belief.SourceLLMInference)}
	}
}

// researchTool is a minimal built-in satisfying the governor's RESEARCH
// capability lookup. It has no external knowledge source of its own, so
// it only echoes the query back as a low-confidence belief, enough to
// exercise the decision path end to end.
type researchTool struct{}

func (researchTool) Name() string        { return "note_query" }
func (researchTool) Version() string     { return "1" }
func (researchTool) Description() string { return "Records the current goal description as a research note." }
func (researchTool) Capabilities() []string {
	return []string{"research"}
}
func (researchTool) ParameterSchema() map[string]toolregistry.ParamSpec {
	return map[string]toolregistry.ParamSpec{"query": {Type: "string", Required: true}}
}
func (researchTool) AllowedCallers() []string { return []string{"*"} }
func (researchTool) SideEffects() bool        { return false }
func (researchTool) Call(ctx context.Context, params map[string]any) toolregistry.Result {
	query, _ := params["query"].(string)
	return toolregistry.Result{OK: true, Value: fmt.Sprintf("noted: %s", query)}
}

var _ toolregistry.CallableTool = researchTool{}
