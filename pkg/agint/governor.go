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
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quietloop/cognitad/pkg/bdi"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/config"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/telemetry"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// Governor is the AGInt instance for one campaign. It owns the P-O-D-A
// loop; a fresh bdi.Reasoner is built (via reasonerFactory) for each
// DELEGATE tick, pinned to whichever provider model selection chose for
// that whole decision, since Reasoner itself holds no cross-tick state of
// its own. The campaign's actual memory lives in beliefs/mem.
type Governor struct {
	agentID   string
	agentType string

	llmRegistry *llm.Registry
	candidates  []llm.Candidate

	healthSampler telemetry.HealthSampler
	tools         *toolregistry.Registry
	beliefs       belief.Store
	cfg           *config.Config
	metrics       *telemetry.Metrics

	reasonerFactory func(llm.Provider) *bdi.Reasoner
	placeholders    map[string]string

	pinnedProvider                string
	forced                        Decision
	consecutiveSelfRepairFailures int
}

// New constructs a Governor. candidates is the model candidate set model
// selection scores each DELEGATE tick; the embedding process is expected
// to keep latency/cost/success-rate fields current (this core owns the
// scoring math, not the telemetry feeding it).
func New(
	agentID, agentType string,
	llmRegistry *llm.Registry,
	candidates []llm.Candidate,
	sampler telemetry.HealthSampler,
	tools *toolregistry.Registry,
	beliefs belief.Store,
	cfg *config.Config,
	metrics *telemetry.Metrics,
	reasonerFactory func(llm.Provider) *bdi.Reasoner,
	placeholders map[string]string,
) *Governor {
	return &Governor{
		agentID:         agentID,
		agentType:       agentType,
		llmRegistry:     llmRegistry,
		candidates:      candidates,
		healthSampler:   sampler,
		tools:           tools,
		beliefs:         beliefs,
		cfg:             cfg,
		metrics:         metrics,
		reasonerFactory: reasonerFactory,
		placeholders:    placeholders,
		pinnedProvider:  cfg.DefaultProvider,
	}
}

// Run executes the P-O-D-A loop for campaignGoal until it reaches a
// terminal bdi.Outcome, an UNRECOVERABLE self-repair exhaustion, or ctx
// is cancelled. onTick is called once per completed iteration, after the
// Act phase, so a caller like the Mastermind can record progress without
// the governor depending on its owner.
func (g *Governor) Run(ctx context.Context, campaignGoal *bdi.Goal, onTick func(Tick)) (bdi.Outcome, error) {
	last := LastActionNone
	cb := newCooldown(g.cfg.CooldownTimeout(), g.cfg.CooldownCap())

	for iteration := 0; ; iteration++ {
		if err := ctx.Err(); err != nil {
			campaignGoal.Status = bdi.GoalAbandoned
			return bdi.Outcome{Status: bdi.Abandoned, Reason: "cancelled"}, nil
		}

		tickCtx, end := telemetry.StartSpan(ctx, "agint.tick")

		sys := g.healthSampler.Sample()
		llmHealth := g.probeLLMHealth(tickCtx)

		if err := ctx.Err(); err != nil {
			end()
			campaignGoal.Status = bdi.GoalAbandoned
			return bdi.Outcome{Status: bdi.Abandoned, Reason: "cancelled"}, nil
		}

		decision := g.forced
		g.forced = ""
		if decision == "" {
			decision = decide(sys, llmHealth, last)
		}
		g.recordDecision(decision, sys)

		tick := Tick{Iteration: iteration, SystemHealth: sys, LLMHealth: llmHealth, Decision: decision}

		switch decision {
		case DecisionCooldown:
			d := cb.next()
			select {
			case <-time.After(d):
			case <-tickCtx.Done():
				end()
				campaignGoal.Status = bdi.GoalAbandoned
				return bdi.Outcome{Status: bdi.Abandoned, Reason: "cancelled"}, nil
			}

		case DecisionSelfRepair:
			cb.reset()
			if g.selfRepair(tickCtx) {
				last = LastActionSuccess
			} else {
				last = LastActionFailure
				g.consecutiveSelfRepairFailures++
				if g.consecutiveSelfRepairFailures >= 3 {
					end()
					return bdi.Outcome{}, cogerr.New(cogerr.Unrecoverable, cogerr.ReasonMaxSelfRepairExceeded, "self-repair failed on 3 consecutive ticks")
				}
			}
			if last == LastActionSuccess {
				g.consecutiveSelfRepairFailures = 0
			}

		case DecisionResearch:
			cb.reset()
			if g.research(tickCtx, campaignGoal) {
				last = LastActionSuccess
			} else {
				last = LastActionFailure
			}

		case DecisionDelegate:
			cb.reset()
			outcome, err := g.delegate(tickCtx, campaignGoal)
			if err != nil {
				var ce *cogerr.Error
				if errors.As(err, &ce) {
					switch ce.Category {
					case cogerr.Dependency:
						g.forced = DecisionSelfRepair
						last = LastActionFailure
					case cogerr.Resource:
						g.forced = DecisionCooldown
						last = LastActionFailure
					default:
						end()
						return bdi.Outcome{}, err
					}
				} else {
					end()
					return bdi.Outcome{}, err
				}
			} else {
				tick.Outcome = &outcome
				end()
				onTick(tick)
				return outcome, nil
			}
		}

		end()
		onTick(tick)
	}
}

func (g *Governor) recordDecision(d Decision, sys telemetry.SystemHealth) {
	if g.metrics == nil {
		return
	}
	g.metrics.DecisionsTotal.WithLabelValues(string(d)).Inc()
	g.metrics.SystemHealthGauge.WithLabelValues(string(sys)).Set(1)
	if d == DecisionSelfRepair {
		g.metrics.SelfRepairTotal.Inc()
	}
}

// probeLLMHealth pings the currently pinned provider (or the configured
// default if none has been pinned yet).
func (g *Governor) probeLLMHealth(ctx context.Context) LLMHealth {
	name := g.pinnedProvider
	if name == "" {
		name = g.cfg.DefaultProvider
	}
	provider, err := g.llmRegistry.GetProvider(name)
	if err != nil {
		return LLMDown
	}
	if err := provider.Ping(ctx); err != nil {
		return LLMDown
	}
	return LLMOperational
}

// selfRepair attempts to restore provider liveness: first re-probes the
// pinned provider, then tries every other registered provider in turn,
// pinning the first that answers. There is no tool-source cache to clear
// and the registry's Register is caller-driven, not something the
// governor can usefully retry on its own, so provider recovery is the one
// repair action this package implements directly.
func (g *Governor) selfRepair(ctx context.Context) bool {
	current := g.pinnedProvider
	if current != "" {
		if p, err := g.llmRegistry.GetProvider(current); err == nil {
			if p.Ping(ctx) == nil {
				return true
			}
		}
	}
	for _, name := range g.llmRegistry.ProviderNames() {
		if name == current {
			continue
		}
		p, err := g.llmRegistry.GetProvider(name)
		if err != nil {
			continue
		}
		if p.Ping(ctx) == nil {
			g.pinnedProvider = name
			return true
		}
	}
	return false
}

// research fans every capability-tagged "research" tool out concurrently
// to enrich beliefs without touching the active goal. The fan-out is
// bounded by the configured tool timeout so
// one slow source can't stall the tick indefinitely; a tick succeeds if
// at least one source returns a usable result.
func (g *Governor) research(ctx context.Context, campaignGoal *bdi.Goal) bool {
	tools := g.tools.ResolveAllCapability("research", g.agentType)
	if len(tools) == 0 {
		return false
	}

	tickCtx, cancel := context.WithTimeout(ctx, g.cfg.ToolTimeout())
	defer cancel()

	grp, grpCtx := errgroup.WithContext(tickCtx)
	var (
		mu    sync.Mutex
		found bool
	)
	for _, tool := range tools {
		tool := tool
		grp.Go(func() error {
			result, err := g.tools.Invoke(grpCtx, tool, g.agentID, map[string]any{"query": campaignGoal.Description})
			if err != nil || !result.OK {
				return nil
			}
			g.beliefs.Add(fmt.Sprintf("research.%s", tool.Name()), result.Value, 0.6, "research tool output", belief.SourceToolResult)
			mu.Lock()
			found = true
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()
	return found
}

// delegate pins a model for this decision, builds a fresh Reasoner bound
// to it, and runs the campaign goal to completion under a cycle-level
// timeout.
func (g *Governor) delegate(ctx context.Context, campaignGoal *bdi.Goal) (bdi.Outcome, error) {
	providerName := g.pinnedProvider
	if cand, ok := llm.SelectModel(g.candidates, g.cfg.ModelSelectionWeights); ok {
		providerName = cand.Provider
	}

	provider, err := g.llmRegistry.GetProvider(providerName)
	if err != nil {
		return bdi.Outcome{}, cogerr.Wrap(cogerr.Dependency, cogerr.ReasonLLMUnavailable, "no provider available for pinned model", err)
	}
	g.pinnedProvider = providerName

	tickCtx, cancel := context.WithTimeout(ctx, g.cfg.CycleTimeout())
	defer cancel()

	reasoner := g.reasonerFactory(provider)
	outcome, err := reasoner.Run(tickCtx, campaignGoal, g.cfg.MaxCycles, g.placeholders)
	if err == nil && outcome.Reason == string(cogerr.ReasonTickTimeout) {
		g.beliefs.Update("agint.tick.outcome", string(cogerr.ReasonTickTimeout), 0.5)
	}
	return outcome, err
}
