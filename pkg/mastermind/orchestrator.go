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

package mastermind

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/agint"
	"github.com/quietloop/cognitad/pkg/bdi"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/config"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/telemetry"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// ErrCampaignInProgress is returned by Submit when the orchestrator
// already has a non-terminal campaign: one active campaign per Mastermind.
var ErrCampaignInProgress = errors.New("mastermind: a campaign is already running")

// ErrCampaignNotFound is returned by Status/Subscribe/Cancel for an
// unknown campaign_id.
var ErrCampaignNotFound = errors.New("mastermind: campaign not found")

// record is the orchestrator's private bookkeeping for one campaign; the
// public Campaign it embeds is what History/CampaignView expose.
type record struct {
	mu           sync.Mutex
	campaign     *Campaign
	lastDecision agint.Decision
	activeGoal   *bdi.Goal
	lastActions  []string
	tickCount    int

	cancel context.CancelFunc
	events chan Event
	done   chan struct{}
}

func (r *record) setStatus(s Status) {
	r.mu.Lock()
	r.campaign.Status = s
	r.mu.Unlock()
}

// Orchestrator is the Mastermind. One instance runs at most one
// non-terminal campaign at a time; construct a fresh instance per logical
// role rather than relying on a package-level singleton.
type Orchestrator struct {
	mu        sync.Mutex
	current   *record
	campaigns map[string]*record

	mem         memlog.Memory
	clock       *clock.Source
	tools       *toolregistry.Registry
	beliefs     belief.Store
	llmRegistry *llm.Registry
	candidates  []llm.Candidate
	sampler     telemetry.HealthSampler
	cfg         *config.Config
	metrics     *telemetry.Metrics
}

// New constructs an Orchestrator wired to the shared belief, memory, and
// tool services and the provider registry/candidate set the governor's
// model selection scores.
func New(
	mem memlog.Memory,
	src *clock.Source,
	tools *toolregistry.Registry,
	beliefs belief.Store,
	llmRegistry *llm.Registry,
	candidates []llm.Candidate,
	sampler telemetry.HealthSampler,
	cfg *config.Config,
	metrics *telemetry.Metrics,
) *Orchestrator {
	return &Orchestrator{
		campaigns:   make(map[string]*record),
		mem:         mem,
		clock:       src,
		tools:       tools,
		beliefs:     beliefs,
		llmRegistry: llmRegistry,
		candidates:  candidates,
		sampler:     sampler,
		cfg:         cfg,
		metrics:     metrics,
	}
}

// Submit accepts directive, persists a new Campaign and root Goal, and
// starts an AGInt loop for it in the background. It returns immediately with the new campaign_id; progress is observed
// through Status or Subscribe.
func (o *Orchestrator) Submit(ctx context.Context, directive string, opts Options) (string, error) {
	o.mu.Lock()
	if o.current != nil && !o.currentTerminal() {
		o.mu.Unlock()
		return "", ErrCampaignInProgress
	}
	o.mu.Unlock()

	if opts.MaxCycles <= 0 {
		opts.MaxCycles = o.cfg.MaxCycles
	}

	campaignID := uuid.NewString()
	rootGoal := &bdi.Goal{ID: uuid.NewString(), Description: directive, Priority: 1, Status: bdi.GoalPending}

	rec := &record{
		campaign: &Campaign{ID: campaignID, Directive: directive, RootGoalID: rootGoal.ID, Status: Pending},
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}

	runCtx, cancel := context.WithCancel(ctx)
	rec.cancel = cancel

	o.mu.Lock()
	o.current = rec
	o.campaigns[campaignID] = rec
	o.mu.Unlock()

	if opts.CancellationToken != nil {
		go func() {
			select {
			case <-opts.CancellationToken:
				cancel()
			case <-rec.done:
			}
		}()
	}

	o.appendHistory(rec, "submitted", "directive received")
	if o.metrics != nil {
		o.metrics.ActiveCampaigns.Inc()
	}

	go o.run(runCtx, rec, rootGoal, opts)

	return campaignID, nil
}

// currentTerminal reports whether o.current (if any) has reached an
// absorbing status; callers must hold o.mu.
func (o *Orchestrator) currentTerminal() bool {
	if o.current == nil {
		return true
	}
	o.current.mu.Lock()
	defer o.current.mu.Unlock()
	return o.current.campaign.Status.Terminal()
}

func (o *Orchestrator) run(ctx context.Context, rec *record, goal *bdi.Goal, opts Options) {
	spanCtx, end := telemetry.StartSpan(ctx, "mastermind.campaign")
	defer end()
	defer close(rec.done)
	defer close(rec.events)
	defer func() {
		if o.metrics != nil {
			o.metrics.ActiveCampaigns.Dec()
		}
	}()

	rec.setStatus(Running)
	o.emit(rec, EventStatus, map[string]any{"status": string(Running)})
	o.emit(rec, EventPhase, map[string]any{"phase": "orient"})
	o.appendHistory(rec, "orient", "campaign running")

	governor := o.buildGovernor(rec.campaign.ID, opts)

	outcome, err := governor.Run(spanCtx, goal, func(tick agint.Tick) { o.onTick(rec, tick) })

	rec.mu.Lock()
	rec.activeGoal = goal
	rec.mu.Unlock()

	if err != nil {
		o.finishWithError(rec, err)
		return
	}
	o.finishWithOutcome(rec, outcome)
}

// buildGovernor constructs the per-campaign governor and the
// reasonerFactory closure that pins a fresh Reasoner (scoped to the
// campaign's own agent_id) to whichever model the governor selects for a
// DELEGATE decision.
func (o *Orchestrator) buildGovernor(campaignID string, opts Options) *agint.Governor {
	reasonerFactory := func(provider llm.Provider) *bdi.Reasoner {
		return bdi.New(campaignID, "tactical", provider, o.beliefs, o.mem, o.tools, o.clock)
	}

	cfg := o.cfg
	if opts.MaxCycles > 0 && opts.MaxCycles != cfg.MaxCycles {
		cpy := *cfg
		cpy.MaxCycles = opts.MaxCycles
		cfg = &cpy
	}

	candidates := o.candidates
	if opts.ModelPreference != "" {
		candidates = preferCandidates(candidates, opts.ModelPreference)
	}

	return agint.New(campaignID, "governor", o.llmRegistry, candidates, o.sampler, o.tools, o.beliefs, cfg, o.metrics, reasonerFactory, nil)
}

// preferCandidates biases the model-selection tie-break toward whichever
// provider/model name matches the caller's preference, without touching
// the capability/success/latency/cost score itself.
func preferCandidates(candidates []llm.Candidate, preference string) []llm.Candidate {
	out := make([]llm.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		if out[i].Provider == preference || out[i].Name == preference {
			out[i].ProviderPreference = -1
		}
	}
	return out
}

func (o *Orchestrator) onTick(rec *record, tick agint.Tick) {
	rec.mu.Lock()
	rec.lastDecision = tick.Decision
	rec.tickCount++
	rec.mu.Unlock()

	o.emit(rec, EventCycle, map[string]any{
		"iteration":     tick.Iteration,
		"decision":      string(tick.Decision),
		"system_health": string(tick.SystemHealth),
		"llm_health":    string(tick.LLMHealth),
	})
	o.appendHistory(rec, "cycle", fmt.Sprintf("iteration=%d decision=%s", tick.Iteration, tick.Decision))

	if tick.Outcome != nil {
		ok := tick.Outcome.Status == bdi.Achieved
		summary := summarizeOutcome(*tick.Outcome)

		rec.mu.Lock()
		rec.lastActions = append(rec.lastActions, summary)
		rec.mu.Unlock()

		o.emit(rec, EventAction, map[string]any{"ok": ok, "reason": tick.Outcome.Reason})
		o.appendHistory(rec, "action", summary)
	}
}

func summarizeOutcome(o bdi.Outcome) string {
	if o.Reason == "" {
		return string(o.Status)
	}
	return fmt.Sprintf("%s: %s", o.Status, o.Reason)
}

func (o *Orchestrator) finishWithError(rec *record, err error) {
	reason := err.Error()
	kind := ""
	var ce *cogerr.Error
	if errors.As(err, &ce) {
		reason = string(ce.Reason)
		kind = string(ce.Category)
	}
	rec.setStatus(Failed)
	o.emit(rec, EventError, map[string]any{"kind": kind, "reason": reason})
	o.appendHistory(rec, "complete", "error: "+reason)
}

func (o *Orchestrator) finishWithOutcome(rec *record, outcome bdi.Outcome) {
	switch outcome.Status {
	case bdi.Achieved:
		rec.setStatus(Completed)
	case bdi.Abandoned:
		rec.setStatus(Abandoned)
	default:
		rec.setStatus(Failed)
	}

	rec.mu.Lock()
	status := rec.campaign.Status
	rec.mu.Unlock()

	o.emit(rec, EventComplete, map[string]any{"status": string(status), "reason": outcome.Reason})
	o.appendHistory(rec, "complete", fmt.Sprintf("%s: %s", status, outcome.Reason))
}

// emit records ev both on the campaign's append-only memory-log history
// (the durable source of truth) and, best-effort, on the live subscribe
// channel. A slow or absent subscriber never blocks the campaign; the
// channel is the narrow interface a control plane layers on top of.
func (o *Orchestrator) emit(rec *record, kind EventKind, payload map[string]any) {
	ts := o.clock.Now()
	o.mem.Append(memlog.Event{
		Timestamp:   ts,
		AgentID:     rec.campaign.ID,
		CampaignID:  rec.campaign.ID,
		ProcessName: "mastermind",
		Data:        map[string]any{"kind": string(kind), "payload": payload},
		Tags:        []string{string(kind)},
	})

	select {
	case rec.events <- Event{Timestamp: ts, Kind: kind, Payload: payload}:
	default:
	}
}

func (o *Orchestrator) appendHistory(rec *record, phase, summary string) {
	rec.mu.Lock()
	rec.campaign.History = append(rec.campaign.History, HistoryRecord{
		Timestamp:      o.clock.Now(),
		Phase:          phase,
		OutcomeSummary: summary,
	})
	rec.mu.Unlock()
}

// Status returns campaignID's current view.
func (o *Orchestrator) Status(campaignID string) (CampaignView, error) {
	rec, ok := o.lookup(campaignID)
	if !ok {
		return CampaignView{}, ErrCampaignNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return CampaignView{
		Status:            rec.campaign.Status,
		CurrentDecision:   rec.lastDecision,
		ActiveGoal:        rec.activeGoal,
		LastActions:       append([]string(nil), rec.lastActions...),
		BeliefSnapshotRef: fmt.Sprintf("%s@%d", campaignID, rec.tickCount),
	}, nil
}

// Subscribe returns campaignID's live event stream. The
// channel closes once the campaign reaches a terminal status. Only one
// reader should drain a given campaign's channel at a time; fan-out to
// multiple observers is a control-plane concern layered on top.
func (o *Orchestrator) Subscribe(campaignID string) (<-chan Event, error) {
	rec, ok := o.lookup(campaignID)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return rec.events, nil
}

// Cancel signals campaignID's AGInt loop to exit at the next safe point:
// end of the current tick's Perceive, or between BDI actions. The
// campaign transitions to ABANDONED with reason "cancelled".
func (o *Orchestrator) Cancel(campaignID string) error {
	rec, ok := o.lookup(campaignID)
	if !ok {
		return ErrCampaignNotFound
	}
	rec.cancel()
	return nil
}

// History returns campaignID's durable append-only history by replaying
// the memory log, independent of whether the in-process record still
// exists.
func (o *Orchestrator) History(campaignID string) []memlog.Event {
	return memlog.NewReplayer(o.mem).CampaignHistory(campaignID)
}

func (o *Orchestrator) lookup(campaignID string) (*record, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.campaigns[campaignID]
	return rec, ok
}
