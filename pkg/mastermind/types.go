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

// Package mastermind is the strategic orchestrator: it accepts an
// external directive, persists the resulting Campaign as append-only
// history through the memory log, and owns a single AGInt instance per
// campaign whose progress it observes through a narrow callback rather
// than holding a pointer back from the governor or reasoner.
package mastermind

import (
	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/agint"
	"github.com/quietloop/cognitad/pkg/bdi"
)

// Status is the campaign lifecycle state; Abandoned covers the
// cancellation path.
type Status string

const (
	Pending   Status = "PENDING"
	Running   Status = "RUNNING"
	Completed Status = "COMPLETED"
	Failed    Status = "FAILED"
	Abandoned Status = "ABANDONED"
)

// Terminal reports whether s is absorbing.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Failed, Abandoned:
		return true
	default:
		return false
	}
}

// HistoryRecord is one append-only entry in a Campaign's history.
type HistoryRecord struct {
	Timestamp      clock.Logical
	Phase          string
	OutcomeSummary string
}

// Campaign is the top-level unit of work the orchestrator owns, tied to
// exactly one root goal.
type Campaign struct {
	ID         string
	Directive  string
	RootGoalID string
	History    []HistoryRecord
	Status     Status
}

// EventKind enumerates the event stream's kinds; a frontend can
// reconstruct campaign progress from the stream alone.
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventPhase    EventKind = "phase"
	EventCycle    EventKind = "cycle"
	EventAction   EventKind = "action"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// Event is one entry on a campaign's subscribe stream.
type Event struct {
	Timestamp clock.Logical
	Kind      EventKind
	Payload   map[string]any
}

// Options carries the per-submit overrides.
// CancellationToken, if non-nil, is an alternative to calling Cancel:
// closing it has the same effect as Cancel(campaignID).
type Options struct {
	MaxCycles         int
	ModelPreference   string
	CancellationToken <-chan struct{}
}

// CampaignView is the read model Status returns.
type CampaignView struct {
	Status            Status
	CurrentDecision   agint.Decision
	ActiveGoal        *bdi.Goal
	LastActions       []string
	BeliefSnapshotRef string
}
