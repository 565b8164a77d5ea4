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

// Package memlog is the memory interface: an append-only structured
// event log the core only ever writes through, plus the recall and
// snapshot operations agents and the Mastermind use to reconstruct state
// after a restart. The persistence format itself belongs to the embedding
// process; this package only fixes the shape.
package memlog

import "github.com/quietloop/cognitad/internal/clock"

// Event is one append-only log entry.
type Event struct {
	Timestamp   clock.Logical
	AgentID     string
	ProcessName string
	Data        map[string]any
	Tags        []string
	ParentID    string

	// CampaignID scopes the event to a Mastermind campaign's append-only
	// history; empty for agent-local events not tied to a campaign.
	CampaignID string
}

// Filter narrows Query results. A zero-value field is not applied.
type Filter struct {
	AgentID    string
	CampaignID string
	Tag        string
	Since      clock.Logical
}

// Memory is the event-log contract. Implementations must make Append safe for
// concurrent callers and must never reorder events relative to the
// Timestamp each carries.
type Memory interface {
	// Append writes event to the log, assigning it the next logical
	// timestamp if ev.Timestamp is zero.
	Append(ev Event) Event

	// Query returns events matching every non-zero field of f, in
	// ascending timestamp order.
	Query(f Filter) []Event

	// Snapshot returns an opaque blob representing agentID's current
	// belief state, suitable for persisting and later passed to a
	// Replayer to fast-forward without replaying the whole log.
	Snapshot(agentID string, beliefs any) (Blob, error)

	// LoadSnapshot returns the most recent snapshot for agentID, if any.
	LoadSnapshot(agentID string) (Blob, bool)
}

// Blob is an opaque, serialized belief snapshot, one per agent, taken
// whenever a caller invokes Memory.Snapshot; nothing in this package takes
// snapshots on a timer or at shutdown.
type Blob struct {
	AgentID   string
	Data      []byte
	Timestamp clock.Logical
}
