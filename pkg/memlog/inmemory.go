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

package memlog

import (
	"encoding/json"
	"sync"

	"github.com/quietloop/cognitad/internal/clock"
)

// InMemoryLog is the default Memory: an append-only slice of events plus
// a map of latest snapshots per agent, both guarded by one RWMutex.
// Snapshot recovery is scoped by owning identity, not globally, so the
// snapshot map keys by agent_id.
type InMemoryLog struct {
	mu        sync.RWMutex
	events    []Event
	snapshots map[string]Blob
	clock     *clock.Source
}

// NewInMemoryLog returns an empty log using src for timestamps.
func NewInMemoryLog(src *clock.Source) *InMemoryLog {
	return &InMemoryLog{
		snapshots: make(map[string]Blob),
		clock:     src,
	}
}

func (l *InMemoryLog) Append(ev Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.Timestamp == 0 {
		ev.Timestamp = l.clock.Now()
	} else {
		l.clock.Observe(ev.Timestamp)
	}
	l.events = append(l.events, ev)
	return ev
}

func (l *InMemoryLog) Query(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, 0)
	for _, ev := range l.events {
		if f.AgentID != "" && ev.AgentID != f.AgentID {
			continue
		}
		if f.CampaignID != "" && ev.CampaignID != f.CampaignID {
			continue
		}
		if f.Tag != "" && !hasTag(ev.Tags, f.Tag) {
			continue
		}
		if f.Since != 0 && ev.Timestamp <= f.Since {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Snapshot serializes beliefs as JSON under agentID, replacing any prior
// snapshot for that agent.
func (l *InMemoryLog) Snapshot(agentID string, beliefs any) (Blob, error) {
	data, err := json.Marshal(beliefs)
	if err != nil {
		return Blob{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	blob := Blob{AgentID: agentID, Data: data, Timestamp: l.clock.Now()}
	l.snapshots[agentID] = blob
	return blob, nil
}

func (l *InMemoryLog) LoadSnapshot(agentID string) (Blob, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.snapshots[agentID]
	return b, ok
}

var _ Memory = (*InMemoryLog)(nil)
