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

import "encoding/json"

// Replayer reproduces an agent's state by decoding its newest snapshot
// and then folding every event committed after that snapshot's timestamp:
// recovery replays the log on top of the newest snapshot.
type Replayer struct {
	mem Memory
}

// NewReplayer returns a Replayer reading from mem.
func NewReplayer(mem Memory) *Replayer {
	return &Replayer{mem: mem}
}

// Restore decodes agentID's newest snapshot into dst (a pointer), then
// returns every event for agentID committed strictly after the snapshot so
// the caller can fold them back in (e.g. re-Add each one into a fresh
// belief.Store). If there is no snapshot, dst is left untouched and every
// event for agentID is returned.
func (r *Replayer) Restore(agentID string, dst any) ([]Event, error) {
	blob, ok := r.mem.LoadSnapshot(agentID)
	since := uint64(0)
	if ok {
		if err := json.Unmarshal(blob.Data, dst); err != nil {
			return nil, err
		}
		since = uint64(blob.Timestamp)
	}

	events := r.mem.Query(Filter{AgentID: agentID})
	out := events[:0:0]
	for _, ev := range events {
		if uint64(ev.Timestamp) > since {
			out = append(out, ev)
		}
	}
	return out, nil
}

// CampaignHistory returns every event recorded for campaignID, in
// ascending timestamp order, regardless of which agent wrote them. This
// is what the orchestrator reads to reconstruct history across a restart.
func (r *Replayer) CampaignHistory(campaignID string) []Event {
	return r.mem.Query(Filter{CampaignID: campaignID})
}
