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

package belief

import (
	"strings"
	"sync"

	"github.com/quietloop/cognitad/internal/clock"
)

// Store is the belief store contract. None of its operations error: a
// missing key from Get simply returns ok=false.
type Store interface {
	// Add inserts a brand-new belief, or delegates to Update if key
	// already has a live (non-superseded) record.
	Add(key string, value any, confidence float64, evidence string, source Source) Belief

	// Update appends evidence to key's belief and recomputes confidence
	// via the store's ReinforcementFunc with the given delta. If key does
	// not exist, Update behaves like Add with confidence=delta.
	Update(key string, evidence string, delta float64) Belief

	// Get returns the live belief for key, if any.
	Get(key string) (Belief, bool)

	// Query returns beliefs matching all given filters, in insertion
	// order. A zero-value filter field is not applied. Superseded
	// beliefs are excluded unless q.IncludeSuperseded is set.
	Query(q Query) []Belief

	// Invalidate marks key's belief superseded, retaining the record.
	Invalidate(key string, reason string)

	// Supersede retires the current belief at key into the audit history
	// (same as Invalidate) and installs a brand-new live belief under the
	// same key. Used by the BDI cycle's contradiction-detection step,
	// where a fresh perception disagrees with the stored value.
	Supersede(key string, value any, confidence float64, evidence string, source Source) Belief

	// History returns every retired (superseded) version ever recorded
	// for key, oldest first, for audit and replay.
	History(key string) []Belief
}

// Query narrows Query results. MinConfidence of 0 matches everything;
// Source of "" matches any source. Superseded beliefs do not participate
// in queries with default filters; IncludeSuperseded is the explicit
// opt-in for audit callers that want them anyway.
type Query struct {
	Prefix            string
	MinConfidence     float64
	Source            Source
	IncludeSuperseded bool
}

// memStore is the default in-process Store: one RWMutex-guarded map plus
// an insertion-order slice of keys, since a bare map cannot give Query
// the insertion-order stability its contract requires.
type memStore struct {
	mu        sync.RWMutex
	beliefs   map[string]Belief
	history   map[string][]Belief
	order     []string
	clock     *clock.Source
	reinforce ReinforcementFunc
}

// NewMemStore returns an empty belief store using src for timestamps and
// fn (or DefaultReinforcement if nil) for confidence reinforcement.
func NewMemStore(src *clock.Source, fn ReinforcementFunc) Store {
	if fn == nil {
		fn = DefaultReinforcement
	}
	return &memStore{
		beliefs:   make(map[string]Belief),
		history:   make(map[string][]Belief),
		clock:     src,
		reinforce: fn,
	}
}

func (s *memStore) Add(key string, value any, confidence float64, evidence string, source Source) Belief {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.beliefs[key]; ok && !existing.Superseded {
		return s.updateLocked(key, evidence, confidence)
	}

	now := s.clock.Now()
	b := Belief{
		Key:        key,
		Value:      value,
		Confidence: clamp01(confidence),
		Evidence:   []string{evidence},
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, exists := s.beliefs[key]; !exists {
		s.order = append(s.order, key)
	}
	s.beliefs[key] = b
	return b
}

func (s *memStore) Update(key string, evidence string, delta float64) Belief {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(key, evidence, delta)
}

func (s *memStore) updateLocked(key string, evidence string, delta float64) Belief {
	b, ok := s.beliefs[key]
	if !ok {
		now := s.clock.Now()
		b = Belief{Key: key, Confidence: clamp01(delta), CreatedAt: now, UpdatedAt: now}
		s.order = append(s.order, key)
	} else {
		b.Confidence = s.reinforce(b.Confidence, delta)
		b.UpdatedAt = s.clock.Now()
	}
	b.Evidence = append(append([]string{}, b.Evidence...), evidence)
	s.beliefs[key] = b
	return b
}

func (s *memStore) Get(key string) (Belief, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.beliefs[key]
	return b, ok
}

func (s *memStore) Query(q Query) []Belief {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Belief, 0, len(s.order))
	for _, k := range s.order {
		b := s.beliefs[k]
		if b.Superseded && !q.IncludeSuperseded {
			continue
		}
		if q.Prefix != "" && !strings.HasPrefix(b.Key, q.Prefix) {
			continue
		}
		if b.Confidence < q.MinConfidence {
			continue
		}
		if q.Source != "" && b.Source != q.Source {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Invalidate implements contradiction handling: the tie-break between two
// equally confident beliefs keeps the newer one, so callers invalidate the
// older record directly. The BDI cycle decides *which* key to invalidate;
// this method just performs the mechanical part.
func (s *memStore) Invalidate(key string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beliefs[key]
	if !ok {
		return
	}
	wasLive := !b.Superseded
	b.Superseded = true
	b.SupersededReason = reason
	b.UpdatedAt = s.clock.Now()
	s.beliefs[key] = b
	if wasLive {
		s.history[key] = append(s.history[key], b)
	}
}

func (s *memStore) Supersede(key string, value any, confidence float64, evidence string, source Source) Belief {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.beliefs[key]; ok && !old.Superseded {
		old.Superseded = true
		old.SupersededReason = "contradiction"
		old.UpdatedAt = s.clock.Now()
		s.history[key] = append(s.history[key], old)
	}

	now := s.clock.Now()
	b := Belief{
		Key:        key,
		Value:      value,
		Confidence: clamp01(confidence),
		Evidence:   []string{evidence},
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, exists := s.beliefs[key]; !exists {
		s.order = append(s.order, key)
	}
	s.beliefs[key] = b
	return b
}

func (s *memStore) History(key string) []Belief {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Belief, len(s.history[key]))
	copy(out, s.history[key])
	return out
}

var _ Store = (*memStore)(nil)
