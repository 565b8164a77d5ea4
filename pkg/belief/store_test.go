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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/internal/clock"
)

func newStore() Store {
	return NewMemStore(clock.New(), nil)
}

func TestAddThenAddDelegatesToUpdate(t *testing.T) {
	s := newStore()
	s.Add("tool.echo.reliability", nil, 0.5, "first success", SourceToolResult)
	b := s.Add("tool.echo.reliability", nil, 0.5, "second success", SourceToolResult)

	assert.Len(t, b.Evidence, 2)
	assert.InDelta(t, DefaultReinforcement(0.5, 0.5), b.Confidence, 1e-9)
}

func TestGetMissingKeyReturnsAbsence(t *testing.T) {
	s := newStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestQueryFiltersAndPreservesInsertionOrder(t *testing.T) {
	s := newStore()
	s.Add("tool.a.reliability", nil, 0.9, "e", SourceToolResult)
	s.Add("identity.a1.exists", nil, 1.0, "e", SourcePerception)
	s.Add("tool.b.reliability", nil, 0.2, "e", SourceToolResult)

	results := s.Query(Query{Prefix: "tool.", MinConfidence: 0.5})
	require.Len(t, results, 1)
	assert.Equal(t, "tool.a.reliability", results[0].Key)

	all := s.Query(Query{})
	require.Len(t, all, 3)
	assert.Equal(t, []string{"tool.a.reliability", "identity.a1.exists", "tool.b.reliability"},
		[]string{all[0].Key, all[1].Key, all[2].Key})
}

func TestInvalidateRetainsRecord(t *testing.T) {
	s := newStore()
	s.Add("k", "v1", 0.6, "e", SourceLLMInference)
	s.Invalidate("k", "contradiction")

	b, ok := s.Get("k")
	require.True(t, ok)
	assert.True(t, b.Superseded)
	assert.Equal(t, "contradiction", b.SupersededReason)
}

func TestInvalidateExcludesFromDefaultQuery(t *testing.T) {
	s := newStore()
	s.Add("k", "v1", 0.6, "e", SourceLLMInference)
	s.Invalidate("k", "contradiction")

	assert.Empty(t, s.Query(Query{}))

	withSuperseded := s.Query(Query{IncludeSuperseded: true})
	require.Len(t, withSuperseded, 1)
	assert.Equal(t, "k", withSuperseded[0].Key)
	assert.True(t, withSuperseded[0].Superseded)
}

func TestConfidenceClampedToUnitInterval(t *testing.T) {
	s := newStore()
	b := s.Add("k", nil, 5.0, "e", SourceUser)
	assert.Equal(t, 1.0, b.Confidence)

	b = s.Add("k2", nil, -3.0, "e", SourceUser)
	assert.Equal(t, 0.0, b.Confidence)
}

func TestSupersedeRetainsOldVersionInHistory(t *testing.T) {
	s := newStore()
	s.Add("weather.today", "sunny", 0.6, "observed at noon", SourcePerception)
	s.Supersede("weather.today", "rainy", 0.8, "observed at dusk", SourcePerception)

	live, ok := s.Get("weather.today")
	require.True(t, ok)
	assert.Equal(t, "rainy", live.Value)
	assert.False(t, live.Superseded)

	hist := s.History("weather.today")
	require.Len(t, hist, 1)
	assert.Equal(t, "sunny", hist[0].Value)
	assert.True(t, hist[0].Superseded)
}

func TestMergeUnionsEvidenceAndTakesMaxConfidence(t *testing.T) {
	a := Belief{Key: "k", Confidence: 0.4, Evidence: []string{"a1"}, CreatedAt: 1, UpdatedAt: 1}
	b := Belief{Key: "k", Confidence: 0.7, Evidence: []string{"b1", "a1"}, CreatedAt: 2, UpdatedAt: 3}

	merged := Merge(a, b)
	assert.Equal(t, 0.7, merged.Confidence)
	assert.ElementsMatch(t, []string{"a1", "b1"}, merged.Evidence)
	assert.Equal(t, clock.Logical(3), merged.UpdatedAt)
}
