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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietloop/cognitad/internal/clock"
	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/config"
	"github.com/quietloop/cognitad/pkg/llm"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/telemetry"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

type echoTool struct{}

func (echoTool) Name() string                                       { return "echo" }
func (echoTool) Version() string                                    { return "1" }
func (echoTool) Description() string                                { return "" }
func (echoTool) Capabilities() []string                             { return []string{"text"} }
func (echoTool) ParameterSchema() map[string]toolregistry.ParamSpec { return nil }
func (echoTool) AllowedCallers() []string                           { return []string{"*"} }
func (echoTool) SideEffects() bool                                  { return false }
func (echoTool) Call(ctx context.Context, params map[string]any) toolregistry.Result {
	return toolregistry.Result{OK: true, Value: params["text"]}
}

// gateTool blocks inside Call until released (or the invocation context is
// cancelled), so tests can hold a campaign mid-plan deterministically.
type gateTool struct {
	release chan struct{}
}

func (gateTool) Name() string                                       { return "wait" }
func (gateTool) Version() string                                    { return "1" }
func (gateTool) Description() string                                { return "blocks until released" }
func (gateTool) Capabilities() []string                             { return []string{"text"} }
func (gateTool) ParameterSchema() map[string]toolregistry.ParamSpec { return nil }
func (gateTool) AllowedCallers() []string                           { return []string{"*"} }
func (gateTool) SideEffects() bool                                  { return false }
func (g gateTool) Call(ctx context.Context, params map[string]any) toolregistry.Result {
	select {
	case <-g.release:
		return toolregistry.Result{OK: true}
	case <-ctx.Done():
		return toolregistry.Result{OK: false, Error: "cancelled"}
	}
}

func newHarness(t *testing.T, responses ...string) (*Orchestrator, *llm.ScriptedProvider) {
	t.Helper()
	return newHarnessWithTools(t, []toolregistry.CallableTool{echoTool{}}, responses...)
}

func newHarnessWithTools(t *testing.T, extraTools []toolregistry.CallableTool, responses ...string) (*Orchestrator, *llm.ScriptedProvider) {
	t.Helper()

	tools := toolregistry.New()
	for _, tool := range extraTools {
		require.NoError(t, tools.Register(tool))
	}

	beliefs := belief.NewMemStore(clock.New(), nil)
	mem := memlog.NewInMemoryLog(clock.New())

	provider := llm.NewScriptedProvider("test", responses...)
	registry := llm.NewRegistry()
	require.NoError(t, registry.RegisterProvider("test", provider))

	candidates := []llm.Candidate{{Name: "test", Provider: "test", CapabilityMatch: 1}}
	sampler := telemetry.NewScriptedHealthSampler(telemetry.SystemHealthy)

	cfg := &config.Config{DefaultProvider: "test"}
	cfg.SetDefaults()

	o := New(mem, clock.New(), tools, beliefs, registry, candidates, sampler, cfg, telemetry.NewTestMetrics())
	return o, provider
}

func drain(t *testing.T, events <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatal("timed out waiting for campaign to finish")
			return nil
		}
	}
}

func TestSubmitHappyPathCompletes(t *testing.T) {
	o, _ := newHarness(t, `{"actions":[{"type":"echo","params":{"text":"hi"}}]}`)

	campaignID, err := o.Submit(context.Background(), "say hi", Options{})
	require.NoError(t, err)

	events, err := o.Subscribe(campaignID)
	require.NoError(t, err)
	got := drain(t, events, 2*time.Second)

	var sawComplete bool
	for _, ev := range got {
		if ev.Kind == EventComplete {
			sawComplete = true
			assert.Equal(t, string(Completed), ev.Payload["status"])
		}
	}
	assert.True(t, sawComplete, "expected a complete event")

	view, err := o.Status(campaignID)
	require.NoError(t, err)
	assert.Equal(t, Completed, view.Status)
}

func TestSubmitRejectsSecondCampaignWhileRunning(t *testing.T) {
	gate := gateTool{release: make(chan struct{})}
	o, _ := newHarnessWithTools(t, []toolregistry.CallableTool{gate},
		`{"actions":[{"type":"wait","params":{}}]}`)

	first, err := o.Submit(context.Background(), "first directive", Options{})
	require.NoError(t, err)

	_, err = o.Submit(context.Background(), "second directive", Options{})
	assert.ErrorIs(t, err, ErrCampaignInProgress)

	close(gate.release)
	events, err := o.Subscribe(first)
	require.NoError(t, err)
	drain(t, events, 2*time.Second)
}

func TestCancelAbandonsCampaign(t *testing.T) {
	gate := gateTool{release: make(chan struct{})}
	o, _ := newHarnessWithTools(t, []toolregistry.CallableTool{gate},
		`{"actions":[{"type":"wait","params":{}}]}`)

	campaignID, err := o.Submit(context.Background(), "long running directive", Options{})
	require.NoError(t, err)

	require.NoError(t, o.Cancel(campaignID))

	events, err := o.Subscribe(campaignID)
	require.NoError(t, err)
	got := drain(t, events, 2*time.Second)

	found := false
	for _, ev := range got {
		if ev.Kind == EventComplete && ev.Payload["status"] == string(Abandoned) {
			found = true
		}
	}
	assert.True(t, found, "expected an abandoned complete event")

	view, err := o.Status(campaignID)
	require.NoError(t, err)
	assert.Equal(t, Abandoned, view.Status)
}

func TestStatusAndHistoryUnknownCampaign(t *testing.T) {
	o, _ := newHarness(t)

	_, err := o.Status("does-not-exist")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	_, err = o.Subscribe("does-not-exist")
	assert.ErrorIs(t, err, ErrCampaignNotFound)

	assert.Error(t, o.Cancel("does-not-exist"))
}

func TestHistoryReplaysAfterCompletion(t *testing.T) {
	o, _ := newHarness(t, `{"actions":[{"type":"echo","params":{"text":"hi"}}]}`)

	campaignID, err := o.Submit(context.Background(), "say hi", Options{})
	require.NoError(t, err)

	events, err := o.Subscribe(campaignID)
	require.NoError(t, err)
	drain(t, events, 2*time.Second)

	history := o.History(campaignID)
	assert.NotEmpty(t, history)
}
