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
	"encoding/json"
	"fmt"
	"time"

	"github.com/quietloop/cognitad/pkg/mastermind"
)

// SubmitCmd submits a directive and waits silently for a terminal status.
type SubmitCmd struct {
	Directive string `arg:"" help:"The campaign directive."`
	MaxCycles int    `name:"max-cycles" help:"Override the configured max_cycles for this campaign."`
	Model     string `name:"model-preference" help:"Preferred model/provider name for tie-breaking."`
}

func (c *SubmitCmd) Run(cli *CLI) error {
	if err := requireScript(cli); err != nil {
		return err
	}
	k, err := buildCore(cli.Config, cli.Script)
	if err != nil {
		return err
	}

	campaignID, events, err := submitAndSubscribe(k, c.Directive, c.MaxCycles, c.Model)
	if err != nil {
		return err
	}
	fmt.Printf("campaign_id: %s\n", campaignID)

	for range events {
		// drain silently; submit only reports the final status
	}

	view, err := k.orchestrator.Status(campaignID)
	if err != nil {
		return err
	}
	printView(campaignID, view)
	return nil
}

// StatusCmd submits a directive and polls Status on an interval until the
// campaign reaches a terminal state.
type StatusCmd struct {
	Directive string        `arg:"" help:"The campaign directive."`
	Interval  time.Duration `help:"Poll interval." default:"500ms"`
	MaxCycles int           `name:"max-cycles" help:"Override the configured max_cycles for this campaign."`
	Model     string        `name:"model-preference" help:"Preferred model/provider name for tie-breaking."`
}

func (c *StatusCmd) Run(cli *CLI) error {
	if err := requireScript(cli); err != nil {
		return err
	}
	k, err := buildCore(cli.Config, cli.Script)
	if err != nil {
		return err
	}

	campaignID, events, err := submitAndSubscribe(k, c.Directive, c.MaxCycles, c.Model)
	if err != nil {
		return err
	}
	fmt.Printf("campaign_id: %s\n", campaignID)

	done := make(chan struct{})
	go func() {
		for range events {
		}
		close(done)
	}()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			view, err := k.orchestrator.Status(campaignID)
			if err != nil {
				return err
			}
			printView(campaignID, view)
			return nil
		case <-ticker.C:
			view, err := k.orchestrator.Status(campaignID)
			if err != nil {
				return err
			}
			printView(campaignID, view)
		}
	}
}

// WatchCmd submits a directive and streams its event log as JSON lines.
type WatchCmd struct {
	Directive string `arg:"" help:"The campaign directive."`
	MaxCycles int    `name:"max-cycles" help:"Override the configured max_cycles for this campaign."`
	Model     string `name:"model-preference" help:"Preferred model/provider name for tie-breaking."`
}

func (c *WatchCmd) Run(cli *CLI) error {
	if err := requireScript(cli); err != nil {
		return err
	}
	k, err := buildCore(cli.Config, cli.Script)
	if err != nil {
		return err
	}

	campaignID, events, err := submitAndSubscribe(k, c.Directive, c.MaxCycles, c.Model)
	if err != nil {
		return err
	}
	fmt.Printf("campaign_id: %s\n", campaignID)

	for ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}

	view, err := k.orchestrator.Status(campaignID)
	if err != nil {
		return err
	}
	printView(campaignID, view)
	return nil
}

// ReplayCmd submits a directive, runs it to completion, then replays its
// append-only history from the memory log, exercising the recovery path
// without requiring a second process.
type ReplayCmd struct {
	Directive string `arg:"" help:"The campaign directive."`
}

func (c *ReplayCmd) Run(cli *CLI) error {
	if err := requireScript(cli); err != nil {
		return err
	}
	k, err := buildCore(cli.Config, cli.Script)
	if err != nil {
		return err
	}

	campaignID, events, err := submitAndSubscribe(k, c.Directive, 0, "")
	if err != nil {
		return err
	}
	for range events {
	}

	fmt.Printf("campaign_id: %s\n", campaignID)
	fmt.Println("--- replayed history ---")
	for _, ev := range k.orchestrator.History(campaignID) {
		line, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}

func submitAndSubscribe(k *core, directive string, maxCycles int, modelPreference string) (string, <-chan mastermind.Event, error) {
	campaignID, err := k.orchestrator.Submit(context.Background(), directive, mastermind.Options{
		MaxCycles:       maxCycles,
		ModelPreference: modelPreference,
	})
	if err != nil {
		return "", nil, err
	}
	events, err := k.orchestrator.Subscribe(campaignID)
	if err != nil {
		return "", nil, err
	}
	return campaignID, events, nil
}

func printView(campaignID string, view mastermind.CampaignView) {
	fmt.Printf("status: %s\n", view.Status)
	if view.ActiveGoal != nil {
		fmt.Printf("goal: %s\n", view.ActiveGoal.Description)
	}
	fmt.Printf("decision: %s\n", view.CurrentDecision)
	fmt.Printf("belief_snapshot_ref: %s\n", view.BeliefSnapshotRef)
	if len(view.LastActions) > 0 {
		fmt.Println("actions:")
		for _, a := range view.LastActions {
			fmt.Printf("  - %s\n", a)
		}
	}
}
