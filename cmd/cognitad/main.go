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

// Command cognitad drives the hierarchical cognitive core (Mastermind /
// AGInt / BDI) for one campaign per invocation.
//
// Usage:
//
//	cognitad submit --script plan.yaml "research the outage and report back"
//	cognitad watch --script plan.yaml "research the outage and report back"
//	cognitad identity create svc-1
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/quietloop/cognitad/pkg/telemetry"
)

// CLI defines the command-line interface.
type CLI struct {
	Submit   SubmitCmd   `cmd:"" help:"Submit a directive and block until the campaign reaches a terminal status."`
	Status   StatusCmd   `cmd:"" help:"Submit a directive and print periodic status snapshots until it finishes."`
	Watch    WatchCmd    `cmd:"" help:"Submit a directive and stream its event log to stdout until it finishes."`
	Replay   ReplayCmd   `cmd:"" help:"Submit a directive, run it, then replay its append-only history from the memory log."`
	Identity IdentityCmd `cmd:"" help:"Exercise the identity manager standalone."`

	Config   string `short:"c" help:"Path to YAML config file." type:"path"`
	Script   string `short:"s" help:"Path to a YAML file of scripted LLM responses (required by submit/status/watch/replay)." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("cognitad"),
		kong.Description("Hierarchical cognitive agent core: Mastermind / AGInt / BDI."),
		kong.UsageOnError(),
	)

	telemetry.Init(telemetry.ParseLevel(cli.LogLevel), os.Stderr)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func requireScript(cli *CLI) error {
	if cli.Script == "" {
		return fmt.Errorf("--script is required")
	}
	return nil
}
