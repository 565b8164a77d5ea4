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

// Package agentfactory creates new agent records. It is invoked whenever
// a BDI plan contains a CREATE_AGENT action, wiring identity creation,
// tool-capability validation, and memory seeding into one sequence that
// rolls the identity back if any later step fails.
package agentfactory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quietloop/cognitad/pkg/belief"
	"github.com/quietloop/cognitad/pkg/cogerr"
	"github.com/quietloop/cognitad/pkg/identity"
	"github.com/quietloop/cognitad/pkg/memlog"
	"github.com/quietloop/cognitad/pkg/toolregistry"
)

// Type is the kind of agent being created.
type Type string

const (
	TypeOrchestrator Type = "orchestrator"
	TypeGovernor     Type = "governor"
	TypeTactical     Type = "tactical"
	TypeService      Type = "service"
)

// Status is an agent's lifecycle state.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusRunning      Status = "running"
	StatusDegraded     Status = "degraded"
	StatusTerminated   Status = "terminated"
)

// ErrAgentIDInUse is returned when agent_id is already registered in the
// Directory, independent of whether the identity store would also reject
// it.
var ErrAgentIDInUse = errors.New("agentfactory: agent_id already in use")

// Config is the declarative payload a CREATE_AGENT plan action carries.
type Config struct {
	RequiredTools []string
}

// Request is the CREATE_AGENT input.
type Request struct {
	AgentType Type
	AgentID   string
	Config    Config
}

// AgentHandle is the public record returned to the CREATE_AGENT caller.
type AgentHandle struct {
	AgentID   string
	AgentType Type
	PublicKey []byte
	Status    Status
}

// Directory is whichever agent registry the embedding process maintains.
// The core only depends on this narrow interface; NewMapDirectory gives a
// self-contained default for tests and standalone operation.
type Directory interface {
	Exists(agentID string) bool
	Register(handle AgentHandle) error
}

type mapDirectory struct {
	mu     sync.Mutex
	agents map[string]AgentHandle
}

// NewMapDirectory returns a map-backed Directory.
func NewMapDirectory() Directory {
	return &mapDirectory{agents: make(map[string]AgentHandle)}
}

func (d *mapDirectory) Exists(agentID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.agents[agentID]
	return ok
}

func (d *mapDirectory) Register(handle AgentHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.agents[handle.AgentID]; ok {
		return ErrAgentIDInUse
	}
	d.agents[handle.AgentID] = handle
	return nil
}

// Factory creates and registers new agents.
type Factory struct {
	identities identity.Store
	tools      *toolregistry.Registry
	mem        memlog.Memory
	beliefs    belief.Store
	directory  Directory
}

// New constructs a Factory. directory may be nil, in which case a fresh
// NewMapDirectory is used. beliefs may be nil; when set, duplicate checks
// and successful creations are recorded as identity.<agent_id>.exists
// beliefs.
func New(identities identity.Store, tools *toolregistry.Registry, mem memlog.Memory, beliefs belief.Store, directory Directory) *Factory {
	if directory == nil {
		directory = NewMapDirectory()
	}
	return &Factory{identities: identities, tools: tools, mem: mem, beliefs: beliefs, directory: directory}
}

// CreateAgent runs the creation sequence:
//  1. validate agent_id is unused in both the identity store and the
//     Directory
//  2. create the identity, failing with DuplicateIdentity
//  3. validate every required_tools entry resolves for agent_type,
//     rolling back (deprecating) the identity on any miss
//  4. emit agent_created through the memory log and return the public
//     handle
func (f *Factory) CreateAgent(ctx context.Context, req Request) (*AgentHandle, error) {
	if req.AgentID == "" {
		return nil, fmt.Errorf("agentfactory: agent_id is required")
	}

	if f.directory.Exists(req.AgentID) {
		f.recordExists(req.AgentID, "duplicate detected in agent directory")
		return nil, cogerr.Wrap(cogerr.Execution, cogerr.ReasonDuplicateIdentity, req.AgentID, ErrAgentIDInUse)
	}

	pub, err := f.identities.CreateIdentity(req.AgentID)
	if err != nil {
		f.recordExists(req.AgentID, "duplicate detected in identity store")
		return nil, cogerr.Wrap(cogerr.Execution, cogerr.ReasonDuplicateIdentity, req.AgentID, err)
	}

	for _, toolName := range req.Config.RequiredTools {
		if _, rerr := f.tools.Resolve(toolName, string(req.AgentType)); rerr != nil {
			if derr := f.identities.Deprecate(req.AgentID); derr != nil {
				rerr = fmt.Errorf("%w (rollback also failed: %v)", rerr, derr)
			}
			return nil, cogerr.Wrap(cogerr.Planning, cogerr.ReasonCapabilityLost,
				fmt.Sprintf("required tool %q unresolvable for %s", toolName, req.AgentType), rerr)
		}
	}

	handle := AgentHandle{AgentID: req.AgentID, AgentType: req.AgentType, PublicKey: pub, Status: StatusReady}
	if err := f.directory.Register(handle); err != nil {
		_ = f.identities.Deprecate(req.AgentID)
		return nil, cogerr.Wrap(cogerr.Execution, cogerr.ReasonDuplicateIdentity, req.AgentID, err)
	}

	f.mem.Append(memlog.Event{
		AgentID:     req.AgentID,
		ProcessName: "agentfactory",
		Data: map[string]any{
			"agent_type": string(req.AgentType),
			"public_key": pub,
		},
		Tags: []string{"agent_created"},
	})
	f.recordExists(req.AgentID, "created")

	return &handle, nil
}

func (f *Factory) recordExists(agentID, evidence string) {
	if f.beliefs == nil {
		return
	}
	key := fmt.Sprintf("identity.%s.exists", agentID)
	if _, ok := f.beliefs.Get(key); ok {
		f.beliefs.Update(key, evidence, 1.0)
		return
	}
	f.beliefs.Add(key, true, 1.0, evidence, belief.SourcePerception)
}

// AsCreateAgentTool adapts CreateAgent to the closure signature
// toolregistry.NewCreateAgentTool expects, so the wiring layer can
// register CREATE_AGENT as an ordinary Tool and plans need no
// special-cased control path.
func (f *Factory) AsCreateAgentTool(ctx context.Context, params map[string]any) toolregistry.Result {
	req, err := requestFromParams(params)
	if err != nil {
		return toolregistry.Result{OK: false, Error: err.Error()}
	}

	handle, err := f.CreateAgent(ctx, req)
	if err != nil {
		return toolregistry.Result{OK: false, Error: reasonFor(err)}
	}
	return toolregistry.Result{OK: true, Value: handle}
}

func requestFromParams(params map[string]any) (Request, error) {
	agentType, _ := params["agent_type"].(string)
	agentID, _ := params["agent_id"].(string)
	if agentType == "" || agentID == "" {
		return Request{}, fmt.Errorf("parameter_invalid")
	}

	req := Request{AgentType: Type(agentType), AgentID: agentID}
	cfg, _ := params["config"].(map[string]any)
	if rt, ok := cfg["required_tools"].([]any); ok {
		for _, t := range rt {
			if s, ok := t.(string); ok {
				req.Config.RequiredTools = append(req.Config.RequiredTools, s)
			}
		}
	}
	return req, nil
}

// reasonFor maps a CreateAgent error to the short machine-readable reason
// the tool result surfaces, falling back to the generic tool_failed
// reason for anything else.
func reasonFor(err error) string {
	var ce *cogerr.Error
	if errors.As(err, &ce) && ce.Reason == cogerr.ReasonDuplicateIdentity {
		return "DuplicateIdentity"
	}
	return "tool_failed"
}

var _ Directory = (*mapDirectory)(nil)
