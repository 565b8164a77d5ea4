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

package toolregistry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// defaultConcurrentNonSideEffecting bounds how many non-side-effecting
// tool invocations may run concurrently for a single caller.
const defaultConcurrentNonSideEffecting = 8

// entry is one registered tool keyed by name+version.
type entry struct {
	tool CallableTool
}

// Registry is the tool registry: the sole path by which a plan action
// reaches an external effect. Registrations are guarded by a single
// writer lock; side-effecting invocations are serialized per agent via a
// weight-1 semaphore, non-side-effecting ones share a bounded semaphore
// per agent.
type Registry struct {
	mu    sync.RWMutex
	tools map[string][]entry // name -> versions, insertion order

	agentMu  sync.Mutex
	sideSems map[string]*semaphore.Weighted
	freeSems map[string]*semaphore.Weighted
}

// New returns an empty tool registry.
func New() *Registry {
	return &Registry{
		tools:    make(map[string][]entry),
		sideSems: make(map[string]*semaphore.Weighted),
		freeSems: make(map[string]*semaphore.Weighted),
	}
}

// Register adds t, failing with ErrNameCollision if a tool with the same
// name and version is already present.
func (r *Registry) Register(t CallableTool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.tools[t.Name()] {
		if e.tool.Version() == t.Version() {
			return fmt.Errorf("%w: %s@%s", ErrNameCollision, t.Name(), t.Version())
		}
	}
	r.tools[t.Name()] = append(r.tools[t.Name()], entry{tool: t})
	return nil
}

// Resolve finds the tool named name reachable by callerType. When
// multiple versions are registered, the most recently registered one is
// preferred.
func (r *Registry) Resolve(name, callerType string) (CallableTool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.tools[name]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	t := versions[len(versions)-1].tool
	if !callerAllowed(t.AllowedCallers(), callerType) {
		return nil, fmt.Errorf("%w: %s cannot call %s", ErrForbidden, callerType, name)
	}
	return t, nil
}

// Names returns every registered tool name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}

// ResolveCapability finds any tool tagged with capability reachable by
// callerType, preferring the most recently registered match. The BDI
// cycle uses this to check whether a goal's required capabilities are
// still satisfiable.
func (r *Registry) ResolveCapability(capability, callerType string) (CallableTool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, versions := range r.tools {
		for i := len(versions) - 1; i >= 0; i-- {
			t := versions[i].tool
			if !hasCapability(t.Capabilities(), capability) {
				continue
			}
			if !callerAllowed(t.AllowedCallers(), callerType) {
				continue
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: capability %s", ErrNotFound, capability)
}

// ResolveAllCapability returns every tool tagged with capability reachable
// by callerType, most-recently-registered first. The governor's RESEARCH
// act fans out across these concurrently (see pkg/agint) rather than
// stopping at the first match ResolveCapability would give it.
func (r *Registry) ResolveAllCapability(capability, callerType string) []CallableTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []CallableTool
	for _, versions := range r.tools {
		for i := len(versions) - 1; i >= 0; i-- {
			t := versions[i].tool
			if !hasCapability(t.Capabilities(), capability) {
				continue
			}
			if !callerAllowed(t.AllowedCallers(), callerType) {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// Resolvable returns the latest version of every registered tool reachable
// by callerType, in no particular order. The BDI planner uses this to
// advertise the current tool surface to the model during plan generation.
func (r *Registry) Resolvable(callerType string) []CallableTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []CallableTool
	for _, versions := range r.tools {
		if len(versions) == 0 {
			continue
		}
		t := versions[len(versions)-1].tool
		if !callerAllowed(t.AllowedCallers(), callerType) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasCapability(capabilities []string, capability string) bool {
	for _, c := range capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func callerAllowed(allowed []string, callerType string) bool {
	for _, a := range allowed {
		if a == "*" || a == callerType {
			return true
		}
	}
	return false
}

// ValidateParams checks params against t's declared ParameterSchema.
func ValidateParams(t Tool, params map[string]any) error {
	for name, spec := range t.ParameterSchema() {
		v, present := params[name]
		if !present {
			if spec.Required {
				return fmt.Errorf("%w: %s", ErrMissingParam, name)
			}
			continue
		}
		if !typeMatches(spec.Type, v) {
			return fmt.Errorf("%w: %s expected %s", ErrTypeMismatch, name, spec.Type)
		}
	}
	return nil
}

func typeMatches(expected string, v any) bool {
	switch expected {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case int, int64, float64, float32:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}

// Invoke validates params, then calls t.Call under the per-agent
// concurrency policy matching SideEffects: serialized if true, bounded
// concurrent if false. callerID scopes the serialization (typically the
// invoking agent_id).
func (r *Registry) Invoke(ctx context.Context, t CallableTool, callerID string, params map[string]any) (Result, error) {
	if err := ValidateParams(t, params); err != nil {
		return Result{}, err
	}

	sem := r.semaphoreFor(callerID, t.SideEffects())
	if err := sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("toolregistry: acquire slot for %s: %w", t.Name(), err)
	}
	defer sem.Release(1)

	return t.Call(ctx, params), nil
}

func (r *Registry) semaphoreFor(callerID string, sideEffects bool) *semaphore.Weighted {
	r.agentMu.Lock()
	defer r.agentMu.Unlock()

	m := r.freeSems
	weight := int64(defaultConcurrentNonSideEffecting)
	if sideEffects {
		m = r.sideSems
		weight = 1
	}

	sem, ok := m[callerID]
	if !ok {
		sem = semaphore.NewWeighted(weight)
		m[callerID] = sem
	}
	return sem
}
