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

package llm

import (
	"fmt"
	"sync"
)

// Registry holds every Provider the embedding process has wired in, keyed
// by a short logical name (e.g. "anthropic-fast", "local-ollama"). The
// map-plus-RWMutex shape is the one every registry in this module follows
// (identity, tools, providers alike); Provider is the only type this one
// ever holds, so it is written directly against Provider rather than
// through a shared generic container.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// RegisterProvider adds p under name, failing on an empty name, a nil
// provider, or a name collision.
func (r *Registry) RegisterProvider(name string, p Provider) error {
	if name == "" {
		return fmt.Errorf("llm: provider name cannot be empty")
	}
	if p == nil {
		return fmt.Errorf("llm: provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("llm: provider %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// GetProvider returns the provider registered under name.
func (r *Registry) GetProvider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("llm: provider %q not found", name)
	}
	return p, nil
}

// ProviderNames returns every registered provider name, in no particular
// order. Used by the governor's SELF_REPAIR to find an alternate provider
// to switch to when the pinned one is down.
func (r *Registry) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
