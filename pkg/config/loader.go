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

package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/quietloop/cognitad/pkg/config/provider"
)

// Loader reads, parses, and decodes configuration from a provider.Source,
// optionally re-invoking onChange when the source reports a change.
//
// Hot-reload only ever replaces non-critical fields; CriticalComponents
// itself is captured once at first Load and never overwritten by a later
// reload, so a live reconfiguration can't un-protect a component mid-run.
type Loader struct {
	source   provider.Source
	onChange func(*Config)

	firstLoad        bool
	criticalSnapshot []string
}

// NewLoader creates a Loader reading from source.
func NewLoader(source provider.Source, onChange func(*Config)) *Loader {
	return &Loader{source: source, onChange: onChange, firstLoad: true}
}

// Load reads, expands, and decodes the configuration once.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	raw, err := l.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &rawMap); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	expanded, ok := expandEnvValue(rawMap).(map[string]interface{})
	if !ok {
		expanded = map[string]interface{}{}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(expanded); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()

	if l.firstLoad {
		l.criticalSnapshot = cfg.CriticalComponents
		l.firstLoad = false
	} else {
		cfg.CriticalComponents = l.criticalSnapshot
	}

	return cfg, nil
}

// Watch loads once, then re-loads and invokes onChange on every subsequent
// change signal from the source, until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context) (*Config, error) {
	cfg, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}

	changed, err := l.source.Watch(ctx)
	if err != nil {
		slog.Warn("config source does not support watching", "error", err)
		return cfg, nil
	}

	go func() {
		for range changed {
			next, err := l.Load(ctx)
			if err != nil {
				slog.Error("config reload failed, keeping previous config", "error", err)
				continue
			}
			if l.onChange != nil {
				l.onChange(next)
			}
		}
	}()

	return cfg, nil
}
