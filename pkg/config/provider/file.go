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

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads configuration from a local YAML file and optionally
// watches its containing directory for changes (some filesystems don't
// support watching a single file directly).
type FileSource struct {
	path string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewFileSource resolves path to an absolute location and returns a Source
// backed by it.
func NewFileSource(path string) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	return &FileSource{path: abs}, nil
}

// Load reads the file from disk.
func (s *FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	return data, nil
}

// Watch starts an fsnotify watch on the config file's directory, debounces
// write bursts, and signals on the returned channel.
func (s *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("config source is closed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	s.watcher = watcher

	dir := filepath.Dir(s.path)
	name := filepath.Base(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config directory %s: %w", dir, err)
	}

	changed := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, name, changed)
	return changed, nil
}

func (s *FileSource) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, name string, changed chan<- struct{}) {
	defer close(changed)
	defer watcher.Close()

	const debounce = 100 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config file watcher error", "error", err)
		}
	}
}

// Close releases the watcher, if any.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

var _ Source = (*FileSource)(nil)
