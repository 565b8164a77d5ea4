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

// Package provider abstracts where process-level configuration bytes come
// from. The cognitive core only ever reads through this interface; it
// never constructs a concrete source itself beyond the file default.
package provider

import "context"

// Source loads raw configuration bytes and, optionally, watches for
// changes. Implementations must be safe for concurrent use.
type Source interface {
	// Load reads the current configuration bytes.
	Load(ctx context.Context) ([]byte, error)

	// Watch signals on the returned channel whenever the underlying config
	// changes. Cancel ctx to stop watching. A nil channel means the source
	// does not support watching.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases resources held by the source (e.g. a file watcher).
	Close() error
}
