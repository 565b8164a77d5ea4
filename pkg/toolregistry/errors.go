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

import "errors"

var (
	// ErrNameCollision is returned by Register when a tool of the same
	// name and version already exists.
	ErrNameCollision = errors.New("toolregistry: name/version collision")

	// ErrNotFound is returned by Resolve when no tool matches name.
	ErrNotFound = errors.New("toolregistry: tool not found")

	// ErrForbidden is returned by Resolve when callerType is not among
	// the tool's allowed_callers.
	ErrForbidden = errors.New("toolregistry: caller not permitted")

	// ErrMissingParam is returned by ValidateParams.
	ErrMissingParam = errors.New("toolregistry: missing required parameter")

	// ErrTypeMismatch is returned by ValidateParams.
	ErrTypeMismatch = errors.New("toolregistry: parameter type mismatch")
)
