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

package bdi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanAcceptsSchemaConformantPlan(t *testing.T) {
	actions, err := parsePlan(`{"actions":[{"type":"echo","params":{"text":"hi"}}]}`)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "echo", actions[0].Type)
}

func TestParsePlanRejectsMissingRequiredParamsField(t *testing.T) {
	_, err := parsePlan(`{"actions":[{"type":"echo"}]}`)
	assert.Error(t, err)
}

func TestParsePlanRejectsWrongActionsType(t *testing.T) {
	_, err := parsePlan(`{"actions":"not-a-list"}`)
	assert.Error(t, err)
}

func TestParsePlanRejectsWrongParamType(t *testing.T) {
	_, err := parsePlan(`{"actions":[{"type":"echo","params":"not-an-object"}]}`)
	assert.Error(t, err)
}

func TestParsePlanToleratesSurroundingProse(t *testing.T) {
	actions, err := parsePlan("Here is the plan:\n" +
		`{"actions":[{"type":"echo","params":{"text":"hi"}}]}` + "\nLet me know if this works.")
	require.NoError(t, err)
	require.Len(t, actions, 1)
}

func TestParsePlanRejectsEmptyActionList(t *testing.T) {
	_, err := parsePlan(`{"actions":[]}`)
	assert.Error(t, err)
}
