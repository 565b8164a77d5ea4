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

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdentityRejectsDuplicate(t *testing.T) {
	s := NewMemStore()

	_, err := s.CreateIdentity("a1")
	require.NoError(t, err)

	_, err = s.CreateIdentity("a1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestSignUnknownAgent(t *testing.T) {
	s := NewMemStore()
	_, err := s.Sign("ghost", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestSignatureRoundTrip(t *testing.T) {
	s := NewMemStore()
	pub, err := s.CreateIdentity("a1")
	require.NoError(t, err)

	for _, msg := range [][]byte{[]byte("hello"), []byte(""), []byte("a longer message body")} {
		sig, err := s.Sign("a1", msg)
		require.NoError(t, err)
		assert.True(t, s.Verify(pub, msg, sig))
	}
}

func TestSignIsDeterministic(t *testing.T) {
	s := NewMemStore()
	pub, err := s.CreateIdentity("a1")
	require.NoError(t, err)
	_ = pub

	msg := []byte("deterministic please")
	sig1, err := s.Sign("a1", msg)
	require.NoError(t, err)
	sig2, err := s.Sign("a1", msg)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	s := NewMemStore()
	pub, err := s.CreateIdentity("a1")
	require.NoError(t, err)

	sig, err := s.Sign("a1", []byte("original"))
	require.NoError(t, err)

	assert.False(t, s.Verify(pub, []byte("tampered"), sig))
}

func TestDeprecateRetainsPublicKey(t *testing.T) {
	s := NewMemStore()
	pub, err := s.CreateIdentity("a1")
	require.NoError(t, err)

	require.NoError(t, s.Deprecate("a1"))

	got, ok := s.GetPublicKey("a1")
	require.True(t, ok)
	assert.Equal(t, pub, got)

	ids := s.ListIdentities()
	require.Len(t, ids, 1)
	assert.True(t, ids[0].Deprecated)
}

func TestDeprecateThenCreateAllowsNewIdentity(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateIdentity("a1")
	require.NoError(t, err)
	require.NoError(t, s.Deprecate("a1"))

	_, err = s.CreateIdentity("a1")
	assert.NoError(t, err)
}

func TestDeprecateUnknownAgent(t *testing.T) {
	s := NewMemStore()
	err := s.Deprecate("ghost")
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}
