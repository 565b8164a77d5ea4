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

// Package identity is the cryptographic identity service. Every agent
// the Agent Factory creates gets exactly one non-deprecated
// secp256k1 key pair; signing is RFC 6979 deterministic so the same
// (agent_id, message) pair always produces the same signature bytes.
package identity

import "errors"

// ErrDuplicateIdentity is returned by CreateIdentity when agent_id already
// has a non-deprecated identity on file.
var ErrDuplicateIdentity = errors.New("identity: duplicate agent_id")

// ErrUnknownIdentity is returned by Sign when agent_id has no stored key.
var ErrUnknownIdentity = errors.New("identity: unknown agent_id")

// Identity is the persisted, public-facing record for one agent_id. The
// private key never appears on this type; it stays inside the Store.
type Identity struct {
	AgentID    string
	PublicKey  []byte
	Deprecated bool
}

// Store is the identity manager contract. Implementations must make
// CreateIdentity mutually exclusive with lookups of the same agent_id.
type Store interface {
	// CreateIdentity generates a fresh key pair for agent_id and persists
	// the private key under an internal handle never exposed in plaintext
	// again. Returns ErrDuplicateIdentity if a non-deprecated identity for
	// agent_id already exists.
	CreateIdentity(agentID string) (publicKey []byte, err error)

	// GetPublicKey returns the public key for agent_id, or ok=false if no
	// identity (deprecated or not) exists for it.
	GetPublicKey(agentID string) (publicKey []byte, ok bool)

	// Sign deterministically signs message with agent_id's private key.
	// Returns ErrUnknownIdentity if agent_id has no stored key at all
	// (deprecated identities may still sign; deprecation only blocks new
	// CREATE_AGENT assignment, it does not revoke signing capability).
	Sign(agentID string, message []byte) (signature []byte, err error)

	// Verify checks signature against message under publicKey. Never
	// errors; an invalid signature or malformed key simply returns false.
	Verify(publicKey, message, signature []byte) bool

	// ListIdentities returns every identity, including deprecated ones, in
	// an implementation-defined but stable order.
	ListIdentities() []Identity

	// Deprecate marks agentID's identity as deprecated without deleting
	// the public key. Deprecating an unknown agent_id is a no-op error.
	Deprecate(agentID string) error
}
