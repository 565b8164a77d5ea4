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
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// record is the store's internal secret-holding entry. The private key
// never leaves this file.
type record struct {
	agentID    string
	priv       *secp256k1.PrivateKey
	deprecated bool
}

// memStore is the default Store: an in-memory map guarded by a single
// RWMutex. CreateIdentity takes the write lock for the duration of
// generation-and-insert, which is what makes create mutually exclusive
// with any concurrent lookup of the same (or any other) agent_id. A
// per-agent stripe would let a lookup observe a half-written record, and
// this store is small and low-throughput enough that one lock is not a
// bottleneck.
type memStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewMemStore returns an empty, process-local identity store.
func NewMemStore() Store {
	return &memStore{records: make(map[string]*record)}
}

func (s *memStore) CreateIdentity(agentID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[agentID]; ok && !existing.deprecated {
		return nil, ErrDuplicateIdentity
	}

	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("identity: generate key for %s: %w", agentID, err)
	}

	s.records[agentID] = &record{agentID: agentID, priv: priv}
	pub := priv.PubKey().SerializeCompressed()
	return pub, nil
}

func (s *memStore) GetPublicKey(agentID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[agentID]
	if !ok {
		return nil, false
	}
	return r.priv.PubKey().SerializeCompressed(), true
}

// Sign hashes message with SHA-256 and signs the digest with RFC 6979
// deterministic nonce generation, so (agentID, message) always yields
// identical signature bytes.
func (s *memStore) Sign(agentID string, message []byte) ([]byte, error) {
	s.mu.RLock()
	r, ok := s.records[agentID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownIdentity
	}

	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(r.priv, digest[:])
	return sig.Serialize(), nil
}

func (s *memStore) Verify(publicKey, message, signature []byte) bool {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pub)
}

func (s *memStore) ListIdentities() []Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Identity, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, Identity{
			AgentID:    r.agentID,
			PublicKey:  r.priv.PubKey().SerializeCompressed(),
			Deprecated: r.deprecated,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

func (s *memStore) Deprecate(agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[agentID]
	if !ok {
		return ErrUnknownIdentity
	}
	r.deprecated = true
	return nil
}

var _ Store = (*memStore)(nil)
