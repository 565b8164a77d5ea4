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

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/quietloop/cognitad/pkg/identity"
)

// IdentityCmd groups standalone exercises of the identity manager. Each
// subcommand starts from a fresh in-memory store, since identity state
// has no persistence format across invocations; "sign" demonstrates the
// RFC 6979 determinism guarantee in one self-contained run.
type IdentityCmd struct {
	Create IdentityCreateCmd `cmd:"" help:"Create a fresh identity and print its public key."`
	Sign   IdentitySignCmd   `cmd:"" help:"Create an identity, sign a message twice, and confirm the signatures match."`
}

type IdentityCreateCmd struct {
	AgentID string `arg:"" help:"The agent_id to create an identity for."`
}

func (c *IdentityCreateCmd) Run(cli *CLI) error {
	store := identity.NewMemStore()
	pub, err := store.CreateIdentity(c.AgentID)
	if err != nil {
		return err
	}
	fmt.Printf("agent_id: %s\n", c.AgentID)
	fmt.Printf("public_key: %s\n", hex.EncodeToString(pub))
	return nil
}

type IdentitySignCmd struct {
	AgentID string `arg:"" help:"The agent_id to create an identity for."`
	Message string `arg:"" help:"The message to sign."`
}

func (c *IdentitySignCmd) Run(cli *CLI) error {
	store := identity.NewMemStore()
	pub, err := store.CreateIdentity(c.AgentID)
	if err != nil {
		return err
	}

	msg := []byte(c.Message)
	sig1, err := store.Sign(c.AgentID, msg)
	if err != nil {
		return err
	}
	sig2, err := store.Sign(c.AgentID, msg)
	if err != nil {
		return err
	}

	fmt.Printf("agent_id: %s\n", c.AgentID)
	fmt.Printf("signature: %s\n", hex.EncodeToString(sig1))
	fmt.Printf("deterministic: %v\n", bytes.Equal(sig1, sig2))
	fmt.Printf("verifies: %v\n", store.Verify(pub, msg, sig1))
	return nil
}
