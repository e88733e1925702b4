// Copyright 2025 Blink Labs Software
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

// Package keystore manages the ed25519 keys that sign transactions. Keys are
// stored as JSON envelopes holding the CBOR-encoded seed.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/blinklabs-io/linkboard/registry"
)

const (
	SigningKeyType      = "SigningKey_ed25519"
	VerificationKeyType = "VerificationKey_ed25519"

	// EnvAllowInsecureKeyPerms skips the Windows ACL check when set to
	// "true". Only use it after verifying the key file ACLs by hand.
	EnvAllowInsecureKeyPerms = "LINKBOARD_ALLOW_INSECURE_KEY_PERMS"
)

var (
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrWrongKeyType     = errors.New("unexpected key type")
	ErrInvalidKey       = errors.New("invalid key")
)

// SigningKey is an ed25519 private key with its description
type SigningKey struct {
	Description string
	key         ed25519.PrivateKey
}

// GenerateSigningKey creates a new random signing key
func GenerateSigningKey(description string) (*SigningKey, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return NewSigningKey(seed, description)
}

// NewSigningKey builds a signing key from a 32-byte seed
func NewSigningKey(seed []byte, description string) (*SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"%w: seed must be %d bytes, got %d",
			ErrInvalidKey,
			ed25519.SeedSize,
			len(seed),
		)
	}
	return &SigningKey{
		Description: description,
		key:         ed25519.NewKeyFromSeed(seed),
	}, nil
}

func (k *SigningKey) PrivateKey() ed25519.PrivateKey {
	return k.key
}

func (k *SigningKey) Seed() []byte {
	return k.key.Seed()
}

func (k *SigningKey) PublicKey() ed25519.PublicKey {
	return k.key.Public().(ed25519.PublicKey)
}

// Identity returns the ledger address controlled by the key
func (k *SigningKey) Identity() registry.Identity {
	var ret registry.Identity
	copy(ret[:], k.PublicKey())
	return ret
}
