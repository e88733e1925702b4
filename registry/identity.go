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

package registry

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	IdentitySize = 32

	// IdentityHrp is the bech32 human readable prefix for identities
	IdentityHrp = "lb"
)

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the public identity of a party or account: an ed25519 public key
type Identity [IdentitySize]byte

// SystemProgramID is the identity of the host's account allocator
var SystemProgramID = Identity{}

// IdentityFromBytes copies a 32-byte key into an Identity
func IdentityFromBytes(b []byte) (Identity, error) {
	var ret Identity
	if len(b) != IdentitySize {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidIdentity,
			IdentitySize,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// DeriveIdentity produces a deterministic identity from a seed string. It is
// used for well-known program addresses that have no private key.
func DeriveIdentity(seed string) Identity {
	return Identity(blake2b.Sum256([]byte(seed)))
}

// ParseIdentity accepts either the bech32 text form or 64 hex characters
func ParseIdentity(s string) (Identity, error) {
	if len(s) == hex.EncodedLen(IdentitySize) {
		if b, err := hex.DecodeString(s); err == nil {
			return IdentityFromBytes(b)
		}
	}
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	if hrp != IdentityHrp {
		return Identity{}, fmt.Errorf(
			"%w: unexpected prefix %q",
			ErrInvalidIdentity,
			hrp,
		)
	}
	convData, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	return IdentityFromBytes(convData)
}

func (i Identity) Bytes() []byte {
	return bytes.Clone(i[:])
}

func (i Identity) IsZero() bool {
	return i == Identity{}
}

func (i Identity) Hex() string {
	return hex.EncodeToString(i[:])
}

// String returns the bech32 form of the identity
func (i Identity) String() string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(i[:], 8, 5, true)
	if err != nil {
		return ""
	}
	encoded, err := bech32.Encode(IdentityHrp, convData)
	if err != nil {
		return ""
	}
	return encoded
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(text []byte) error {
	tmp, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = tmp
	return nil
}

// Compare orders identities bytewise
func (i Identity) Compare(other Identity) int {
	return bytes.Compare(i[:], other[:])
}
