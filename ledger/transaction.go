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

package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"golang.org/x/crypto/blake2b"
)

type TransactionHash [32]byte

func (h TransactionHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h TransactionHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *TransactionHash) UnmarshalText(text []byte) error {
	tmp, err := ParseTransactionHash(string(text))
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

// ParseTransactionHash parses the hex form of a transaction hash
func ParseTransactionHash(s string) (TransactionHash, error) {
	var ret TransactionHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("decode transaction hash: %w", err)
	}
	if len(b) != len(ret) {
		return ret, fmt.Errorf(
			"invalid transaction hash length: %d",
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

type Signature struct {
	cbor.StructAsArray
	Signer    registry.Identity
	Signature []byte
}

// Transaction carries a single instruction together with the signatures of
// every account the instruction marks as a signer. The nonce makes otherwise
// identical calls distinct.
type Transaction struct {
	cbor.StructAsArray
	Instruction program.Instruction
	Nonce       uint64
	Signatures  []Signature
}

type transactionBody struct {
	cbor.StructAsArray
	Instruction *program.Instruction
	Nonce       uint64
}

// NewTransaction wraps an instruction in an unsigned transaction
func NewTransaction(ins program.Instruction, nonce uint64) *Transaction {
	return &Transaction{
		Instruction: ins,
		Nonce:       nonce,
	}
}

// DecodeTransaction parses the CBOR wire form of a transaction
func DecodeTransaction(data []byte) (*Transaction, error) {
	var ret Transaction
	if _, err := cbor.Decode(data, &ret); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &ret, nil
}

// Encode returns the CBOR wire form of the transaction
func (t *Transaction) Encode() ([]byte, error) {
	return cbor.Encode(t)
}

// Body returns the signed portion of the transaction
func (t *Transaction) Body() ([]byte, error) {
	return cbor.Encode(
		&transactionBody{
			Instruction: &t.Instruction,
			Nonce:       t.Nonce,
		},
	)
}

func (t *Transaction) Hash() (TransactionHash, error) {
	body, err := t.Body()
	if err != nil {
		return TransactionHash{}, err
	}
	return blake2b.Sum256(body), nil
}

// Sign adds a signature by key over the transaction hash, replacing any
// earlier signature by the same signer
func (t *Transaction) Sign(key ed25519.PrivateKey) error {
	signer, err := registry.IdentityFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	hash, err := t.Hash()
	if err != nil {
		return err
	}
	sig := Signature{
		Signer:    signer,
		Signature: ed25519.Sign(key, hash[:]),
	}
	for idx, existing := range t.Signatures {
		if existing.Signer == signer {
			t.Signatures[idx] = sig
			return nil
		}
	}
	t.Signatures = append(t.Signatures, sig)
	return nil
}

// Verify checks that every signer the instruction requires has produced a
// valid signature over the transaction hash
func (t *Transaction) Verify() (TransactionHash, error) {
	hash, err := t.Hash()
	if err != nil {
		return hash, err
	}
	// History rows store the nonce as a signed SQL integer
	if t.Nonce > math.MaxInt64 {
		return hash, fmt.Errorf("%w: %d", ErrInvalidNonce, t.Nonce)
	}
	for _, signer := range t.Instruction.Signers() {
		var sig *Signature
		for idx := range t.Signatures {
			if t.Signatures[idx].Signer == signer {
				sig = &t.Signatures[idx]
				break
			}
		}
		if sig == nil {
			return hash, fmt.Errorf("%w: %s", ErrMissingSignature, signer)
		}
		if !ed25519.Verify(signer.Bytes(), hash[:], sig.Signature) {
			return hash, fmt.Errorf("%w: %s", ErrInvalidSignature, signer)
		}
	}
	return hash, nil
}

// PrimarySigner returns the first signer of the instruction, or the zero
// identity for unsigned calls
func (t *Transaction) PrimarySigner() registry.Identity {
	signers := t.Instruction.Signers()
	if len(signers) == 0 {
		return registry.SystemProgramID
	}
	return signers[0]
}
