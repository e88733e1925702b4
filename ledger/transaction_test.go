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

package ledger_test

import (
	"testing"

	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionWireForm(t *testing.T) {
	alice := newTestKey(t, "alice")
	bob := newTestKey(t, "bob")
	tx := ledger.NewTransaction(program.NewTransfer(alice.id, bob.id), 7)
	require.NoError(t, tx.Sign(alice.priv))
	// Signing twice replaces the signature
	require.NoError(t, tx.Sign(alice.priv))
	require.Len(t, tx.Signatures, 1)

	data, err := tx.Encode()
	require.NoError(t, err)
	decoded, err := ledger.DecodeTransaction(data)
	require.NoError(t, err)
	hash, err := decoded.Verify()
	require.NoError(t, err)
	origHash, err := tx.Hash()
	require.NoError(t, err)
	assert.Equal(t, origHash, hash)
	assert.Equal(t, alice.id, decoded.PrimarySigner())

	parsed, err := ledger.ParseTransactionHash(hash.String())
	require.NoError(t, err)
	assert.Equal(t, hash, parsed)
	_, err = ledger.ParseTransactionHash("abcd")
	require.Error(t, err)
}

func TestTransactionHashCoversNonce(t *testing.T) {
	ins := program.NewVote(newTestKey(t, "registry").id, "link")
	h1, err := ledger.NewTransaction(ins, 1).Hash()
	require.NoError(t, err)
	h2, err := ledger.NewTransaction(ins, 2).Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
