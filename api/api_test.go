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

package api_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinklabs-io/linkboard/api"
	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

const testLink = "https://media.example.com/media/2yLNN4wTy7Zr8JSXHB/giphy.gif"

type testKey struct {
	priv ed25519.PrivateKey
	id   registry.Identity
}

func newTestKey(t *testing.T, name string) testKey {
	t.Helper()
	seed := blake2b.Sum256([]byte(name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	id, err := registry.IdentityFromBytes(priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return testKey{priv: priv, id: id}
}

func newTestServer(t *testing.T, devMode bool) (*api.Client, *httptest.Server) {
	t.Helper()
	eb := event.NewEventBus(nil, nil)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		EventBus:      eb,
		BlobCacheSize: 1 << 20,
	})
	require.NoError(t, err)
	srv := api.New(api.Config{DevMode: devMode}, ls, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		eb.Stop()
		_ = ls.Close()
	})
	return api.NewClient(ts.URL), ts
}

func signed(t *testing.T, ins program.Instruction, nonce uint64, keys ...testKey) *ledger.Transaction {
	t.Helper()
	tx := ledger.NewTransaction(ins, nonce)
	for _, key := range keys {
		require.NoError(t, tx.Sign(key.priv))
	}
	return tx
}

func requireStatus(t *testing.T, err error, status int) *api.APIError {
	t.Helper()
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	return apiErr
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestRegistryLifecycle(t *testing.T) {
	client, _ := newTestServer(t, true)
	ctx := context.Background()
	reg := newTestKey(t, "registry")
	payer := newTestKey(t, "payer")
	bob := newTestKey(t, "bob")

	info, err := client.Airdrop(ctx, payer.id, program.UnitsPerCoin)
	require.NoError(t, err)
	assert.Equal(t, program.UnitsPerCoin, info.Balance)

	receipt, err := client.Submit(ctx, signed(t, program.NewInitialize(reg.id, payer.id), 1, reg, payer))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusApplied, receipt.Status)
	_, err = client.Submit(ctx, signed(t, program.NewAddEntry(reg.id, bob.id, testLink), 2, bob))
	require.NoError(t, err)
	_, err = client.Submit(ctx, signed(t, program.NewVote(reg.id, testLink), 3))
	require.NoError(t, err)

	rec, err := client.Registry(ctx, reg.id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.EntryCount)
	assert.Equal(t, uint64(1), rec.VoteCount)
	require.Len(t, rec.Entries, 1)
	assert.Equal(t, bob.id, rec.Entries[0].Submitter)
	assert.Equal(t, uint64(1), rec.Entries[0].Votes)

	regs, err := client.Registries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Identity{reg.id}, regs)

	tx, err := client.Transaction(ctx, receipt.Hash)
	require.NoError(t, err)
	assert.Equal(t, "initialize", tx.Op)
	assert.Equal(t, reg.id.String(), tx.Signer)
	addrs := make([]string, 0, len(tx.Accounts))
	for _, acct := range tx.Accounts {
		addrs = append(addrs, acct.Address)
	}
	assert.ElementsMatch(t, []string{reg.id.String(), payer.id.String()}, addrs)

	txs, err := client.Transactions(ctx, registry.Identity{}, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "vote", txs[0].Op)
	bobTxs, err := client.Transactions(ctx, bob.id, 10)
	require.NoError(t, err)
	require.Len(t, bobTxs, 1)
	assert.Equal(t, "add_entry", bobTxs[0].Op)
}

func TestSubmitErrorStatus(t *testing.T) {
	client, ts := newTestServer(t, true)
	ctx := context.Background()
	reg := newTestKey(t, "registry")
	payer := newTestKey(t, "payer")
	alice := newTestKey(t, "alice")

	// Missing signature
	_, err := client.Submit(ctx, signed(t, program.NewInitialize(reg.id, payer.id), 1, payer))
	requireStatus(t, err, http.StatusUnauthorized)

	// Processed and failed: the receipt comes back with the error
	_, err = client.Submit(ctx, signed(t, program.NewTransfer(alice.id, payer.id), 2, alice))
	apiErr := requireStatus(t, err, http.StatusPaymentRequired)
	require.NotNil(t, apiErr.Receipt)
	assert.Equal(t, models.TransactionStatusFailed, apiErr.Receipt.Status)

	// Replay of the failed transaction
	_, err = client.Submit(ctx, signed(t, program.NewTransfer(alice.id, payer.id), 2, alice))
	requireStatus(t, err, http.StatusConflict)

	// Nonce too large to record
	_, err = client.Submit(ctx, signed(t, program.NewVote(reg.id, testLink), math.MaxUint64))
	requireStatus(t, err, http.StatusBadRequest)

	// Tip to the system program
	_, err = client.Submit(ctx, signed(t, program.NewTransfer(alice.id, registry.SystemProgramID), 3, alice))
	requireStatus(t, err, http.StatusBadRequest)

	// Registry that was never initialized
	_, err = client.Registry(ctx, reg.id)
	requireStatus(t, err, http.StatusNotFound)

	// Garbage body
	resp, err := http.Post(ts.URL+"/api/v1/transactions", "application/cbor", bytes.NewReader([]byte{0xff, 0x00}))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bad address
	resp, err = http.Get(ts.URL + "/api/v1/accounts/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFaucetRequiresDevMode(t *testing.T) {
	client, _ := newTestServer(t, false)
	_, err := client.Airdrop(context.Background(), newTestKey(t, "alice").id, 1)
	requireStatus(t, err, http.StatusForbidden)
}

func TestFaucetLimit(t *testing.T) {
	client, _ := newTestServer(t, true)
	_, err := client.Airdrop(context.Background(), newTestKey(t, "alice").id, 0)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestServerStartStop(t *testing.T) {
	srv := api.New(api.Config{ListenAddress: "127.0.0.1:0"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.Error(t, srv.Start(ctx))
	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
}
