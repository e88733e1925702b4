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

package linkboard

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeLifecycle(t *testing.T) {
	n, err := New(NewConfig(
		WithRunMode(runModeDev),
		WithListenAddress("127.0.0.1:0"),
		WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, n.Start(ctx))
	require.Error(t, n.Start(ctx))
	ls := n.LedgerState()
	require.NotNil(t, ls)

	_, evtCh := n.EventBus().Subscribe(program.EventTypeInitialized)

	_, regPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, payerPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	reg, err := registry.IdentityFromBytes(regPriv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	payer, err := registry.IdentityFromBytes(payerPriv.Public().(ed25519.PublicKey))
	require.NoError(t, err)

	require.NoError(t, ls.Airdrop(ctx, payer, program.UnitsPerCoin))
	tx := ledger.NewTransaction(program.NewInitialize(reg, payer), 1)
	require.NoError(t, tx.Sign(regPriv))
	require.NoError(t, tx.Sign(payerPriv))
	_, err = ls.Submit(ctx, tx)
	require.NoError(t, err)

	select {
	case evt := <-evtCh:
		data, ok := evt.Data.(program.InitializedEvent)
		require.True(t, ok)
		assert.Equal(t, reg, data.Registry)
		assert.Equal(t, event.EventType(program.EventTypeInitialized), evt.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initialized event")
	}

	require.NoError(t, n.Stop())
	require.NoError(t, n.Stop())
}

func TestNodeRunReturnsOnCancel(t *testing.T) {
	n, err := New(NewConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, n.Stop())
}
