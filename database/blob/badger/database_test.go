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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/linkboard/database/blob/badger"
	"github.com/blinklabs-io/linkboard/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGetSet(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("acct:a"), []byte("one")))
	require.NoError(t, store.Set(txn, []byte("acct:b"), []byte("two")))
	require.NoError(t, store.Set(txn, []byte("other"), []byte("three")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("acct:a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), val)
	_, err = store.Get(txn, []byte("missing"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	keys, err := store.Keys(txn, []byte("acct:"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("acct:a"), []byte("acct:b")}, keys)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Rollback())
	// Finished transactions are rejected
	require.ErrorIs(t, store.Set(txn, []byte("k"), []byte("v")), types.ErrTxnFinished)

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestCommitTimestamp(t *testing.T) {
	store, err := badger.New(badger.WithPromRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer store.Close()

	ts, err := store.CommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000000, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.CommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)

	// The stamp is not an account key
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	keys, err := store.Keys(txn, []byte("acct:"))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestPersistentStore(t *testing.T) {
	dir := t.TempDir()
	store, err := badger.New(badger.WithDataDir(dir))
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dir))
	require.NoError(t, err)
	defer store.Close()
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
