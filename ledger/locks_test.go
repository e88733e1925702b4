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
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/stretchr/testify/assert"
)

func TestAccountLocksExclusiveWriter(t *testing.T) {
	locks := newAccountLocks()
	addr := registry.DeriveIdentity("registry")
	release := locks.acquire([]program.AccountMeta{{Address: addr, Writable: true}})
	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := locks.acquire([]program.AccountMeta{{Address: addr}})
		acquired.Store(true)
		r()
	}()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, acquired.Load(), "reader acquired lock held by writer")
	release()
	<-done
	assert.True(t, acquired.Load())
	assert.Equal(t, 0, locks.size())
}

func TestAccountLocksSharedReaders(t *testing.T) {
	locks := newAccountLocks()
	addr := registry.DeriveIdentity("registry")
	r1 := locks.acquire([]program.AccountMeta{{Address: addr}})
	r2 := locks.acquire([]program.AccountMeta{{Address: addr}})
	assert.Equal(t, 1, locks.size())
	r1()
	r2()
	assert.Equal(t, 0, locks.size())
}

func TestAccountLocksDuplicateAndSystemAccounts(t *testing.T) {
	locks := newAccountLocks()
	addr := registry.DeriveIdentity("payer")
	// The same account twice must not self-deadlock
	release := locks.acquire([]program.AccountMeta{
		{Address: addr},
		{Address: addr, Writable: true},
		{Address: registry.SystemProgramID},
	})
	assert.Equal(t, 1, locks.size())
	release()
	assert.Equal(t, 0, locks.size())
}

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(128*RentPerByte), MinimumBalance(0))
	assert.Equal(t, uint64(63_530_880), MinimumBalance(9000))
}
