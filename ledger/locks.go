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
	"slices"
	"sync"

	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
)

type accountLock struct {
	sync.RWMutex
	refs int
}

// accountLocks serializes calls that write the same account. Calls that
// only read an account share its lock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[registry.Identity]*accountLock
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		locks: make(map[registry.Identity]*accountLock),
	}
}

type lockRequest struct {
	address  registry.Identity
	writable bool
}

// acquire locks every account referenced by metas and returns the function
// that releases them. Locks are taken in address order so that overlapping
// calls cannot deadlock.
func (l *accountLocks) acquire(metas []program.AccountMeta) func() {
	reqs := make([]lockRequest, 0, len(metas))
	for _, meta := range metas {
		if meta.Address.IsZero() {
			continue
		}
		idx := slices.IndexFunc(reqs, func(r lockRequest) bool {
			return r.address == meta.Address
		})
		if idx >= 0 {
			reqs[idx].writable = reqs[idx].writable || meta.Writable
			continue
		}
		reqs = append(
			reqs,
			lockRequest{address: meta.Address, writable: meta.Writable},
		)
	}
	slices.SortFunc(reqs, func(a, b lockRequest) int {
		return a.address.Compare(b.address)
	})
	held := make([]*accountLock, len(reqs))
	l.mu.Lock()
	for idx, req := range reqs {
		lock, ok := l.locks[req.address]
		if !ok {
			lock = &accountLock{}
			l.locks[req.address] = lock
		}
		lock.refs++
		held[idx] = lock
	}
	l.mu.Unlock()
	for idx, req := range reqs {
		if req.writable {
			held[idx].Lock()
		} else {
			held[idx].RLock()
		}
	}
	return func() {
		for idx := len(reqs) - 1; idx >= 0; idx-- {
			if reqs[idx].writable {
				held[idx].Unlock()
			} else {
				held[idx].RUnlock()
			}
		}
		l.mu.Lock()
		for idx, req := range reqs {
			held[idx].refs--
			if held[idx].refs == 0 {
				delete(l.locks, req.address)
			}
		}
		l.mu.Unlock()
	}
}

// size returns the number of accounts with a live lock
func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
