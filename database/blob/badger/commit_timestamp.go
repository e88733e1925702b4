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

package badger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/linkboard/database/types"
)

// Kept outside the account key prefix so account scans never see it
var commitTimestampKey = []byte("meta:commit_timestamp")

// CommitTimestamp returns the last shared commit time, or 0 if there has
// been none. A nil txn reads the committed value.
func (d *BlobStoreBadger) CommitTimestamp(txn types.Txn) (int64, error) {
	if txn == nil {
		txn = d.NewTransaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	val, err := d.Get(txn, commitTimestampKey)
	switch {
	case errors.Is(err, types.ErrBlobKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, err
	case len(val) != 8:
		return 0, fmt.Errorf("malformed commit timestamp: %d bytes", len(val))
	}
	return int64(binary.BigEndian.Uint64(val)), nil //nolint:gosec // written from an int64
}

func (d *BlobStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	val := binary.BigEndian.AppendUint64(nil, uint64(timestamp)) //nolint:gosec // read back as int64
	return d.Set(txn, commitTimestampKey, val)
}
