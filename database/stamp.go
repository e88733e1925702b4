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

package database

import "fmt"

// CommitTimestampError reports stores whose last shared commit differs
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (blob)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// HistoryBehind reports whether account state was committed without the
// history record of the same call
func (e CommitTimestampError) HistoryBehind() bool {
	return e.BlobTimestamp > e.MetadataTimestamp
}

func (d *Database) verifyStamps() error {
	history, err := d.metadata.CommitTimestamp(nil)
	if err != nil {
		return fmt.Errorf("read history commit timestamp: %w", err)
	}
	// Nothing has been committed to both stores yet
	if history <= 0 {
		return nil
	}
	accounts, err := d.blob.CommitTimestamp(nil)
	if err != nil {
		return fmt.Errorf("read account commit timestamp: %w", err)
	}
	if accounts != history {
		return CommitTimestampError{
			MetadataTimestamp: history,
			BlobTimestamp:     accounts,
		}
	}
	return nil
}

func (d *Database) stamp(t *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(timestamp, t.history); err != nil {
		return err
	}
	return d.blob.SetCommitTimestamp(timestamp, t.accounts)
}

// Realign stamps both stores with a new shared commit. It clears a
// CommitTimestampError once the caller accepts account state as it is.
func (d *Database) Realign() error {
	return d.Transaction(true).Do(func(*Txn) error {
		return nil
	})
}
