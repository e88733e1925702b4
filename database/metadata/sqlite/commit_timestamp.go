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

package sqlite

import (
	"github.com/blinklabs-io/linkboard/database/types"
)

// commitStamp is the single row holding the last commit shared with the
// account store
type commitStamp struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

func (commitStamp) TableName() string {
	return "commit_timestamp"
}

// CommitTimestamp returns the last shared commit time, or 0 if there has
// been none. A nil txn reads the committed value.
func (d *MetadataStoreSqlite) CommitTimestamp(txn types.Txn) (int64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var rows []commitStamp
	if result := db.Limit(1).Find(&rows); result.Error != nil {
		return 0, result.Error
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Timestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(&commitStamp{ID: 1, Timestamp: timestamp}).Error
}
