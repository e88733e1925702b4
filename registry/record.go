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

// Package registry defines the persisted registry record: aggregate counters
// plus the ordered, append-only list of submitted entries and their votes.
package registry

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("registry capacity exceeded")
	ErrCorrupt          = errors.New("registry record corrupt")
)

// Entry is one submitted item. It lives inside a Record and is never
// addressed on its own.
type Entry struct {
	Link      string   `json:"link"`
	Submitter Identity `json:"submitter"`
	Votes     uint64   `json:"votes"`
}

// Record is the registry aggregate.
//
// EntryCount always equals len(Entries) after a completed operation.
// VoteCount counts vote calls, not credited votes, so it is not the sum of
// Entry.Votes: a vote for an unknown link still counts, and a vote for a link
// that was submitted twice credits both entries.
type Record struct {
	EntryCount uint64  `json:"entryCount"`
	VoteCount  uint64  `json:"voteCount"`
	Entries    []Entry `json:"entries"`
}

func NewRecord() *Record {
	return &Record{
		Entries: []Entry{},
	}
}

// Validate checks the record invariants
func (r *Record) Validate() error {
	if r.EntryCount != uint64(len(r.Entries)) {
		return fmt.Errorf(
			"%w: entry count %d does not match %d entries",
			ErrCorrupt,
			r.EntryCount,
			len(r.Entries),
		)
	}
	return nil
}

// Append adds a new entry with zero votes. The record is left unchanged if
// the result would not fit in space bytes.
func (r *Record) Append(
	link string,
	submitter Identity,
	space uint64,
) (Entry, error) {
	entry := Entry{
		Link:      link,
		Submitter: submitter,
		Votes:     0,
	}
	newSize := r.EncodedSize() + entrySize(entry)
	if newSize > space {
		return Entry{}, fmt.Errorf(
			"%w: %d bytes needed, %d available",
			ErrCapacityExceeded,
			newSize,
			space,
		)
	}
	r.Entries = append(r.Entries, entry)
	r.EntryCount++
	return entry, nil
}

// Vote credits every entry whose link matches exactly and then counts the
// call, whether or not anything matched. It returns the number of credited
// entries.
//
// This is a linear scan. It is bounded by the fixed account size; a larger
// registry would want a link index maintained on every append.
func (r *Record) Vote(link string) int {
	matched := 0
	for i := range r.Entries {
		if r.Entries[i].Link == link {
			r.Entries[i].Votes++
			matched++
		}
	}
	r.VoteCount++
	return matched
}

// VoteEntry credits the stored entry identified by the snapshot's link and
// submitter. Only the first such entry is credited. The call is counted
// regardless of the outcome. It returns the index of the credited entry and
// whether one was found.
func (r *Record) VoteEntry(snapshot Entry) (int, bool) {
	r.VoteCount++
	for i := range r.Entries {
		entry := &r.Entries[i]
		if entry.Link != snapshot.Link ||
			entry.Submitter != snapshot.Submitter {
			continue
		}
		entry.Votes++
		return i, true
	}
	return -1, false
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	ret := &Record{
		EntryCount: r.EntryCount,
		VoteCount:  r.VoteCount,
		Entries:    make([]Entry, len(r.Entries)),
	}
	copy(ret.Entries, r.Entries)
	return ret
}
