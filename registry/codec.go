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

package registry

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"
)

const (
	// DefaultSpace is the fixed account size allocated for a registry
	DefaultSpace uint64 = 9000

	DiscriminatorSize = 8

	// discriminator + entry_count + vote_count + entries length
	headerSize = DiscriminatorSize + 8 + 8 + 4
	// link length + submitter + votes, excluding the link bytes
	entryOverhead = 4 + IdentitySize + 8
)

var (
	ErrNotRegistry = errors.New("account does not hold a registry")
	ErrTruncated   = errors.New("registry data truncated")
)

// Discriminator tags account data as a registry record
var Discriminator = func() [DiscriminatorSize]byte {
	sum := blake2b.Sum256([]byte("account:Registry"))
	var ret [DiscriminatorSize]byte
	copy(ret[:], sum[:DiscriminatorSize])
	return ret
}()

func entrySize(e Entry) uint64 {
	return entryOverhead + uint64(len(e.Link))
}

// EncodedSize returns the number of bytes used by the encoded record,
// including the discriminator
func (r *Record) EncodedSize() uint64 {
	size := uint64(headerSize)
	for _, e := range r.Entries {
		size += entrySize(e)
	}
	return size
}

// Encode serializes the record into a buffer of exactly space bytes. Unused
// space is zero filled.
func (r *Record) Encode(space uint64) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	size := r.EncodedSize()
	if size > space {
		return nil, fmt.Errorf(
			"%w: %d bytes needed, %d available",
			ErrCapacityExceeded,
			size,
			space,
		)
	}
	if len(r.Entries) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many entries", ErrCapacityExceeded)
	}
	buf := make([]byte, space)
	off := copy(buf, Discriminator[:])
	binary.LittleEndian.PutUint64(buf[off:], r.EntryCount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], r.VoteCount)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(r.Entries))) //nolint:gosec // checked above
	off += 4
	for _, e := range r.Entries {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(e.Link))) //nolint:gosec // bounded by space
		off += 4
		off += copy(buf[off:], e.Link)
		off += copy(buf[off:], e.Submitter[:])
		binary.LittleEndian.PutUint64(buf[off:], e.Votes)
		off += 8
	}
	return buf, nil
}

// Decode parses account data produced by Encode. Trailing bytes are ignored.
func Decode(data []byte) (*Record, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if !bytes.Equal(data[:DiscriminatorSize], Discriminator[:]) {
		return nil, ErrNotRegistry
	}
	d := decoder{data: data, off: DiscriminatorSize}
	ret := &Record{}
	ret.EntryCount = d.uint64()
	ret.VoteCount = d.uint64()
	count := d.uint32()
	if d.err != nil {
		return nil, d.err
	}
	// Every entry takes at least entryOverhead bytes, which bounds the
	// allocation below by the input size
	if uint64(count)*entryOverhead > uint64(len(data)-d.off) {
		return nil, ErrTruncated
	}
	ret.Entries = make([]Entry, 0, count)
	for range count {
		var e Entry
		linkLen := d.uint32()
		e.Link = string(d.bytes(int(linkLen)))
		copy(e.Submitter[:], d.bytes(IdentitySize))
		e.Votes = d.uint64()
		if d.err != nil {
			return nil, d.err
		}
		ret.Entries = append(ret.Entries, e)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.data)-d.off < n {
		d.err = ErrTruncated
		return nil
	}
	ret := d.data[d.off : d.off+n]
	d.off += n
	return ret
}

func (d *decoder) uint64() uint64 {
	b := d.bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) uint32() uint32 {
	b := d.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}
