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

const (
	// AccountStorageOverhead is the number of bytes charged for every
	// account in addition to its data
	AccountStorageOverhead = 128

	// RentPerByte is the balance an account must hold per stored byte to be
	// exempt from rent
	RentPerByte = 6960

	// MaxAccountSpace is the largest data allocation CreateAccount accepts
	MaxAccountSpace = 10 * 1024 * 1024
)

// MinimumBalance returns the balance an account holding space bytes of data
// must retain
func MinimumBalance(space uint64) uint64 {
	return (AccountStorageOverhead + space) * RentPerByte
}
