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

import "errors"

var (
	ErrMissingSignature     = errors.New("missing required signature")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrInvalidNonce         = errors.New("nonce out of range")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountInUse         = errors.New("account already in use")
	ErrAccountNotWritable   = errors.New("account not writable in this call")
	ErrAccountTooLarge      = errors.New("account space exceeds maximum")
	ErrNotProgramOwned      = errors.New("account not owned by the registry program")
	ErrNotSystemAccount     = errors.New("account carries data and cannot send native value")
	ErrDataSizeChanged      = errors.New("account data length cannot change")
	ErrBalanceOverflow      = errors.New("balance overflow")
	ErrNotRegistry          = errors.New("account is not a registry")
	ErrFaucetLimit          = errors.New("airdrop amount outside faucet limit")
)
