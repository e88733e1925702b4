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
	"context"
	"fmt"
	"time"

	"github.com/blinklabs-io/linkboard/database"
	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Receipt describes the outcome of a processed transaction
type Receipt struct {
	Hash   TransactionHash `json:"hash"`
	Op     string          `json:"op"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
}

// TransactionEvent is the data of a TransactionEventType event
type TransactionEvent struct {
	Receipt Receipt
}

// Submit authenticates a transaction and runs its instruction. Either every
// effect of the call is committed or none is. Calls that reach the program
// and fail are still recorded, so a failed transaction cannot be replayed.
func (ls *LedgerState) Submit(
	ctx context.Context,
	tx *Transaction,
) (*Receipt, error) {
	start := time.Now()
	ins := &tx.Instruction
	_, span := ls.tracer.Start(
		ctx,
		"ledger.Submit",
		trace.WithAttributes(attribute.String("op", ins.Op.String())),
	)
	defer span.End()
	hash, err := tx.Verify()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("hash", hash.String()))
	if err := program.Validate(ins); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	release := ls.locks.acquire(ins.Accounts)
	defer release()

	receipt := &Receipt{
		Hash:   hash,
		Op:     ins.Op.String(),
		Status: models.TransactionStatusApplied,
	}
	record := &models.Transaction{
		Hash:      hash[:],
		Op:        receipt.Op,
		Signer:    tx.PrimarySigner().Bytes(),
		Nonce:     tx.Nonce,
		CreatedAt: start,
	}
	for _, meta := range ins.Accounts {
		if meta.Address.IsZero() {
			continue
		}
		record.Accounts = append(
			record.Accounts,
			models.AccountTransaction{
				Address:  meta.Address.Bytes(),
				Writable: meta.Writable,
			},
		)
	}

	txn := ls.db.Transaction(true)
	existing, err := ls.db.GetTransaction(hash[:], txn)
	if err != nil {
		txn.Release()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		txn.Release()
		span.SetStatus(codes.Error, ErrDuplicateTransaction.Error())
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, hash)
	}
	cctx := newCallContext(ls.db, txn, ins.Accounts)
	callErr := program.Process(cctx, ins)
	if callErr == nil {
		callErr = cctx.flush()
	}
	if callErr != nil {
		if err := txn.DiscardAccounts(); err != nil {
			ls.config.Logger.Error(
				"failed to discard account state",
				"component", "ledger",
				"hash", hash.String(),
				"error", err,
			)
		}
		receipt.Status = models.TransactionStatusFailed
		receipt.Error = callErr.Error()
		record.Status = models.TransactionStatusFailed
		record.Error = callErr.Error()
	}
	// A failed call commits its history record alone
	if err := ls.db.SetTransaction(record, txn); err != nil {
		txn.Release()
		return nil, ls.commitFailed(span, hash, receipt.Op, err)
	}
	if err := txn.Commit(); err != nil {
		return nil, ls.commitFailed(span, hash, receipt.Op, err)
	}
	if callErr != nil {
		span.RecordError(callErr)
		span.SetStatus(codes.Error, callErr.Error())
	}
	ls.metrics.transactionsTotal.WithLabelValues(receipt.Op, receipt.Status).Inc()
	ls.metrics.submitDuration.Observe(time.Since(start).Seconds())
	ls.config.Logger.Debug(
		"processed transaction",
		"component", "ledger",
		"hash", hash.String(),
		"op", receipt.Op,
		"status", receipt.Status,
	)
	// Events from a rolled back call were never committed
	if callErr == nil {
		for _, evt := range cctx.events {
			ls.config.EventBus.Publish(evt.Type, evt)
		}
	}
	ls.config.EventBus.Publish(
		TransactionEventType,
		event.NewEvent(TransactionEventType, TransactionEvent{Receipt: *receipt}),
	)
	if callErr != nil {
		return receipt, fmt.Errorf("transaction %s failed: %w", hash, callErr)
	}
	return receipt, nil
}

func (ls *LedgerState) commitFailed(
	span trace.Span,
	hash TransactionHash,
	op string,
	err error,
) error {
	err = fmt.Errorf("commit transaction %s: %w", hash, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ls.metrics.transactionsTotal.WithLabelValues(op, "error").Inc()
	ls.config.Logger.Error(
		"failed to commit transaction",
		"component", "ledger",
		"hash", hash.String(),
		"op", op,
		"error", err,
	)
	return err
}

// Airdrop credits amount to an address from outside the ledger. It backs the
// development faucet.
func (ls *LedgerState) Airdrop(
	ctx context.Context,
	to registry.Identity,
	amount uint64,
) error {
	_, span := ls.tracer.Start(ctx, "ledger.Airdrop")
	defer span.End()
	if to == registry.SystemProgramID {
		return fmt.Errorf("%w: airdrop", program.ErrSystemAccountWrite)
	}
	if amount == 0 || amount > ls.config.FaucetLimit {
		return fmt.Errorf(
			"%w: %d not in 1..%d",
			ErrFaucetLimit,
			amount,
			ls.config.FaucetLimit,
		)
	}
	metas := []program.AccountMeta{{Address: to, Writable: true}}
	release := ls.locks.acquire(metas)
	defer release()
	txn := ls.db.AccountTransaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		cctx := newCallContext(ls.db, txn, metas)
		acct, err := cctx.load(to)
		if err != nil {
			return err
		}
		if acct.Balance+amount < acct.Balance {
			return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
		}
		acct.Balance += amount
		if err := cctx.markDirty(to); err != nil {
			return err
		}
		return cctx.flush()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	ls.metrics.airdropsTotal.Inc()
	ls.config.Logger.Info(
		fmt.Sprintf("airdropped %d to %s", amount, to),
		"component", "ledger",
	)
	ls.config.EventBus.Publish(
		program.EventTypeTransfer,
		event.NewEvent(
			program.EventTypeTransfer,
			program.TransferEvent{
				From:   registry.SystemProgramID,
				To:     to,
				Amount: amount,
			},
		),
	)
	return nil
}
