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

// Package ledger hosts the registry program. It keeps native balances and
// account data, authenticates transactions, and runs each call atomically
// against the database.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/linkboard/database"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TransactionEventType is published after every processed transaction
	TransactionEventType event.EventType = "ledger.transaction"

	// DefaultFaucetLimit caps a single airdrop at 10 coins
	DefaultFaucetLimit uint64 = 10_000_000_000

	tracerName = "github.com/blinklabs-io/linkboard/ledger"
)

type LedgerStateConfig struct {
	Logger             *slog.Logger
	EventBus           *event.EventBus
	PromRegistry       prometheus.Registerer
	DataDir            string
	BlobCacheSize      uint64
	BlobIndexCacheSize uint64
	FaucetLimit        uint64
}

type LedgerState struct {
	config  LedgerStateConfig
	db      *database.Database
	locks   *accountLocks
	tracer  trace.Tracer
	metrics stateMetrics
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.EventBus == nil {
		return nil, errors.New("event bus is required")
	}
	if cfg.FaucetLimit == 0 {
		cfg.FaucetLimit = DefaultFaucetLimit
	}
	ls := &LedgerState{
		config: cfg,
		locks:  newAccountLocks(),
		tracer: otel.Tracer(tracerName),
	}
	// Init metrics
	ls.metrics.init(ls.config.PromRegistry)
	// Load database
	needsRecovery := false
	db, err := database.New(&database.Config{
		Logger:             cfg.Logger,
		PromRegistry:       cfg.PromRegistry,
		DataDir:            cfg.DataDir,
		BlobCacheSize:      cfg.BlobCacheSize,
		BlobIndexCacheSize: cfg.BlobIndexCacheSize,
	})
	if db == nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ls.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			_ = db.Close()
			return nil, err
		}
		ls.config.Logger.Warn(
			"database initialization error, needs recovery",
			"error", err,
			"history_behind", dbErr.HistoryBehind(),
			"component", "ledger",
		)
		needsRecovery = true
	}
	if needsRecovery {
		if err := ls.recoverCommitTimestampConflict(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	ls.metrics.nodeStartTime.Set(float64(time.Now().Unix()))
	return ls, nil
}

// recoverCommitTimestampConflict realigns the stores after a partial commit.
// The blob store commits first, so account state is ahead and only the
// history record of the last call can be missing.
func (ls *LedgerState) recoverCommitTimestampConflict() error {
	return ls.db.Realign()
}

func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

func (ls *LedgerState) EventBus() *event.EventBus {
	return ls.config.EventBus
}

func (ls *LedgerState) Close() error {
	return ls.db.Close()
}
