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

// Package linkboard wires the ledger, the event bus and the REST API into a
// runnable node.
package linkboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/linkboard/api"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
)

type Node struct {
	eventBus      *event.EventBus
	ledgerState   *ledger.LedgerState
	apiServer     *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	return n, nil
}

// LedgerState returns the node's ledger. It is nil until Run has opened it.
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// EventBus returns the node's event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Start opens the ledger and starts the API server without blocking
func (n *Node) Start(ctx context.Context) error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:             n.config.logger,
			EventBus:           n.eventBus,
			PromRegistry:       n.config.promRegistry,
			DataDir:            n.config.dataDir,
			BlobCacheSize:      n.config.blobCacheSize,
			BlobIndexCacheSize: n.config.blobIndexCacheSize,
			FaucetLimit:        n.config.faucetLimit,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load state database: %w", err)
	}
	n.ledgerState = state
	// Log committed registry activity
	n.eventBus.SubscribeFunc(
		ledger.TransactionEventType,
		n.handleTransactionEvent,
	)
	n.eventBus.SubscribeFunc(
		program.EventTypeEntryAdded,
		n.handleEntryAddedEvent,
	)
	// Configure REST API
	if n.config.listenAddress != "" {
		n.apiServer = api.New(
			api.Config{
				ListenAddress: n.config.listenAddress,
				DevMode:       n.config.isDevMode(),
			},
			n.ledgerState,
			n.config.logger,
		)
		if err := n.apiServer.Start(ctx); err != nil {
			return err
		}
	}
	n.config.logger.Info(
		"node started",
		"component", "node",
		"mode", n.config.runMode,
	)
	return nil
}

// Run starts the node and blocks until ctx is cancelled or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

func (n *Node) handleTransactionEvent(evt event.Event) {
	data, ok := evt.Data.(ledger.TransactionEvent)
	if !ok {
		return
	}
	n.config.logger.Info(
		fmt.Sprintf(
			"transaction %s (%s): %s",
			data.Receipt.Hash,
			data.Receipt.Op,
			data.Receipt.Status,
		),
		"component", "node",
	)
}

func (n *Node) handleEntryAddedEvent(evt event.Event) {
	data, ok := evt.Data.(program.EntryAddedEvent)
	if !ok {
		return
	}
	n.config.logger.Info(
		fmt.Sprintf(
			"registry %s: entry %d added by %s",
			data.Registry,
			data.Index,
			data.Entry.Submitter,
		),
		"component", "node",
		"link", data.Entry.Link,
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Stop accepting new work
	if n.apiServer != nil {
		if stopErr := n.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Flush state and close database
	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
