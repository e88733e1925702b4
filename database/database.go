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

// Package database persists ledger state. Account state lives in a badger
// blob store and the processed transaction history in a sqlite metadata
// store. A Txn spans both so that a call's account writes and its history
// record commit together.
package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/linkboard/database/blob/badger"
	"github.com/blinklabs-io/linkboard/database/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for a Database
type Config struct {
	PromRegistry       prometheus.Registerer
	Logger             *slog.Logger
	DataDir            string
	BlobCacheSize      uint64
	BlobIndexCacheSize uint64
}

type Database struct {
	logger   *slog.Logger
	blob     *badger.BlobStoreBadger
	metadata *sqlite.MetadataStoreSqlite
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using the provided data directory
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataDb, err := sqlite.New(
		config.DataDir,
		logger,
		config.PromRegistry,
	)
	if err != nil {
		if metadataDb != nil {
			_ = metadataDb.Close()
		}
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobDb, err := badger.New(
		badger.WithDataDir(config.DataDir),
		badger.WithLogger(logger),
		badger.WithPromRegistry(config.PromRegistry),
		badger.WithCacheSizes(config.BlobCacheSize, config.BlobIndexCacheSize),
	)
	if err != nil {
		_ = metadataDb.Close()
		if blobDb != nil {
			_ = blobDb.Close()
		}
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
	}
	if err := db.verifyStamps(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
