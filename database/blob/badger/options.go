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

package badger

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// BlobStoreBadgerOptionFunc configures a BlobStoreBadger in New
type BlobStoreBadgerOptionFunc func(*BlobStoreBadger)

// WithDataDir keeps account state under dataDir/blob. Without it the store
// lives in memory and value log GC is off.
func WithDataDir(dataDir string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.dataDir = dataDir
	}
}

// WithLogger routes badger's warnings and errors to logger
func WithLogger(logger *slog.Logger) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.logger = logger
	}
}

// WithPromRegistry exports the LSM and value log sizes
func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.promRegistry = registry
	}
}

// WithCacheSizes overrides the block and index cache sizes. A zero size
// keeps the default.
func WithCacheSizes(block, index uint64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		if block > 0 {
			b.blockCacheSize = block
		}
		if index > 0 {
			b.indexCacheSize = index
		}
	}
}
