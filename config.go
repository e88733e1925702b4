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

package linkboard

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// runMode constants for operational mode configuration
const (
	runModeServe = "serve"
	runModeDev   = "dev"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	dataDir            string
	listenAddress      string
	runMode            string
	blobCacheSize      uint64
	blobIndexCacheSize uint64
	faucetLimit        uint64
	shutdownTimeout    time.Duration
	tracing            bool
	tracingStdout      bool
}

// isDevMode returns true if running in development mode
func (c *Config) isDevMode() bool {
	return c.runMode == runModeDev
}

func (c *Config) validate() error {
	switch c.runMode {
	case runModeServe, runModeDev:
	default:
		return errors.New("invalid run mode: " + c.runMode)
	}
	if c.faucetLimit == 0 {
		return errors.New("faucet limit must be positive")
	}
	if c.tracingStdout && !c.tracing {
		return errors.New("stdout tracing requires tracing to be enabled")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		runMode:         runModeServe,
		faucetLimit:     ledger.DefaultFaucetLimit,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobCacheSizes overrides the badger block and index cache sizes. Zero keeps the default
func WithBlobCacheSizes(blockCacheSize, indexCacheSize uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blobCacheSize = blockCacheSize
		c.blobIndexCacheSize = indexCacheSize
	}
}

// WithLogger specifies the logger to use. This will otherwise default to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithListenAddress specifies the listen address for the REST API. An empty
// string disables the API server.
func WithListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.listenAddress = addr
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. Default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithRunMode sets the operational mode ("serve" or "dev"). Dev mode enables
// the faucet endpoint.
func WithRunMode(mode string) ConfigOptionFunc {
	return func(c *Config) {
		c.runMode = mode
	}
}

// WithFaucetLimit caps the amount a single faucet request may credit, in native units
func WithFaucetLimit(limit uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.faucetLimit = limit
	}
}
