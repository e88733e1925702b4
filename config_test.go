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
	"testing"
	"time"

	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, runModeServe, cfg.runMode)
	assert.False(t, cfg.isDevMode())
	assert.Equal(t, ledger.DefaultFaucetLimit, cfg.faucetLimit)
	assert.Equal(t, DefaultShutdownTimeout, cfg.shutdownTimeout)
	assert.NotNil(t, cfg.logger)
	require.NoError(t, cfg.validate())
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithRunMode(runModeDev),
		WithDatabasePath("/tmp/linkboard"),
		WithListenAddress("127.0.0.1:9000"),
		WithFaucetLimit(42),
		WithShutdownTimeout(5*time.Second),
		WithBlobCacheSizes(1024, 512),
	)
	assert.True(t, cfg.isDevMode())
	assert.Equal(t, "/tmp/linkboard", cfg.dataDir)
	assert.Equal(t, "127.0.0.1:9000", cfg.listenAddress)
	assert.Equal(t, uint64(42), cfg.faucetLimit)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
	assert.Equal(t, uint64(1024), cfg.blobCacheSize)
	assert.Equal(t, uint64(512), cfg.blobIndexCacheSize)
}

func TestConfigValidate(t *testing.T) {
	testDefs := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{name: "run mode", opts: []ConfigOptionFunc{WithRunMode("load")}},
		{name: "faucet limit", opts: []ConfigOptionFunc{WithFaucetLimit(0)}},
		{name: "stdout tracing", opts: []ConfigOptionFunc{WithTracingStdout(true)}},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			cfg := NewConfig(testDef.opts...)
			require.Error(t, cfg.validate())
			_, err := New(cfg)
			require.Error(t, err)
		})
	}
}
