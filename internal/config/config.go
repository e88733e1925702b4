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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "linkboard.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultAPIURL          = "http://127.0.0.1:8080"
	DefaultKeyFile         = "linkboard.skey"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type RunMode string

const (
	RunModeServe RunMode = "serve" // Serve the REST API (default)
	RunModeDev   RunMode = "dev"   // Development mode, enables the faucet
)

func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

// tempConfig allows the settings to be nested under a top-level "config" key
type tempConfig struct {
	Config yaml.Node `yaml:"config,omitempty"`
}

type Config struct {
	DatabasePath         string  `yaml:"databasePath"         split_words:"true"`
	BindAddr             string  `yaml:"bindAddr"             split_words:"true"`
	ShutdownTimeout      string  `yaml:"shutdownTimeout"      split_words:"true"`
	RunMode              RunMode `yaml:"runMode"              split_words:"true"`
	APIURL               string  `yaml:"apiUrl"               envconfig:"API_URL"`
	KeyFile              string  `yaml:"keyFile"              split_words:"true"`
	APIPort              uint    `yaml:"apiPort"              envconfig:"API_PORT"`
	MetricsPort          uint    `yaml:"metricsPort"          split_words:"true"`
	FaucetLimit          uint64  `yaml:"faucetLimit"          split_words:"true"`
	BadgerBlockCacheSize uint64  `yaml:"badgerBlockCacheSize" split_words:"true"`
	BadgerIndexCacheSize uint64  `yaml:"badgerIndexCacheSize" split_words:"true"`
	Tracing              bool    `yaml:"tracing"`
	TracingStdout        bool    `yaml:"tracingStdout"        split_words:"true"`
}

// ShutdownTimeoutDuration parses ShutdownTimeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return d, nil
}

// APIListenAddress returns the host:port the REST API listens on
func (c *Config) APIListenAddress() string {
	if c.APIPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.APIPort)
}

// MetricsListenAddress returns the host:port the metrics server listens on
func (c *Config) MetricsListenAddress() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.MetricsPort)
}

func (c *Config) validate() error {
	if !c.RunMode.Valid() {
		return fmt.Errorf("invalid run mode: %s", c.RunMode)
	}
	if c.RunMode == "" {
		c.RunMode = RunModeServe
	}
	if c.FaucetLimit == 0 {
		return errors.New("faucet limit must be positive")
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".linkboard",
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		RunMode:         RunModeServe,
		APIURL:          DefaultAPIURL,
		KeyFile:         DefaultKeyFile,
		APIPort:         8080,
		MetricsPort:     12799,
		// 10 coins
		FaucetLimit: 10_000_000_000,
	}
}

// LoadConfig reads the config file, if any, and then applies LINKBOARD_*
// environment variables on top. Without an explicit path the user and
// system default locations are tried in turn.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".linkboard", "linkboard.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		if configFile == "" {
			systemPath := "/etc/linkboard/linkboard.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		if !tempCfg.Config.IsZero() {
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("linkboard", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
