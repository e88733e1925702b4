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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/linkboard"
	"github.com/blinklabs-io/linkboard/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	n, err := linkboard.New(
		linkboard.NewConfig(
			linkboard.WithLogger(logger),
			linkboard.WithDatabasePath(cfg.DatabasePath),
			linkboard.WithBlobCacheSizes(
				cfg.BadgerBlockCacheSize,
				cfg.BadgerIndexCacheSize,
			),
			linkboard.WithListenAddress(cfg.APIListenAddress()),
			linkboard.WithRunMode(string(cfg.RunMode)),
			linkboard.WithFaucetLimit(cfg.FaucetLimit),
			linkboard.WithShutdownTimeout(shutdownTimeout),
			linkboard.WithTracing(cfg.Tracing),
			linkboard.WithTracingStdout(cfg.TracingStdout),
			// Enable metrics with default prometheus registry
			linkboard.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		),
	)
	if err != nil {
		return err
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	g, ctx := errgroup.WithContext(signalCtx)
	if addr := cfg.MetricsListenAddress(); addr != "" {
		metricsServer := newMetricsServer(addr, promhttp.Handler())
		logger.Info(
			"serving prometheus metrics on "+addr,
			"component", "node",
		)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			//nolint:contextcheck
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return n.Run(ctx)
	})

	runErr := g.Wait()
	if signalCtx.Err() != nil {
		logger.Info("signal received, initiating graceful shutdown")
	} else if runErr != nil {
		logger.Error("node error", "error", runErr)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	logger.Info("shutdown complete")
	return runErr
}

// newMetricsServer serves prometheus metrics and the pprof endpoints
func newMetricsServer(addr string, metricsHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
