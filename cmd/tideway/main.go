/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Command tideway loads a YAML configuration file, wires up the ambient
// stack (logging, tracing, metrics, the pooled goroutine runner), and runs
// the broker until an OS signal asks it to stop.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yunqi/tideway/config"
	"github.com/yunqi/tideway/internal/goroutine"
	"github.com/yunqi/tideway/internal/oracle"
	"github.com/yunqi/tideway/internal/server"
	"github.com/yunqi/tideway/internal/xlog"
	"github.com/yunqi/tideway/internal/xmetrics"
	"github.com/yunqi/tideway/internal/xtrace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", "tideway.yaml", "path to the broker's YAML configuration file")
	metricsListen := flag.String("metrics-listen", "", "address to serve /metrics on; empty disables it")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if err := xlog.Init(xlog.Options{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		panic(err)
	}
	log := xlog.LoggerModule("main")
	defer func() { _ = xlog.Sync() }()

	shutdownTracer, err := xtrace.Init(cfg.Mqtt.Tracing.Exporter, cfg.Mqtt.Tracing.Endpoint, cfg.ServiceName)
	if err != nil {
		log.Fatal("init tracer", zap.Error(err))
	}
	defer func() { _ = shutdownTracer() }()

	if err := goroutine.Init(cfg.WorkerPoolSize); err != nil {
		log.Fatal("init goroutine pool", zap.Error(err))
	}
	defer goroutine.Release()

	xmetrics.Register()
	if *metricsListen != "" {
		goroutine.Go(func() { serveMetrics(*metricsListen, log) })
	}

	if !cfg.Mqtt.Enabled {
		log.Notice("mqtt disabled in configuration, exiting")
		return
	}

	var net oracle.Oracle = oracle.AlwaysAvailable{}
	if !net.NetworkAvailable() {
		log.Fatal("network unavailable at startup")
	}

	srv := server.NewServer(
		server.WithTcpListen(cfg.Mqtt.TCPListen),
		server.WithWebsocketListen(cfg.Mqtt.WebsocketListen),
		server.WithPersistence(&cfg.Mqtt.Persistence),
		server.WithMqttConfig(cfg.Mqtt),
	)

	errCh := make(chan error, 1)
	goroutine.Go(func() { errCh <- srv.Run() })

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, err
	}
	cfg := config.Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveMetrics(addr string, log *xlog.Log) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error("metrics serve", zap.Error(err))
	}
}
