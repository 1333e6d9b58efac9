// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/internal/metrics"
	"github.com/tracewire/tracewire/internal/tracegen"
	"github.com/tracewire/tracewire/internal/transport"
	"github.com/tracewire/tracewire/internal/version"
)

var logger, _ = zap.NewDevelopment()

func main() {
	fs := flag.CommandLine
	cfg := new(tracegen.Config)
	cfg.Flags(fs)
	endpoint := fs.String("agent", "127.0.0.1:8126", "Agent address accepting payloads (host:port or unix:///path/to/agent.sock)")
	printVersion := fs.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.Get().String())
		return
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	sender, err := transport.NewSender(transport.Config{Endpoint: *endpoint}, logger, m)
	if err != nil {
		logger.Fatal("cannot create sender", zap.Error(err))
	}

	logger.Sugar().Infof("sending %s payloads to %s", cfg.Format, *endpoint)
	if err := tracegen.Run(cfg, sender, m, logger); err != nil {
		logger.Fatal("trace generation failed", zap.Error(err))
	}
}
