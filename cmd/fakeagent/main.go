// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/internal/fakeagent"
	"github.com/tracewire/tracewire/internal/version"
)

func main() {
	v := viper.New()
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	command := &cobra.Command{
		Use:   "fakeagent",
		Short: "fakeagent accepts encoded trace payloads for testing.",
		Long:  `fakeagent runs a local collector endpoint that accepts encoded trace payloads, validates their structure and exposes reception metrics.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(v, logger)
		},
	}
	command.Flags().String("host-port", ":8126", "host:port to listen on, or unix:///path/to/agent.sock")
	v.BindPFlags(command.Flags())
	v.SetEnvPrefix("tracewire")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	command.AddCommand(version.Command())

	if err := command.Execute(); err != nil {
		logger.Fatal("fakeagent failed", zap.Error(err))
	}
}

func run(v *viper.Viper, logger *zap.Logger) error {
	hostPort := v.GetString("host-port")

	ln, err := listen(hostPort)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler: fakeagent.NewHandler(logger, prometheus.NewRegistry()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("fakeagent listening", zap.String("address", hostPort))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func listen(hostPort string) (net.Listener, error) {
	if socket, ok := strings.CutPrefix(hostPort, "unix://"); ok {
		return net.Listen("unix", socket)
	}
	return net.Listen("tcp", hostPort)
}
