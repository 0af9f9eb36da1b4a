// Package serve is a subcommand of the root command. It serves event encodings and Prometheus metrics over HTTP.
package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"perfenc/internal/common"

	"github.com/spf13/cobra"
)

const cmdName = "serve"

var examples = []string{
	fmt.Sprintf("  Serve on the default address:     $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Serve on all interfaces:          $ %s %s --listen :9110", common.AppName, cmdName),
	"  Query an encoding:                $ curl 'http://localhost:9110/encode?event=cpu::cycles&plm=u'",
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Serve event encodings and Prometheus metrics over HTTP",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagListen string

	encoderFlags common.EncoderFlags
)

const (
	flagListenName = "listen"
)

func init() {
	Cmd.Flags().StringVar(&flagListen, flagListenName, "localhost:9110", "")
	encoderFlags.Add(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Options",
		Flags: []common.Flag{
			{
				Name: flagListenName,
				Help: "address to listen on, GET /encode?event=...&plm=...&os=... and GET /metrics",
			},
		},
	})
	groups = append(groups, encoderFlags.Group())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if _, _, err := net.SplitHostPort(flagListen); err != nil {
		return common.FlagError(fmt.Errorf("invalid --%s address %q: %w", flagListenName, flagListen, err))
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := encoderFlags.Resolve(cmd, common.GetAppContext(cmd).Config)
	if err != nil {
		return common.FlagError(err)
	}
	session, err := common.NewSession(cfg)
	if err != nil {
		return common.FlagError(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, NewServer(session), flagListen)
}

func serve(ctx context.Context, s *Server, listenAddr string) error {
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting encode server", slog.String("address", listenAddr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("encode server ListenAndServe error", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down encode server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
