package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/metrics"
	"github.com/njchilds90/gosolve/internal/server"
	"github.com/njchilds90/gosolve/solver"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Serve starts the HTTP API.

Endpoints:
  POST /solve         {"expression": "x + 5 = 10"}
  POST /solve_system  {"equations": ["x + y = 5", "x - y = 1"]}
  POST /tool          agent tool call
  GET  /schema        agent tool schema
  GET  /health        liveness check
  GET  /metrics       Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().Duration("solve-timeout", config.DefaultSolveTimeout, "Timeout for a single solve")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	o, n := newSolver(cfg, log)
	m := metrics.New(solver.ShapeNames, server.ErrorKinds())
	srv := server.New(cfg, o, n, m, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"version":      getVersion(),
		"decimal_mode": n.DecimalMode(),
	}).Info("starting gosolve")
	return srv.Run(ctx)
}
