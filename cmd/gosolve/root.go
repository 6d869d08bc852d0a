package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/logging"
	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/solver"
	"github.com/njchilds90/gosolve/symbolic"
)

// NewRootCmd creates the root command for gosolve.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gosolve",
		Short: "Solve expressions and equations written in root notation",
		Long: `gosolve evaluates expressions and solves equations and systems of
equations. Roots are written (n)#x for the n-th root of x, implicit
multiplication such as 2x or 3(x+1) is accepted, and results are printed in
the same notation.

Configuration is read from --config, ./gosolve.yaml or
$XDG_CONFIG_HOME/gosolve/config.yaml, in that order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (text or json)")
	cmd.PersistentFlags().String("decimal-mode", "", "Decimal point handling (legacy or strict)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSolveCmd())
	cmd.AddCommand(NewNormalizeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrideString(cmd, "log-level", &cfg.LogLevel)
	overrideString(cmd, "log-format", &cfg.LogFormat)
	overrideString(cmd, "decimal-mode", &cfg.DecimalMode)
	overrideString(cmd, "listen", &cfg.ListenAddr)
	if f := cmd.Flag("solve-timeout"); f != nil && f.Changed {
		if cfg.SolveTimeout, err = cmd.Flags().GetDuration("solve-timeout"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flag(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

// newSolver builds the engine, normalizer and orchestrator for cfg.
func newSolver(cfg *config.Config, log logrus.FieldLogger) (*solver.Orchestrator, *notation.Normalizer) {
	n := notation.NewNormalizer(notation.Options{DecimalMode: cfg.Decimal()})
	o := solver.New(symbolic.NewEngine(), n, notation.NewRenderer(), solver.WithLogger(log))
	return o, n
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}
