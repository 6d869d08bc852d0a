package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/report"
	"github.com/njchilds90/gosolve/solver"
)

const defaultBatch = 4

// NewSolveCmd creates the solve command.
func NewSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [input...]",
		Short: "Solve expressions or equations",
		Long: `Solve evaluates each argument as an expression or an equation. With no
arguments, one input per line is read from standard input.

Examples:
  # Evaluate an expression
  gosolve solve "2+3*4"

  # Solve several equations independently
  gosolve solve "x**2 - 4 = 0" "(2)#x = 3"

  # Solve a system
  gosolve solve --system "x + y = 5" "x - y = 1"

  # Markdown report
  gosolve solve -f markdown "x**2 = 2"`,
		Args: cobra.ArbitraryArgs,
		RunE: runSolveCmd,
	}

	cmd.Flags().Bool("system", false, "Treat all inputs as one system of equations")
	cmd.Flags().StringP("format", "f", "text", "Output format ("+strings.Join(report.Formats, ", ")+")")
	cmd.Flags().BoolP("verbose", "v", false, "Print explanations in text output")
	cmd.Flags().IntP("batch", "b", defaultBatch, "Number of inputs solved concurrently")
	cmd.Flags().Duration("solve-timeout", config.DefaultSolveTimeout, "Timeout for a single solve")

	return cmd
}

func runSolveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	system, _ := cmd.Flags().GetBool("system")
	batch, _ := cmd.Flags().GetInt("batch")
	if batch < 1 {
		return fmt.Errorf("--batch must be at least 1, got %d", batch)
	}

	var w report.Writer
	if format == "text" {
		w = report.NewTextWriter(cmd.OutOrStdout(), verbose)
	} else if w, err = report.New(format, cmd.OutOrStdout()); err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 {
		if inputs, err = readInputs(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	o, _ := newSolver(cfg, log)
	var entries []report.Entry
	if system {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SolveTimeout)
		res, err := o.SolveSystem(ctx, inputs)
		cancel()
		entries = []report.Entry{{Inputs: inputs, Result: res, Err: err}}
	} else {
		if len(inputs) == 0 {
			return solver.ErrEmptyInput
		}
		entries = solveBatch(cmd.Context(), o, inputs, batch, cfg.SolveTimeout)
	}

	if err := w.Write(entries); err != nil {
		return err
	}
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be solved", failed, len(entries))
	}
	return nil
}

// solveBatch solves each input independently, at most limit at a time.
// Entries keep the order of inputs.
func solveBatch(ctx context.Context, o *solver.Orchestrator, inputs []string, limit int, timeout time.Duration) []report.Entry {
	entries := make([]report.Entry, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			solveCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := o.Solve(solveCtx, in)
			entries[i] = report.Entry{Inputs: []string{in}, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

// readInputs reads one input per non-blank line.
func readInputs(r io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	return inputs, sc.Err()
}
