package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve/notation"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <text>...",
		Short: "Print the canonical form of user notation",
		Long: `Normalize rewrites root notation, implicit multiplication and decimal
points into the syntax the engine parses, one line per argument.

Examples:
  gosolve normalize "(3)#2x"        # (2*x)**(1/3)
  gosolve normalize "2(x+1)"        # 2*(x+1)
  gosolve normalize -i "y + 2x"     # y, x`,
		Args: cobra.MinimumNArgs(1),
		RunE: runNormalizeCmd,
	}

	cmd.Flags().BoolP("identifiers", "i", false, "Print the identifiers of each input instead")

	return cmd
}

func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	idents, _ := cmd.Flags().GetBool("identifiers")

	n := notation.NewNormalizer(notation.Options{DecimalMode: cfg.Decimal()})
	out := cmd.OutOrStdout()
	for _, text := range args {
		if idents {
			fmt.Fprintln(out, strings.Join(notation.Identifiers(text), ", "))
			continue
		}
		norm, err := n.Normalize(text)
		if err != nil {
			return fmt.Errorf("normalize %q: %w", text, err)
		}
		fmt.Fprintln(out, norm)
	}
	return nil
}
