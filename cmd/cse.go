package cmd

import (
	"fmt"

	"github.com/cottand/itir/transforms/cse"
	"github.com/spf13/cobra"
)

var CSECmd = &cobra.Command{
	Use:          "cse file.yaml|-",
	Short:        "Eliminate common subexpressions of an IR document",
	RunE:         runCSE,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func runCSE(cmd *cobra.Command, args []string) error {
	node, err := loadNode(cmd, args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cse.Eliminate(node))
	return nil
}
