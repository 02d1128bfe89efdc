package main

import (
	"os"

	"github.com/cottand/itir/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "itir [subcommand]",
	Short:        "itir\n type inference and common transforms for iterator IR",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	cmd.RegisterPersistentFlags(rootCmd)
	rootCmd.AddCommand(cmd.InferCmd)
	rootCmd.AddCommand(cmd.CSECmd)
	rootCmd.AddCommand(cmd.PassesCmd)
}
