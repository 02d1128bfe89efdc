package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/cottand/itir/internal/log"
	"github.com/cottand/itir/ir"
	"github.com/cottand/itir/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cmd")

var (
	logLevel *int
	sections *[]string
)

// RegisterPersistentFlags adds the flags shared by every subcommand to root
func RegisterPersistentFlags(root *cobra.Command) {
	logLevel = root.PersistentFlags().IntP("log-level", "l", int(slog.LevelError), "log level")
	sections = root.PersistentFlags().StringSlice("sections", nil, "show records below warn for these log sections, like unify or cse")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		log.SetLevel(slog.Level(*logLevel))
		log.EnableSections(*sections...)
	}
}

// readInput reads the file at path, or stdin if path is -
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, errors.Wrap(err, "could not read stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "could not read %s", path)
}

func loadNode(cmd *cobra.Command, path string) (ir.Node, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	node, err := ir.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	logger.Info("loaded IR", "path", path, "kind", node.Describe())
	return node, nil
}

func loadSymtypes(path string) (map[string]types.Type, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	symtypes, err := types.DecodeSymtypes(data)
	return symtypes, errors.Wrapf(err, "could not decode %s", path)
}
