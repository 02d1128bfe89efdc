package cmd

import (
	"fmt"

	"github.com/cottand/itir/infer"
	"github.com/cottand/itir/irerr"
	"github.com/cottand/itir/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var InferCmd = &cobra.Command{
	Use:          "infer file.yaml|-",
	Short:        "Infer the type of an IR document",
	RunE:         runInfer,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	inferSymtypesPath *string
	inferConstraints  *bool
)

func init() {
	inferSymtypesPath = InferCmd.Flags().StringP("symtypes", "s", "", "YAML file with the types of free symbols")
	inferConstraints = InferCmd.Flags().Bool("constraints", false, "print the generated constraints instead of solving them")
}

func runInfer(cmd *cobra.Command, args []string) error {
	node, err := loadNode(cmd, args[0])
	if err != nil {
		return err
	}
	symtypes, err := loadSymtypes(*inferSymtypesPath)
	if err != nil {
		return err
	}

	if *inferConstraints {
		root, cs, err := infer.Constraints(node, symtypes)
		if err != nil {
			return describeErr(err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%v\n%v\n", root, cs)
		return nil
	}

	typ, err := infer.Infer(node, symtypes)
	if err != nil {
		return describeErr(err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), types.Pretty(typ))
	return nil
}

// describeErr adds the error code, and where the error was raised, to err
func describeErr(err error) error {
	var irErr irerr.IrError
	if !errors.As(err, &irErr) {
		return err
	}
	return errors.Errorf("%v\n%s", err, irerr.FormatWithCode(irErr))
}
