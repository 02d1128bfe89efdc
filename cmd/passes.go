package cmd

import (
	"fmt"

	"github.com/cottand/itir/infer"
	"github.com/cottand/itir/transforms"
	"github.com/cottand/itir/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var PassesCmd = &cobra.Command{
	Use:          "passes file.yaml|-",
	Short:        "Run the common transforms over an IR document and infer the type of the result",
	RunE:         runPasses,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	passesNoCSE         *bool
	passesSymtypesPath  *string
	passesNoInlineLifts *bool
)

func init() {
	passesNoCSE = PassesCmd.Flags().Bool("no-cse", false, "skip common subexpression elimination")
	passesNoInlineLifts = PassesCmd.Flags().Bool("no-force-inline-lift", false, "only inline lifted stencils used once")
	passesSymtypesPath = PassesCmd.Flags().StringP("symtypes", "s", "", "YAML file with the types of free symbols")
}

func runPasses(cmd *cobra.Command, args []string) error {
	node, err := loadNode(cmd, args[0])
	if err != nil {
		return err
	}
	symtypes, err := loadSymtypes(*passesSymtypesPath)
	if err != nil {
		return err
	}

	opts := transforms.DefaultOptions()
	opts.CSE = !*passesNoCSE
	opts.ForceInlineLift = !*passesNoInlineLifts
	transformed, err := transforms.ApplyCommon(node, opts)
	if err != nil {
		return errors.Wrap(err, "could not apply transforms")
	}

	typ, err := infer.Infer(transformed, symtypes)
	if err != nil {
		return describeErr(errors.Wrapf(err, "transformed tree %v is not well typed", transformed))
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%v\n:: %s\n", transformed, types.Pretty(typ))
	return nil
}
