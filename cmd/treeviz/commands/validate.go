package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	validateCmdUse   = "validate <definition>"
	validateCmdShort = "Check a definition file against the schema"
	validateArgCount = 1
)

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   validateCmdUse,
		Short: validateCmdShort,
		Args:  cobra.ExactArgs(validateArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := LoadDefinition(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: definition is valid\n", args[0])

			return nil
		},
	}
}
