package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/contractcheck/packages/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema file>...",
	Short: "Check JSON Schema documents for definition errors",
	Long: `Load each JSON Schema document, JSON or YAML, and report definition
errors such as unknown types or malformed required lists.

Examples:
  contractcheck validate schemas/message.json
  contractcheck validate schemas/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hasErrors := false
	for _, file := range args {
		s, err := schema.LoadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%s", file, s.Type())
		if props := s.Properties(); len(props) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d properties", len(props))
		}
		fmt.Fprintf(cmd.OutOrStdout(), ")\n")
	}

	if hasErrors {
		return withCode(ExitParseError, fmt.Errorf("validation failed"))
	}
	return nil
}
