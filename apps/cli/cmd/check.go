package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	checkSchemaFlag  string
	checkBodyFlag    string
	checkOutputFlag  string
	checkNoColorFlag bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a JSON body against a schema document",
	Long: `Validate a JSON document against a JSON Schema document without
making any request. Every violation is listed with its path.

Examples:
  contractcheck check --schema message.json --body response.json
  curl -s https://serverest.dev/usuarios | contractcheck check --schema list.yaml --body -
  contractcheck check --schema created.json --body body.json --output json`,
	Args: cobra.NoArgs,
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().StringVarP(&checkSchemaFlag, "schema", "s", "", "JSON Schema document, JSON or YAML")
	checkCmd.Flags().StringVar(&checkBodyFlag, "body", "", "JSON body to validate, - for stdin")
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", "console", "Output format: console, json")
	checkCmd.Flags().BoolVar(&checkNoColorFlag, "no-color", getEnvBool("CONTRACTCHECK_NO_COLOR", false), "Disable colored output (env: CONTRACTCHECK_NO_COLOR)")
	_ = checkCmd.MarkFlagRequired("schema")
	_ = checkCmd.MarkFlagRequired("body")
}

// checkReport is the JSON form of a check.
type checkReport struct {
	Schema     string             `json:"schema"`
	Body       string             `json:"body"`
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations"`
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// checkBody validates data against s through the contract asserter, so a
// body that is not JSON is reported the same way a run reports it.
func checkBody(data []byte, s *schema.Schema) []schema.Violation {
	return contract.Assert(&contract.ObservedResponse{Body: data}, contract.New(contract.ExpectBody(s))).Body
}

func checkCommand(cmd *cobra.Command, args []string) error {
	s, err := schema.LoadFile(checkSchemaFlag)
	if err != nil {
		return withCode(ExitParseError, err)
	}
	data, err := readInput(cmd, checkBodyFlag)
	if err != nil {
		return withCode(ExitConfigError, fmt.Errorf("reading body: %w", err))
	}

	violations := checkBody(data, s)
	out := cmd.OutOrStdout()

	switch checkOutputFlag {
	case "json":
		report := checkReport{
			Schema:     checkSchemaFlag,
			Body:       checkBodyFlag,
			Valid:      len(violations) == 0,
			Violations: violations,
		}
		if report.Violations == nil {
			report.Violations = []schema.Violation{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	case "console":
		if checkNoColorFlag {
			color.NoColor = true
		}
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		if len(violations) == 0 {
			fmt.Fprintf(out, "%s %s conforms to %s\n", green("✓"), checkBodyFlag, checkSchemaFlag)
		}
		for _, v := range violations {
			fmt.Fprintf(out, "%s %s\n", red("✗"), v)
		}
	default:
		return usageError(fmt.Errorf("unknown output format %q (valid: console, json)", checkOutputFlag))
	}

	if len(violations) > 0 {
		return withCode(ExitTestFailure, nil)
	}
	return nil
}
