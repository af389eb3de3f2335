package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
	"github.com/spf13/cobra"
)

var (
	listRunFlag  string
	listTagsFlag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in scenarios",
	Long: `List the contract scenarios in run order, with their tags. The
--run and --tags filters select scenarios the same way run does.

Examples:
  contractcheck list
  contractcheck list --tags negative
  contractcheck list --run CT-00`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listRunFlag, "run", "n", "", "Only scenarios whose id or name contains pattern")
	listCmd.Flags().StringVarP(&listTagsFlag, "tags", "t", "", "Only scenarios with one of the tags (comma-separated)")
}

func listCommand(cmd *cobra.Command, args []string) error {
	var tags []string
	for _, t := range strings.Split(listTagsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	scenarios := suite.Filter(suite.All(), listRunFlag, tags)
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios match")
	}

	for _, s := range scenarios {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", s.ID, s.Name)
		if len(s.Tags) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(s.Tags, ", "))
		}
	}
	return nil
}
