package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/contractcheck/packages/core/config"
	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/usuarios"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config, fixture file and schemas",
	Long: `Initialize a contractcheck project in the current directory.

This creates:
  - .contractcheck.yaml        - Configuration file
  - fixtures.yaml              - The fixture users created before each run
  - schemas/message.json       - Schema of {"message": string} bodies
  - schemas/created.json       - Schema of the POST /usuarios success body

Examples:
  contractcheck init
  contractcheck init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".contractcheck.yaml")
	fixturesFile := filepath.Join(cwd, "fixtures.yaml")
	schemaDir := filepath.Join(cwd, "schemas")
	schemaFiles := map[string]map[string]any{
		filepath.Join(schemaDir, "message.json"): usuarios.MessageSchema.Document(),
		filepath.Join(schemaDir, "created.json"): usuarios.CreatedSchema.Document(),
	}

	if !forceInit {
		targets := []string{configFile, fixturesFile}
		for f := range schemaFiles {
			targets = append(targets, f)
		}
		for _, f := range targets {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Fixtures = "fixtures.yaml"
	cfg.Reporters = []string{"console", "junit"}
	cfg.OutputDir = "reports"
	cfg.Headers = map[string]string{"User-Agent": "contractcheck/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	set := fixtures.Default()
	users := make(map[string]fixtures.User, set.Len())
	for _, name := range set.Names() {
		u, _ := set.Get(name)
		users[name] = u
	}
	fixturesYAML, err := yaml.Marshal(users)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fixturesFile, fixturesYAML, 0644); err != nil {
		return fmt.Errorf("failed to create fixtures file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", fixturesFile)

	if err := os.MkdirAll(schemaDir, 0755); err != nil {
		return fmt.Errorf("failed to create schema dir: %w", err)
	}
	for path, doc := range schemaFiles {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to create schema file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\ncontractcheck project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'contractcheck run --mock' to try the suite against a local API.\n")

	return nil
}
