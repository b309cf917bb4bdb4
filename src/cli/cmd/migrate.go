package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/droidconf/src/config"
)

var (
	migrateInPlace bool
	migrateOutput  string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [file]",
	Short: "Migrate config to the latest schema version",
	Long: `Migrate a .droidconf.yml config file to the latest schema version.

By default the migrated config is printed to stdout. Use --in-place to
overwrite the file, or --output to write it elsewhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateInPlace, "in-place", "i", false, "overwrite the config file in place")
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "write migrated config to this path")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	inputPath := ".droidconf.yml"
	if len(args) > 0 {
		inputPath = args[0]
	} else if cfgFile != "" {
		inputPath = cfgFile
	}
	if migrateInPlace && migrateOutput != "" {
		return fmt.Errorf("--in-place and --output are mutually exclusive")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	migrated, err := config.MigrateToLatest(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	dest := migrateOutput
	if migrateInPlace {
		dest = inputPath
	}
	if dest == "" {
		_, err := cmd.OutOrStdout().Write(migrated)
		return err
	}
	if err := os.WriteFile(dest, migrated, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	logger.Info("config migrated", "from", inputPath, "to", dest)
	return nil
}
