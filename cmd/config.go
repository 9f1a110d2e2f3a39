package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kimai-report configuration file values.",
	Long: `Create, edit, and display the kimai-report configuration file.

The configuration stores:
- api.url / api.token (token may come from API_TOKEN or a .env file)
- export.csv_dir / export.excel_dir
- history.path`,
	Example: `
  # Create default config in $HOME/.kimai-report.yaml
  kimai-report config create

  # Show active config and source file
  kimai-report config show

  # Open active config in editor (creates example if missing)
  kimai-report config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
