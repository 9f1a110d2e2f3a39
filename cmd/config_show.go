package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devpbeat/kimai-tools/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

The API token is never printed; only whether it is set.`,
	Example: `
  # Show active configuration
  kimai-report config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded (environment and defaults only).")
		}

		fmt.Println("Configuration:")
		fmt.Printf("%s: %s\n", config.KeyAPIURL, cfg.API.URL)
		fmt.Printf("%s: %s\n", config.KeyAPIToken, maskSecret(cfg.API.Token))
		fmt.Printf("%s: %s\n", config.KeyExportCSVDir, cfg.Export.CSVDir)
		fmt.Printf("%s: %s\n", config.KeyExportExcelDir, cfg.Export.ExcelDir)
		if historyPath, err := resolveHistoryPath(cfg.History.Path); err == nil {
			fmt.Printf("%s: %s\n", config.KeyHistoryPath, historyPath)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Println("Validation:", err)
		} else {
			fmt.Println("Validation: OK")
		}
	},
}

func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
