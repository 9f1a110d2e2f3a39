/*
Copyright © 2026 devpbeat

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devpbeat/kimai-tools/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kimai-report",
	Short: "Fetch Kimai timesheets and export monthly CSV/Excel reports.",
	Long: `
**********************************************
*           KIMAI MONTHLY REPORT             *
**********************************************

This CLI fetches timesheet entries for one user and month from the Kimai
API and exports them as a CSV file and an Excel workbook with a Data and
a Summary sheet. Completed exports are recorded in a local SQLite history
and can be browsed in a small local web dashboard.

Configuration comes from a YAML file, environment variables (API_URL,
API_TOKEN), or a .env file; anything still missing is asked for
interactively.
`,
	Example: `
  # Create configuration file
  kimai-report config create

  # Export a month (missing values are prompted for)
  kimai-report export

  # Export July 2026 for user 42 without prompts
  kimai-report export --user 42 --year 2026 --month 7

  # Export to explicit output files
  kimai-report export --user 42 --year 2026 --month 7 --csv ./july.csv --excel ./july.xlsx

  # List past export runs
  kimai-report history

  # Browse exports in the local dashboard
  kimai-report serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.kimai-report.yaml, then ./.kimai-report.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kimai-report" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kimai-report")
	}

	// Values may also come from a .env file in the working directory.
	_ = godotenv.Load()

	// api.token resolves from API_TOKEN, api.url from API_URL, and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: kimai-report config create")
	}
}
