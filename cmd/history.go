package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devpbeat/kimai-tools/config"
	"github.com/devpbeat/kimai-tools/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past export runs",
	Long: `List export runs recorded in the local history database, newest first.

Every successful export records its period, entry count, total hours,
and output paths.`,
	Example: `
  # Show all recorded exports
  kimai-report history

  # Show the five most recent exports
  kimai-report history --limit 5
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory()
	},
}

func runHistory() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	historyPath, err := resolveHistoryPath(cfg.History.Path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		fmt.Println("No export history yet.")
		return nil
	}

	store, err := storage.OpenHistory(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListExports()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No export history yet.")
		return nil
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	fmt.Printf("%-5s %-8s %-17s %5s %8s %8s  %s\n", "ID", "PERIOD", "CREATED", "USER", "ENTRIES", "HOURS", "CSV")
	for _, record := range records {
		fmt.Printf("%-5d %-8s %-17s %5d %8d %8.2f  %s\n",
			record.ID,
			record.Period(),
			record.CreatedAt.Format("2006-01-02 15:04"),
			record.UserID,
			record.EntryCount,
			record.TotalHours,
			record.CSVPath,
		)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most this many runs (0 = all)")
}
