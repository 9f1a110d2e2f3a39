package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devpbeat/kimai-tools/config"
	"github.com/devpbeat/kimai-tools/internal/timeutil"
	"github.com/devpbeat/kimai-tools/kimai"
	"github.com/devpbeat/kimai-tools/output"
	"github.com/devpbeat/kimai-tools/storage"
)

var (
	exportUser     int
	exportYear     int
	exportMonth    int
	exportCSVOut   string
	exportExcelOut string
	exportTimeout  time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch one month of timesheets and export CSV plus Excel",
	Long: `Fetch the timesheet entries of one user and month from the Kimai API
and write them as a CSV file and an Excel workbook.

The Excel workbook contains a "Data" sheet mirroring the CSV and a
"Summary" sheet with the total hours of the month. Columns are the union
of all fields present in the fetched entries; nested fields are
flattened (project, customer, activity).

User, year, and month are asked for interactively unless passed as
flags. Missing API configuration is prompted for as well; the token is
read with hidden input.`,
	Example: `
  # Fully interactive export
  kimai-report export

  # Export July 2026 for user 42 without prompts
  kimai-report export --user 42 --year 2026 --month 7

  # Override the default output names
  kimai-report export --user 42 --year 2026 --month 7 --csv ./july.csv --excel ./july.xlsx

  # Allow a slow Kimai instance more time
  kimai-report export --user 42 --year 2026 --month 7 --timeout 60s
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), newPrompter())
	},
}

type exportParams struct {
	UserID int
	Year   int
	Month  int
}

func runExport(ctx context.Context, p *prompter) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := resolveAPIConfig(cfg, p); err != nil {
		return err
	}

	params, err := resolveExportParams(p, exportUser, exportYear, exportMonth)
	if err != nil {
		return err
	}

	// Month validation happens before any request is made.
	begin, end, err := timeutil.MonthRange(params.Year, params.Month)
	if err != nil {
		return err
	}

	client, err := kimai.NewClient(kimai.ClientConfig{
		EndpointURL: cfg.API.URL,
		Token:       cfg.API.Token,
		UserAgent:   "kimai-report/1.0",
	})
	if err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	fmt.Printf("Fetching timesheets for user %d, %04d-%02d (%s / %s)...\n",
		params.UserID, params.Year, params.Month,
		kimai.FormatAPITime(begin), kimai.FormatAPITime(end))

	entries, err := client.Timesheets(fetchCtx, kimai.TimesheetQuery{
		UserID: params.UserID,
		Begin:  begin,
		End:    end,
	})
	if err != nil {
		return err
	}

	// The report is built before anything is written, so aggregation
	// failures leave no output files behind.
	report, err := output.BuildReport(entries)
	if err != nil {
		return err
	}

	csvPath, excelPath := resolveOutputPaths(cfg, params.Year, params.Month, exportCSVOut, exportExcelOut)
	if err := ensureParentDir(csvPath, 0o755); err != nil {
		return err
	}
	if err := ensureParentDir(excelPath, 0o755); err != nil {
		return err
	}

	csvWriter := &output.CSVWriter{}
	if err := csvWriter.Write(csvPath, report); err != nil {
		return err
	}
	fmt.Printf("CSV saved to %s\n", csvPath)

	excelWriter := &output.ExcelWriter{}
	if err := excelWriter.Write(excelPath, report); err != nil {
		return fmt.Errorf("excel export failed after csv was written to %s: %w", csvPath, err)
	}
	fmt.Printf("Excel saved to %s (sheets: %s, %s)\n", excelPath, output.DataSheet, output.SummarySheet)

	fmt.Printf("Export completed. Entries: %d, Total hours: %.2f\n", report.EntryCount(), report.TotalHours)

	if err := recordExportHistory(cfg, params, report, csvPath, excelPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: export history not recorded: %v\n", err)
	}
	return nil
}

// resolveAPIConfig fills missing API values by prompting. Values already
// present from file, environment, or .env are never asked for again.
func resolveAPIConfig(cfg *config.Config, p *prompter) error {
	if strings.TrimSpace(cfg.API.URL) == "" {
		if !p.interactive {
			return fmt.Errorf("%w: %s (set it in the config file or via API_URL)", config.ErrMissingConfiguration, config.KeyAPIURL)
		}
		value, err := p.promptString("Kimai API URL: ")
		if err != nil {
			return err
		}
		cfg.API.URL = value
	}
	if strings.TrimSpace(cfg.API.Token) == "" {
		if !p.interactive {
			return fmt.Errorf("%w: %s (set it in the config file or via API_TOKEN)", config.ErrMissingConfiguration, config.KeyAPIToken)
		}
		value, err := p.promptSecret("Kimai API token (input hidden): ")
		if err != nil {
			return err
		}
		cfg.API.Token = value
	}
	return cfg.Validate()
}

func resolveExportParams(p *prompter, userID, year, month int) (exportParams, error) {
	params := exportParams{UserID: userID, Year: year, Month: month}

	var err error
	if params.UserID <= 0 {
		if params.UserID, err = p.promptUserID(); err != nil {
			return params, err
		}
	}
	if params.Year == 0 {
		if params.Year, err = p.promptYear(); err != nil {
			return params, err
		}
	} else if err = validateYear(params.Year); err != nil {
		return params, err
	}
	if params.Month == 0 {
		if params.Month, err = p.promptMonth(); err != nil {
			return params, err
		}
	}
	return params, nil
}

func resolveOutputPaths(cfg *config.Config, year, month int, csvOverride, excelOverride string) (string, string) {
	stem := output.DefaultStem(year, month)

	csvPath := strings.TrimSpace(csvOverride)
	if csvPath == "" {
		csvPath = filepath.Join(cfg.Export.CSVDir, stem+".csv")
	}
	excelPath := strings.TrimSpace(excelOverride)
	if excelPath == "" {
		excelPath = filepath.Join(cfg.Export.ExcelDir, stem+".xlsx")
	}
	return csvPath, excelPath
}

func recordExportHistory(cfg *config.Config, params exportParams, report *output.Report, csvPath, excelPath string) error {
	historyPath, err := resolveHistoryPath(cfg.History.Path)
	if err != nil {
		return err
	}
	if err := ensureParentDir(historyPath, 0o755); err != nil {
		return err
	}

	store, err := storage.OpenHistory(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.RecordExport(storage.ExportRecord{
		UserID:     params.UserID,
		Year:       params.Year,
		Month:      params.Month,
		EntryCount: report.EntryCount(),
		TotalHours: report.TotalHours,
		CSVPath:    csvPath,
		ExcelPath:  excelPath,
	})
	return err
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVar(&exportUser, "user", 0, "Kimai user ID (prompted for when omitted)")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Report year (prompted for when omitted)")
	exportCmd.Flags().IntVar(&exportMonth, "month", 0, "Report month 1-12 (prompted for when omitted)")
	exportCmd.Flags().StringVar(&exportCSVOut, "csv", "", "CSV output path (default: <csv_dir>/monthly-report-YYYY-MM.csv)")
	exportCmd.Flags().StringVar(&exportExcelOut, "excel", "", "Excel output path (default: <excel_dir>/monthly-report-YYYY-MM.xlsx)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 30*time.Second, "Timeout for the Kimai API request")
}
