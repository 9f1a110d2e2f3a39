package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devpbeat/kimai-tools/config"
	"github.com/devpbeat/kimai-tools/web"
)

var (
	servePort   int
	serveDir    string
	serveMonth  string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard over exported reports",
	Long: `Start a local HTTP server with an overview page and per-month detail
pages aggregated from the CSV exports in the export directory.

The dashboard is read-only; it never talks to the Kimai API.`,
	Example: `
  # Serve the configured CSV export directory
  kimai-report serve

  # Serve another directory on a custom port without opening a browser
  kimai-report serve --dir ./csv --port 9090 --no-open

  # Open the browser directly on one month
  kimai-report serve --month 2026-07
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveServeDir(serveDir)
		if err != nil {
			return err
		}

		dataset, err := web.LoadDataset(dir)
		if err != nil {
			return err
		}
		for _, skipped := range dataset.Skipped {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %s\n", skipped.File, skipped.Reason)
		}
		fmt.Printf("Serving %d entries from %d export file(s) in %s\n", len(dataset.Rows), len(dataset.Files), dir)

		// Loopback only: the dashboard has no authentication.
		addr := fmt.Sprintf("127.0.0.1:%d", servePort)
		server := &http.Server{
			Addr:    addr,
			Handler: web.NewServer(dir),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", servePort)
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			target, targetErr := resolveServeTarget(listenURL, serveMonth)
			if targetErr != nil {
				return targetErr
			}
			if openErr := openURLInBrowser(target); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "Directory with CSV exports (default: configured export.csv_dir)")
	serveCmd.Flags().StringVar(&serveMonth, "month", "", "Open the browser on this month, format YYYY-MM")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func resolveServeDir(explicitDir string) (string, error) {
	if strings.TrimSpace(explicitDir) != "" {
		return explicitDir, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfg.Export.CSVDir) != "" {
		return cfg.Export.CSVDir, nil
	}
	return "csv", nil
}

func resolveServeTarget(baseURL, month string) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return baseURL, nil
	}
	if _, err := time.ParseInLocation("2006-01", month, time.Local); err != nil {
		return "", fmt.Errorf("invalid --month value %q (expected YYYY-MM)", month)
	}
	return baseURL + "/month/" + month, nil
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
