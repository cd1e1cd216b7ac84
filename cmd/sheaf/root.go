package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/sheaf/internal/report"
	"github.com/jackzampolin/sheaf/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sheaf",
	Short: "Assemble folders of scans into one searchable PDF",
	Long: `Sheaf assembles a folder of scanned images and PDF files into a single,
chronologically ordered, searchable PDF document.

The pipeline includes:
  - File classification and chronological ordering by creation time
  - Text-layer detection for PDFs that are already searchable
  - OCR page construction for scanned images (tesseract)
  - Ordered merge into one output document`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.sheaf/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "sheaf home directory (default: ~/.sheaf)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		report.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger. Logs go to stderr so report output on
// stdout stays machine-readable.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
