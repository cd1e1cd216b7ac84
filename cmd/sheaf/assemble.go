package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/sheaf/internal/assemble"
	"github.com/jackzampolin/sheaf/internal/config"
	"github.com/jackzampolin/sheaf/internal/home"
	"github.com/jackzampolin/sheaf/internal/ocr"
	"github.com/jackzampolin/sheaf/internal/pages"
	"github.com/jackzampolin/sheaf/internal/report"
	"github.com/jackzampolin/sheaf/internal/textlayer"
)

var (
	assembleOut      string
	assembleLangs    string
	assembleWorkers  int
	assembleNoReport bool
	assembleVerbose  bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <folder>",
	Short: "Assemble a folder of scans into one searchable PDF",
	Long: `Assemble collects the images and PDFs in a folder, orders them by
creation time, runs OCR over the images, and merges everything into a
single searchable PDF.

Files that cannot be processed are skipped and reported; the run only
fails when nothing at all could be assembled or the output cannot be
written.

Examples:
  sheaf assemble ~/scans                          # write ~/scans/output.pdf
  sheaf assemble ~/scans --out ~/docs/bundle.pdf  # explicit output path
  sheaf assemble ~/scans --langs deu+eng          # override OCR languages`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]
		logger := newLogger(assembleVerbose)

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		outPath, langs, workers, err := resolveRunInputs(cfg, folder, assembleOut, assembleLangs, assembleWorkers)
		if err != nil {
			return err
		}
		warnMissingLanguages(logger, langs)

		p := buildPipeline(cfg, langs, workers, logger)
		outcome, err := p.Run(cmd.Context(), assemble.Request{
			FolderPath: folder,
			OutputPath: outPath,
			Progress:   progressLogger(logger),
		})
		if err != nil {
			return err
		}

		if !assembleNoReport {
			persistRunReport(logger, outcome)
		}
		return report.Output(outcome)
	},
}

func init() {
	assembleCmd.Flags().StringVar(&assembleOut, "out", "", "output PDF path (default: <folder>/output.pdf)")
	assembleCmd.Flags().StringVar(&assembleLangs, "langs", "", "'+'-joined tesseract language codes (default from config)")
	assembleCmd.Flags().IntVar(&assembleWorkers, "workers", 0, "concurrent page workers (default: one per CPU)")
	assembleCmd.Flags().BoolVar(&assembleNoReport, "no-report", false, "skip writing the run report to the sheaf home")
	assembleCmd.Flags().BoolVar(&assembleVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(assembleCmd)
}

// resolveRunInputs folds config values and flags into the pipeline inputs.
// Flags win over config; the output path defaults to the source folder.
func resolveRunInputs(cfg *config.Config, folder, outFlag, langsFlag string, workersFlag int) (outPath, langs string, workers int, err error) {
	langs = cfg.Languages
	if langsFlag != "" {
		langs = langsFlag
	}
	if strings.TrimSpace(langs) == "" {
		return "", "", 0, fmt.Errorf("language spec must not be empty")
	}

	workers = cfg.Workers
	if workersFlag > 0 {
		workers = workersFlag
	}

	outPath = outFlag
	if outPath == "" {
		name := cfg.Output.DefaultName
		if name == "" {
			name = "output.pdf"
		}
		outPath = filepath.Join(folder, name)
	}
	return outPath, langs, workers, nil
}

// buildPipeline wires the configured engine, detector, and merger into a
// run-ready pipeline.
func buildPipeline(cfg *config.Config, langs string, workers int, logger *slog.Logger) *assemble.Pipeline {
	engine := ocr.NewTesseract(ocr.TesseractConfig{
		DPI:      cfg.OCR.DPI,
		Attempts: cfg.OCR.MaxRetries + 1,
		Timeout:  time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
		Logger:   logger,
	})
	builder := pages.NewBuilder(engine, pages.BuilderConfig{
		Languages: config.SplitLanguages(langs),
		DPI:       cfg.OCR.DPI,
		Logger:    logger,
	})
	detector := textlayer.NewDetector(cfg.Detect.MinPageChars, cfg.Detect.SearchableRatio, logger)
	merger := assemble.NewPDFMerger(cfg.Output.Optimize, logger)

	return assemble.New(detector, builder, merger, assemble.Config{
		Workers: workers,
		Logger:  logger,
	})
}

// warnMissingLanguages surfaces missing tesseract data before a long run.
// The engine stays the authority; a warning never stops the run.
func warnMissingLanguages(logger *slog.Logger, langs string) {
	missing, err := ocr.Preflight(config.SplitLanguages(langs))
	if err != nil {
		logger.Warn("tesseract unavailable, image pages will be skipped", "error", err)
		return
	}
	if len(missing) > 0 {
		logger.Warn("missing tesseract language data", "languages", missing)
	}
}

// progressLogger turns pipeline events into log lines.
func progressLogger(logger *slog.Logger) func(assemble.Event) {
	return func(e assemble.Event) {
		switch {
		case e.Path != "" && e.Status == assemble.FileSkipped:
			logger.Info("skipped", "path", e.Path, "reason", e.Reason)
		case e.Path != "":
			logger.Info("built", "path", e.Path, "done", e.Done, "total", e.Total)
		default:
			logger.Debug("stage", "stage", e.Stage)
		}
	}
}

// persistRunReport writes the outcome to the sheaf home runs directory.
// Failing to persist never fails the run that produced the document.
func persistRunReport(logger *slog.Logger, outcome *assemble.Outcome) {
	h, err := home.New(homeDir)
	if err != nil {
		logger.Warn("could not resolve sheaf home", "error", err)
		return
	}
	path := h.RunReportPath(outcome.RunID)
	if err := report.WriteRunFile(path, outcome); err != nil {
		logger.Warn("could not persist run report", "error", err)
		return
	}
	logger.Debug("run report written", "path", path)
}
