package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/sheaf/internal/config"
	"github.com/jackzampolin/sheaf/internal/report"
	"github.com/jackzampolin/sheaf/internal/textlayer"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>...",
	Short: "Report the text layer of PDFs without assembling anything",
	Long: `Inspect runs only the text-layer detector and prints a per-file
verdict: page count, pages with text, their ratio, and whether the file
would merge as already searchable.

Examples:
  sheaf inspect statement.pdf
  sheaf inspect ~/scans/*.pdf -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		logger := newLogger(false)
		det := textlayer.NewDetector(cfg.Detect.MinPageChars, cfg.Detect.SearchableRatio, logger)

		type verdict struct {
			Path          string  `json:"path" yaml:"path"`
			Pages         int     `json:"pages" yaml:"pages"`
			PagesWithText int     `json:"pages_with_text" yaml:"pages_with_text"`
			Ratio         float64 `json:"ratio" yaml:"ratio"`
			Searchable    bool    `json:"searchable" yaml:"searchable"`
			Error         string  `json:"error,omitempty" yaml:"error,omitempty"`
		}

		verdicts := make([]verdict, 0, len(args))
		for _, path := range args {
			rep, err := det.Detect(path)
			if err != nil {
				verdicts = append(verdicts, verdict{Path: path, Error: err.Error()})
				continue
			}
			verdicts = append(verdicts, verdict{
				Path:          rep.Path,
				Pages:         rep.PageCount,
				PagesWithText: rep.PagesWithText,
				Ratio:         rep.Ratio,
				Searchable:    rep.Searchable,
			})
		}
		return report.Output(verdicts)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
