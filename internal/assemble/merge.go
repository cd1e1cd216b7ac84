package assemble

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFMerger merges per-source PDFs with pdfcpu.
type PDFMerger struct {
	// Optimize rewrites the merged document through pdfcpu's optimizer
	// before placement. Failures here keep the unoptimized merge.
	Optimize bool

	// Logger receives merge diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewPDFMerger creates a PDFMerger.
func NewPDFMerger(optimize bool, logger *slog.Logger) *PDFMerger {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFMerger{Optimize: optimize, Logger: logger}
}

// Merge combines inputs, in order, into a single PDF at outPath and returns
// its page count. The document is staged in a temp dir and moved into place
// with a rename, so outPath never holds a partial document.
func (m *PDFMerger) Merge(ctx context.Context, inputs []string, outPath string) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("nothing to merge")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	staging, err := os.MkdirTemp("", "sheaf-merge-*")
	if err != nil {
		return 0, fmt.Errorf("create merge staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	merged := filepath.Join(staging, "merged.pdf")
	if err := api.MergeCreateFile(inputs, merged, false, conf); err != nil {
		return 0, fmt.Errorf("merge %d documents: %w", len(inputs), err)
	}

	final := merged
	if m.Optimize {
		optimized := filepath.Join(staging, "optimized.pdf")
		if err := api.OptimizeFile(merged, optimized, conf); err != nil {
			m.Logger.Warn("optimization failed, keeping unoptimized output", "error", err)
		} else {
			final = optimized
		}
	}

	pageCount, err := api.PageCountFile(final)
	if err != nil {
		return 0, fmt.Errorf("count merged pages: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := placeAtomically(final, outPath); err != nil {
		return 0, err
	}

	m.Logger.Debug("output placed", "path", outPath, "pages", pageCount)
	return pageCount, nil
}

// placeAtomically moves src to dst via a same-directory temp file and
// rename, creating the destination directory if needed.
func placeAtomically(src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".sheaf-*.pdf")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, in)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, dst)
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
