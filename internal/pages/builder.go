// Package pages turns scanned page images into searchable one-page PDFs.
package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gardar/ocrchestra/pkg/pdfocr"
	_ "golang.org/x/image/webp" // webp scans decode through image.Decode

	"github.com/jackzampolin/sheaf/internal/ocr"
)

var (
	// ErrImageDecode marks images that cannot be read or decoded.
	ErrImageDecode = errors.New("image decode failed")

	// ErrRecognition marks pages the OCR engine could not process.
	ErrRecognition = errors.New("recognition failed")
)

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// Languages lists tesseract language codes in priority order.
	Languages []string

	// DPI is the density hint forwarded to the engine.
	DPI int

	// Logger receives per-page diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Builder renders scanned images into single-page searchable PDFs.
type Builder struct {
	engine ocr.Engine
	cfg    BuilderConfig
}

// NewBuilder creates a Builder that recognizes pages with engine.
func NewBuilder(engine ocr.Engine, cfg BuilderConfig) *Builder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Builder{engine: engine, cfg: cfg}
}

// BuildImagePage converts the image at path into a searchable one-page PDF
// under dir and returns the artifact path. index keys the artifact name, so
// concurrent builds in the same staging dir never collide.
func (b *Builder) BuildImagePage(ctx context.Context, path, dir string, index int) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}

	png, err := normalizePNG(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}

	res, err := b.engine.Recognize(ctx, ocr.Input{
		Image:     png,
		Languages: b.cfg.Languages,
		DPI:       b.cfg.DPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRecognition, path, err)
	}
	b.cfg.Logger.Debug("page recognized",
		"path", path,
		"engine", b.engine.Name(),
		"words", len(res.Words),
		"confidence", res.MeanConfidence)

	doc, err := pdfocr.AssembleWithOCR([]byte(res.HOCR), [][]byte{png}, b.pdfocrConfig())
	if err != nil {
		return "", fmt.Errorf("%w: %s: page assembly: %v", ErrRecognition, path, err)
	}

	out := filepath.Join(dir, fmt.Sprintf("page_%04d.pdf", index))
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return "", fmt.Errorf("write page artifact: %w", err)
	}
	return out, nil
}

func (b *Builder) pdfocrConfig() pdfocr.OCRConfig {
	return pdfocr.OCRConfig{
		StartPage:   1,
		Font:        pdfocr.DefaultFont,
		LayerName:   "OCR Text",
		LogWarnings: true,
		Logger:      &warnWriter{logger: b.cfg.Logger},
	}
}

// normalizePNG decodes any supported scan format and re-encodes it as PNG,
// honoring EXIF orientation, so the engine and the page assembler both see
// one predictable format.
func normalizePNG(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// warnWriter forwards page assembler warnings to slog.
type warnWriter struct {
	logger *slog.Logger
}

func (w *warnWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line != "" {
			w.logger.Warn("page assembly warning", "detail", line)
		}
	}
	return len(p), nil
}
