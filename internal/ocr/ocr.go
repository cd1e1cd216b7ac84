// Package ocr runs optical character recognition over page images.
package ocr

import (
	"context"
	"errors"
)

// ErrEngineUnavailable marks recognition failures caused by the engine
// itself rather than the input image, such as a missing tesseract
// installation or language pack.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Input is one page image handed to an engine.
type Input struct {
	// Image holds the encoded page image (PNG).
	Image []byte

	// Languages lists tesseract language codes in priority order.
	Languages []string

	// DPI is the resolution hint for images without embedded density.
	DPI int
}

// Word is one recognized word with its page-space bounding box.
type Word struct {
	Text       string
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// Result is the outcome of recognizing a single page.
type Result struct {
	// Text is the plain recognized text.
	Text string

	// HOCR is the recognized page as an hOCR document, with word geometry.
	HOCR string

	// Words lists recognized words with bounding boxes, when available.
	Words []Word

	// MeanConfidence averages per-word confidence, 0 to 100.
	MeanConfidence float64
}

// Engine recognizes text on page images.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Recognize runs OCR over a single page image.
	Recognize(ctx context.Context, in Input) (*Result, error)
}
