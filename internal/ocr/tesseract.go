package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/otiai10/gosseract/v2"
)

const TesseractName = "tesseract"

// TesseractConfig configures the tesseract-backed engine.
type TesseractConfig struct {
	// DPI is applied to images without embedded density information.
	DPI int

	// Attempts is the number of tries per page. Values below 1 mean a
	// single attempt.
	Attempts int

	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration

	// Timeout bounds a single page recognition. Zero means no limit.
	Timeout time.Duration

	// Logger receives engine diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Tesseract runs OCR through the system tesseract installation.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract creates a tesseract-backed engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Tesseract{cfg: cfg}
}

// Name returns the engine identifier.
func (t *Tesseract) Name() string {
	return TesseractName
}

// Recognize runs OCR over a single page image, retrying transient failures.
func (t *Tesseract) Recognize(ctx context.Context, in Input) (*Result, error) {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	var res *Result
	err := retry.Do(
		func() error {
			r, err := t.recognizeOnce(in)
			if err != nil {
				return err
			}
			res = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(t.cfg.Attempts)),
		retry.Delay(t.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			t.cfg.Logger.Warn("retrying recognition", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// recognizeOnce runs one tesseract pass. A fresh client per call keeps the
// engine safe under concurrent page workers.
func (t *Tesseract) recognizeOnce(in Input) (*Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(in.Languages) > 0 {
		if err := client.SetLanguage(in.Languages...); err != nil {
			return nil, fmt.Errorf("%w: set languages %v: %v", ErrEngineUnavailable, in.Languages, err)
		}
	}
	dpi := in.DPI
	if dpi <= 0 {
		dpi = t.cfg.DPI
	}
	if dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(dpi)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := client.SetImageFromBytes(in.Image); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	hocr, err := client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("%w: hocr: %v", ErrEngineUnavailable, err)
	}

	res := &Result{Text: text, HOCR: hocr}
	t.addWordBoxes(client, res)
	return res, nil
}

// addWordBoxes asks tesseract for word geometry. The hOCR already carries
// positions, so failing here only loses the structured word list.
func (t *Tesseract) addWordBoxes(client *gosseract.Client, res *Result) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		t.cfg.Logger.Debug("bounding boxes unavailable", "error", err)
		return
	}

	var sum float64
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		res.Words = append(res.Words, Word{
			Text:       word,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
			Confidence: b.Confidence,
		})
		sum += b.Confidence
	}
	if len(res.Words) > 0 {
		res.MeanConfidence = sum / float64(len(res.Words))
	}
}

// Preflight verifies that tesseract is installed and reports which of the
// requested languages have no trained data. A missing language is a
// warning for the caller, not a hard failure.
func Preflight(langs []string) (missing []string, err error) {
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	have := make(map[string]bool, len(available))
	for _, l := range available {
		have[l] = true
	}
	for _, l := range langs {
		if !have[l] {
			missing = append(missing, l)
		}
	}
	return missing, nil
}

// Verify interface
var _ Engine = (*Tesseract)(nil)
