// Package textlayer decides whether a PDF already carries searchable text.
package textlayer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	rpdf "rsc.io/pdf"
)

const (
	// DefaultMinPageChars is the minimum count of non-whitespace characters
	// for a page to count as carrying text.
	DefaultMinPageChars = 16

	// DefaultSearchableRatio is the fraction of text-bearing pages above
	// which a document counts as searchable.
	DefaultSearchableRatio = 0.10
)

// ErrParseFailed marks PDFs that cannot be opened or paged.
var ErrParseFailed = errors.New("pdf parse failed")

// Report summarizes the text layer of one PDF.
type Report struct {
	Path          string
	PageCount     int
	PagesWithText int

	// Ratio is PagesWithText / PageCount.
	Ratio float64

	// Searchable is true when Ratio clears the detector's threshold.
	Searchable bool
}

// Detector classifies PDFs by how many of their pages carry extractable text.
type Detector struct {
	// MinPageChars is the per-page non-whitespace character count at or
	// above which the page counts as carrying text.
	MinPageChars int

	// SearchableRatio is the text-bearing page fraction above which the
	// whole document counts as searchable.
	SearchableRatio float64

	logger *slog.Logger
}

// NewDetector creates a Detector. Non-positive thresholds fall back to the defaults.
func NewDetector(minPageChars int, searchableRatio float64, logger *slog.Logger) *Detector {
	if minPageChars <= 0 {
		minPageChars = DefaultMinPageChars
	}
	if searchableRatio <= 0 {
		searchableRatio = DefaultSearchableRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		MinPageChars:    minPageChars,
		SearchableRatio: searchableRatio,
		logger:          logger,
	}
}

// Detect reports the text coverage of the PDF at path.
//
// The page count comes from pdfcpu, which is also what merges the file
// later: if pdfcpu rejects the document, Detect fails with ErrParseFailed.
// Pages that defeat the text extractor count as carrying no text rather
// than failing the file.
func (d *Detector) Detect(path string) (*Report, error) {
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, path, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: %s: document has no pages", ErrParseFailed, path)
	}

	withText, err := d.countTextPages(path, pageCount)
	if err != nil {
		d.logger.Warn("text extraction failed, counting pages as image-only",
			"path", path, "error", err)
		withText = 0
	}

	ratio := float64(withText) / float64(pageCount)
	return &Report{
		Path:          path,
		PageCount:     pageCount,
		PagesWithText: withText,
		Ratio:         ratio,
		Searchable:    ratio > d.SearchableRatio,
	}, nil
}

// countTextPages walks the document and counts pages whose extracted text
// clears MinPageChars. The extractor panics on some malformed documents, so
// the walk runs under recover.
func (d *Detector) countTextPages(path string, pageCount int) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content extraction panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	doc, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		return 0, err
	}

	pages := doc.NumPage()
	if pages > pageCount {
		pages = pageCount
	}
	for i := 1; i <= pages; i++ {
		if pageNonSpaceCount(doc.Page(i)) >= d.MinPageChars {
			n++
		}
	}
	return n, nil
}

// pageNonSpaceCount counts the non-whitespace characters of one page's text
// runs. A page that panics the extractor counts as empty without poisoning
// the rest of the document.
func pageNonSpaceCount(p rpdf.Page) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()

	if p.V.IsNull() {
		return 0
	}
	for _, t := range p.Content().Text {
		for _, r := range t.S {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n
}
