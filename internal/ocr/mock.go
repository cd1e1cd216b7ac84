package ocr

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// Mock is an Engine for testing.
type Mock struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N pages (0 = never)
	ResponseText string

	// PageWidth and PageHeight size the synthetic hOCR page.
	PageWidth  int
	PageHeight int

	// State
	requestCount atomic.Int64
}

// NewMock creates a mock engine with sensible defaults. The synthetic page
// matches the fixture image size used across the test suites.
func NewMock() *Mock {
	return &Mock{
		Latency:      time.Millisecond,
		ResponseText: "mock recognized text",
		PageWidth:    600,
		PageHeight:   800,
	}
}

// Name returns the engine identifier.
func (m *Mock) Name() string {
	return MockName
}

// Recognize produces a synthetic recognition result. The hOCR it returns is
// structurally the same as tesseract output, so downstream assembly runs
// for real against it.
func (m *Mock) Recognize(ctx context.Context, in Input) (*Result, error) {
	count := m.requestCount.Add(1)

	// Check if we should fail
	if m.ShouldFail {
		return nil, fmt.Errorf("mock engine configured to fail")
	}
	if m.FailAfter > 0 && int(count) > m.FailAfter {
		return nil, fmt.Errorf("mock engine failed after %d pages", m.FailAfter)
	}

	// Simulate latency
	select {
	case <-time.After(m.Latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res := &Result{Text: m.ResponseText, MeanConfidence: 95}

	// Lay the words out left to right on a single line.
	x := 72
	for _, tok := range strings.Fields(m.ResponseText) {
		w := 24 * len(tok)
		res.Words = append(res.Words, Word{
			Text:       tok,
			X:          x,
			Y:          80,
			Width:      w,
			Height:     40,
			Confidence: 95,
		})
		x += w + 20
	}
	res.HOCR = m.hocrPage(res.Words)

	return res, nil
}

// hocrPage renders the word list as a minimal tesseract-shaped hOCR
// document: one page, one block, one line.
func (m *Mock) hocrPage(words []Word) string {
	width, height := m.PageWidth, m.PageHeight
	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 800
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<!DOCTYPE html PUBLIC \"-//W3C//DTD XHTML 1.0 Transitional//EN\" \"http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd\">\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xml:lang=\"en\" lang=\"en\">\n <head>\n  <title></title>\n")
	b.WriteString("  <meta http-equiv=\"Content-Type\" content=\"text/html;charset=utf-8\"/>\n")
	b.WriteString("  <meta name='ocr-system' content='mock'/>\n")
	b.WriteString("  <meta name='ocr-capabilities' content='ocr_page ocr_carea ocr_par ocr_line ocrx_word'/>\n")
	b.WriteString(" </head>\n <body>\n")
	fmt.Fprintf(&b, "  <div class='ocr_page' id='page_1' title='image \"page.png\"; bbox 0 0 %d %d; ppageno 0'>\n", width, height)

	if len(words) > 0 {
		lineRight := words[len(words)-1].X + words[len(words)-1].Width
		fmt.Fprintf(&b, "   <div class='ocr_carea' id='block_1_1' title=\"bbox 72 80 %d 120\">\n", lineRight)
		fmt.Fprintf(&b, "    <p class='ocr_par' id='par_1_1' lang='eng' title=\"bbox 72 80 %d 120\">\n", lineRight)
		fmt.Fprintf(&b, "     <span class='ocr_line' id='line_1_1' title=\"bbox 72 80 %d 120; baseline 0 0; x_size 40; x_descenders 8; x_ascenders 10\">\n", lineRight)
		for i, w := range words {
			fmt.Fprintf(&b, "      <span class='ocrx_word' id='word_1_%d' title='bbox %d %d %d %d; x_wconf %.0f'>%s</span>\n",
				i+1, w.X, w.Y, w.X+w.Width, w.Y+w.Height, w.Confidence, html.EscapeString(w.Text))
		}
		b.WriteString("     </span>\n    </p>\n   </div>\n")
	}

	b.WriteString("  </div>\n </body>\n</html>\n")
	return b.String()
}

// RequestCount returns the number of pages recognized.
func (m *Mock) RequestCount() int64 {
	return m.requestCount.Load()
}

// Reset resets the page counter.
func (m *Mock) Reset() {
	m.requestCount.Store(0)
}

// Verify interface
var _ Engine = (*Mock)(nil)
