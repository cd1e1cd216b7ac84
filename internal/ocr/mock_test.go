package ocr

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMockRecognize(t *testing.T) {
	m := NewMock()

	res, err := m.Recognize(context.Background(), Input{Image: []byte("png"), Languages: []string{"eng"}})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != m.ResponseText {
		t.Errorf("Text = %q, want %q", res.Text, m.ResponseText)
	}
	if len(res.Words) != 3 {
		t.Fatalf("Words = %d, want 3", len(res.Words))
	}
	if res.Words[0].Text != "mock" {
		t.Errorf("first word = %q, want %q", res.Words[0].Text, "mock")
	}
	if res.MeanConfidence != 95 {
		t.Errorf("MeanConfidence = %f, want 95", res.MeanConfidence)
	}
	if m.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", m.RequestCount())
	}
}

func TestMockHOCRShape(t *testing.T) {
	m := NewMock()
	m.ResponseText = "hello world"

	res, err := m.Recognize(context.Background(), Input{})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	for _, want := range []string{
		"class='ocr_page'",
		"bbox 0 0 600 800",
		"class='ocrx_word'",
		">hello</span>",
		">world</span>",
	} {
		if !strings.Contains(res.HOCR, want) {
			t.Errorf("hOCR missing %q:\n%s", want, res.HOCR)
		}
	}
}

func TestMockFailures(t *testing.T) {
	t.Run("should fail", func(t *testing.T) {
		m := NewMock()
		m.ShouldFail = true

		if _, err := m.Recognize(context.Background(), Input{}); err == nil {
			t.Error("expected error from failing mock")
		}
	})

	t.Run("fail after N pages", func(t *testing.T) {
		m := NewMock()
		m.FailAfter = 2

		for i := 0; i < 2; i++ {
			if _, err := m.Recognize(context.Background(), Input{}); err != nil {
				t.Fatalf("page %d: %v", i+1, err)
			}
		}
		if _, err := m.Recognize(context.Background(), Input{}); err == nil {
			t.Error("expected failure after 2 pages")
		}

		m.Reset()
		if _, err := m.Recognize(context.Background(), Input{}); err != nil {
			t.Errorf("after Reset: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		m := NewMock()
		m.Latency = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := m.Recognize(ctx, Input{}); err != context.Canceled {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
