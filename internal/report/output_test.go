package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Pages int    `json:"pages" yaml:"pages"`
}

func TestOutputTo(t *testing.T) {
	data := sample{Name: "output.pdf", Pages: 12}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
			t.Fatalf("OutputTo: %v", err)
		}

		var got sample
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if got != data {
			t.Errorf("round trip = %+v, want %+v", got, data)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
			t.Fatalf("OutputTo: %v", err)
		}
		if !strings.Contains(buf.String(), "name: output.pdf") {
			t.Errorf("yaml output missing field:\n%s", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := OutputTo(&bytes.Buffer{}, OutputFormat("xml"), data); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("yaml") })

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("format = %s, want json", GetOutputFormat())
	}

	SetOutputFormat("bogus")
	if GetOutputFormat() != OutputFormatYAML {
		t.Errorf("unknown format should fall back to yaml, got %s", GetOutputFormat())
	}
}

func TestWriteRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs", "abc123.json")

	if err := WriteRunFile(path, sample{Name: "merged.pdf", Pages: 3}); err != nil {
		t.Fatalf("WriteRunFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got sample
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Pages != 3 {
		t.Errorf("Pages = %d, want 3", got.Pages)
	}
}
