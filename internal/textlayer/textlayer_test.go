package textlayer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/sheaf/internal/testutil"
)

const sampleText = "Quarterly statement for the fiscal year 2019."

func TestNewDetector_Defaults(t *testing.T) {
	d := NewDetector(0, 0, nil)
	if d.MinPageChars != DefaultMinPageChars {
		t.Errorf("MinPageChars = %d, want %d", d.MinPageChars, DefaultMinPageChars)
	}
	if d.SearchableRatio != DefaultSearchableRatio {
		t.Errorf("SearchableRatio = %f, want %f", d.SearchableRatio, DefaultSearchableRatio)
	}
	if d.logger == nil {
		t.Error("logger should fall back to the default")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name           string
		pageTexts      []string
		wantPages      int
		wantWithText   int
		wantSearchable bool
	}{
		{
			name:           "text on most pages",
			pageTexts:      []string{sampleText, sampleText, sampleText},
			wantPages:      3,
			wantWithText:   3,
			wantSearchable: true,
		},
		{
			name: "text on three of ten pages",
			pageTexts: []string{
				sampleText, "", "", sampleText, "",
				"", sampleText, "", "", "",
			},
			wantPages:      10,
			wantWithText:   3,
			wantSearchable: true,
		},
		{
			name: "ratio at threshold is not searchable",
			pageTexts: []string{
				sampleText, "", "", "", "",
				"", "", "", "", "",
			},
			wantPages:      10,
			wantWithText:   1,
			wantSearchable: false,
		},
		{
			name:           "no text anywhere",
			pageTexts:      []string{"", "", "", ""},
			wantPages:      4,
			wantWithText:   0,
			wantSearchable: false,
		},
		{
			name:           "short fragment stays below min chars",
			pageTexts:      []string{"Hi"},
			wantPages:      1,
			wantWithText:   0,
			wantSearchable: false,
		},
	}

	d := NewDetector(0, 0, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.WritePDF(t, dir, tc.name+".pdf", tc.pageTexts...)

			rep, err := d.Detect(path)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if rep.PageCount != tc.wantPages {
				t.Errorf("PageCount = %d, want %d", rep.PageCount, tc.wantPages)
			}
			if rep.PagesWithText != tc.wantWithText {
				t.Errorf("PagesWithText = %d, want %d", rep.PagesWithText, tc.wantWithText)
			}
			if rep.Searchable != tc.wantSearchable {
				t.Errorf("Searchable = %v, want %v", rep.Searchable, tc.wantSearchable)
			}
		})
	}
}

func TestDetect_CustomMinChars(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "short.pdf", "Hi")

	d := NewDetector(2, 0, nil)
	rep, err := d.Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if rep.PagesWithText != 1 {
		t.Errorf("PagesWithText = %d, want 1", rep.PagesWithText)
	}
	if !rep.Searchable {
		t.Error("single text page should make a one-page document searchable")
	}
}

func TestDetect_ParseFailed(t *testing.T) {
	dir := t.TempDir()

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pdf")
		if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := NewDetector(0, 0, nil).Detect(path)
		if !errors.Is(err, ErrParseFailed) {
			t.Errorf("Detect error = %v, want ErrParseFailed", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewDetector(0, 0, nil).Detect(filepath.Join(dir, "missing.pdf"))
		if !errors.Is(err, ErrParseFailed) {
			t.Errorf("Detect error = %v, want ErrParseFailed", err)
		}
	})
}
