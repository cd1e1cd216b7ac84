package config

import "strings"

// Config holds sheaf configuration.
// Stored at: ~/.sheaf/config.yaml
type Config struct {
	// Languages is a '+'-joined list of tesseract language codes, handed
	// to the engine as-is.
	Languages string `mapstructure:"languages" yaml:"languages"`

	// Workers caps concurrent per-file work. Zero means one per CPU.
	Workers int `mapstructure:"workers" yaml:"workers"`

	OCR    OCRCfg    `mapstructure:"ocr" yaml:"ocr"`
	Detect DetectCfg `mapstructure:"detect" yaml:"detect"`
	Output OutputCfg `mapstructure:"output" yaml:"output"`
}

// OCRCfg configures the recognition engine.
type OCRCfg struct {
	DPI            int `mapstructure:"dpi" yaml:"dpi"`                         // density hint for scans without metadata
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // 0 = no per-page deadline
	MaxRetries     int `mapstructure:"max_retries" yaml:"max_retries"`         // additional attempts per page
}

// DetectCfg tunes text-layer detection for existing PDFs.
type DetectCfg struct {
	MinPageChars    int     `mapstructure:"min_page_chars" yaml:"min_page_chars"`       // per-page non-trivial text threshold
	SearchableRatio float64 `mapstructure:"searchable_ratio" yaml:"searchable_ratio"` // text-page fraction above which a PDF counts as searchable
}

// OutputCfg shapes the final document.
type OutputCfg struct {
	DefaultName string `mapstructure:"default_name" yaml:"default_name"` // used when no output path is given
	Optimize    bool   `mapstructure:"optimize" yaml:"optimize"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Languages: "jpn+eng",
		Workers:   0,
		OCR: OCRCfg{
			DPI:            300,
			TimeoutSeconds: 0,
			MaxRetries:     2,
		},
		Detect: DetectCfg{
			MinPageChars:    16,
			SearchableRatio: 0.10,
		},
		Output: OutputCfg{
			DefaultName: "output.pdf",
			Optimize:    true,
		},
	}
}

// LanguageList splits the configured language spec into engine codes.
func (c *Config) LanguageList() []string {
	return SplitLanguages(c.Languages)
}

// SplitLanguages splits a '+'-joined language spec, dropping empty segments.
func SplitLanguages(spec string) []string {
	var out []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
