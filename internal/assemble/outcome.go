// Package assemble drives the scan-to-searchable-PDF pipeline: collect and
// order the source files, build one merge-ready artifact per source, and
// merge the artifacts into a single output document.
package assemble

import (
	"errors"
	"time"
)

// Stage identifies a phase of an assembly run.
type Stage string

const (
	StageScanning    Stage = "scanning"
	StageClassifying Stage = "classifying"
	StageOrdering    Stage = "ordering"
	StageProcessing  Stage = "processing"
	StageMerging     Stage = "merging"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// FileStatus is the terminal state of one source file.
type FileStatus string

const (
	FileBuilt   FileStatus = "built"
	FileSkipped FileStatus = "skipped"
)

// Reason explains why a source file was skipped or flagged.
type Reason string

const (
	ReasonUnsupportedFormat   Reason = "unsupported_format"
	ReasonMetadataUnavailable Reason = "metadata_unavailable"
	ReasonOCRFailed           Reason = "ocr_failed"
	ReasonImageDecode         Reason = "image_decode_error"
	ReasonPDFParse            Reason = "pdf_parse_error"
	ReasonPDFNoTextLayer      Reason = "pdf_without_text_layer"
)

// Event is one progress update from a running assembly.
type Event struct {
	// Stage is the phase the run is in when the event fires.
	Stage Stage

	// Path and Status describe one source file, when the event is about
	// a single file.
	Path   string
	Status FileStatus

	// Reason is set for skipped files.
	Reason Reason

	// Done and Total count processed files during the processing stage.
	Done  int
	Total int
}

// Skip records a source file left out of the output.
type Skip struct {
	Path   string `json:"path" yaml:"path"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Warning records a file that stayed in the output but deserves attention.
type Warning struct {
	Path   string `json:"path" yaml:"path"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Outcome summarizes a finished assembly run.
type Outcome struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	FolderPath string    `json:"folder_path" yaml:"folder_path"`
	OutputPath string    `json:"output_path" yaml:"output_path"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Duration   float64   `json:"duration_seconds" yaml:"duration_seconds"`

	// Scanned counts every directory entry considered, including skips.
	Scanned int `json:"scanned" yaml:"scanned"`

	// Merged counts source files that contributed to the output.
	Merged int `json:"merged" yaml:"merged"`

	// Pages is the page count of the final document.
	Pages int `json:"pages" yaml:"pages"`

	Skipped  []Skip    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var (
	// ErrNoProcessableFiles means nothing in the folder could contribute
	// to the output.
	ErrNoProcessableFiles = errors.New("no processable files")

	// ErrOutputWrite means the merged document could not be produced or
	// placed at its destination.
	ErrOutputWrite = errors.New("output write failed")
)
