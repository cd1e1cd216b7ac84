package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/sheaf/internal/pages"
	"github.com/jackzampolin/sheaf/internal/scan"
	"github.com/jackzampolin/sheaf/internal/textlayer"
)

// Detector decides whether an existing PDF already carries a text layer.
type Detector interface {
	Detect(path string) (*textlayer.Report, error)
}

// PageBuilder renders one scanned image into a searchable one-page PDF.
type PageBuilder interface {
	BuildImagePage(ctx context.Context, path, dir string, index int) (string, error)
}

// Merger combines per-source PDFs into the final document and reports its
// page count.
type Merger interface {
	Merge(ctx context.Context, inputs []string, outPath string) (int, error)
}

// Config configures a Pipeline.
type Config struct {
	// Workers caps concurrent per-file work. Defaults to runtime.NumCPU().
	Workers int

	// Logger receives run diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Pipeline assembles a folder of scans into one searchable PDF.
type Pipeline struct {
	detector Detector
	builder  PageBuilder
	merger   Merger
	workers  int
	logger   *slog.Logger
}

// New creates a Pipeline from its three stages.
func New(detector Detector, builder PageBuilder, merger Merger, cfg Config) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		detector: detector,
		builder:  builder,
		merger:   merger,
		workers:  workers,
		logger:   logger,
	}
}

// Request describes one assembly run.
type Request struct {
	// FolderPath is the source folder holding the scans.
	FolderPath string

	// OutputPath is where the merged document lands.
	OutputPath string

	// Progress, when set, receives events as the run advances. Calls
	// arrive from a single goroutine, one at a time.
	Progress func(Event)
}

// Run executes one assembly. The Outcome lists everything merged, skipped,
// or flagged. Only two conditions are fatal for a run that found its
// folder: nothing processable, and a failure to produce the output
// document. Per-file failures surface as skips.
//
// The chronological order of the output is fixed before any parallel work
// starts, so worker scheduling can never reorder pages.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		RunID:      uuid.NewString(),
		FolderPath: req.FolderPath,
		OutputPath: req.OutputPath,
		StartedAt:  start.UTC(),
	}
	logger := p.logger.With("run_id", out.RunID)
	emit := func(e Event) {
		if req.Progress != nil {
			req.Progress(e)
		}
	}

	logger.Info("assembly started",
		"folder", req.FolderPath,
		"output", req.OutputPath,
		"workers", p.workers,
	)
	emit(Event{Stage: StageScanning})

	files, rejects, err := scan.Collect(ctx, req.FolderPath, logger)
	if err != nil {
		emit(Event{Stage: StageFailed})
		return nil, err
	}
	out.Scanned = len(files) + len(rejects)

	emit(Event{Stage: StageClassifying})
	for _, r := range rejects {
		skip := Skip{Path: r.Path, Reason: classifyReject(r.Err), Detail: r.Err.Error()}
		out.Skipped = append(out.Skipped, skip)
		logger.Warn("file skipped", "path", r.Path, "reason", skip.Reason)
		emit(Event{Stage: StageClassifying, Path: r.Path, Status: FileSkipped, Reason: skip.Reason})
	}

	if len(files) == 0 {
		emit(Event{Stage: StageFailed})
		return nil, fmt.Errorf("%w: %s", ErrNoProcessableFiles, req.FolderPath)
	}

	emit(Event{Stage: StageOrdering})
	scan.Sort(files)

	staging, err := os.MkdirTemp("", "sheaf-run-*")
	if err != nil {
		emit(Event{Stage: StageFailed})
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	results := p.processAll(ctx, files, staging, emit, logger)
	if err := ctx.Err(); err != nil {
		emit(Event{Stage: StageFailed})
		return nil, err
	}

	var inputs []string
	for _, r := range results {
		if r.skip != nil {
			out.Skipped = append(out.Skipped, *r.skip)
			logger.Warn("file skipped", "path", r.skip.Path, "reason", r.skip.Reason)
			continue
		}
		if r.warning != nil {
			out.Warnings = append(out.Warnings, *r.warning)
			logger.Warn("file flagged", "path", r.warning.Path, "reason", r.warning.Reason)
		}
		inputs = append(inputs, r.artifact)
		out.Merged++
	}
	if len(inputs) == 0 {
		emit(Event{Stage: StageFailed})
		return nil, fmt.Errorf("%w: all %d files skipped", ErrNoProcessableFiles, len(files))
	}

	emit(Event{Stage: StageMerging})
	logger.Info("merging artifacts", "count", len(inputs))
	pageCount, err := p.merger.Merge(ctx, inputs, req.OutputPath)
	if err != nil {
		emit(Event{Stage: StageFailed})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	out.Pages = pageCount
	out.Duration = time.Since(start).Seconds()

	logger.Info("assembly finished",
		"merged", out.Merged,
		"pages", out.Pages,
		"skipped", len(out.Skipped),
		"warnings", len(out.Warnings),
		"duration", time.Since(start),
	)
	emit(Event{Stage: StageDone})
	return out, nil
}

type unit struct {
	index int
	file  scan.File
}

type fileResult struct {
	index    int
	artifact string
	skip     *Skip
	warning  *Warning
}

// processAll fans the ordered files out to the worker pool and collects the
// results back into source order. All workers pull from a single queue;
// slots in the returned slice line up with files. On cancellation the slice
// may have gaps, which callers detect through ctx.Err().
func (p *Pipeline) processAll(ctx context.Context, files []scan.File, staging string, emit func(Event), logger *slog.Logger) []fileResult {
	queue := make(chan unit)
	results := make(chan fileResult)

	// Feeder closes the queue once every unit is handed out.
	go func() {
		defer close(queue)
		for i, f := range files {
			select {
			case queue <- unit{index: i, file: f}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for u := range queue {
				if ctx.Err() != nil {
					return
				}
				logger.Debug("worker picked file", "worker_id", id, "index", u.index, "path", u.file.Path)
				results <- p.processFile(ctx, u, staging)
			}
		}(w)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]fileResult, len(files))
	done := 0
	for r := range results {
		ordered[r.index] = r
		done++

		e := Event{
			Stage:  StageProcessing,
			Path:   files[r.index].Path,
			Status: FileBuilt,
			Done:   done,
			Total:  len(files),
		}
		if r.skip != nil {
			e.Status = FileSkipped
			e.Reason = r.skip.Reason
		}
		emit(e)
	}
	return ordered
}

// processFile turns one source into a merge-ready artifact or a skip
// record. PDFs that pdfcpu can read are merged as-is; the ones without a
// usable text layer are flagged, not dropped.
func (p *Pipeline) processFile(ctx context.Context, u unit, staging string) fileResult {
	res := fileResult{index: u.index}

	switch u.file.Kind {
	case scan.KindPDF:
		rep, err := p.detector.Detect(u.file.Path)
		if err != nil {
			res.skip = &Skip{Path: u.file.Path, Reason: ReasonPDFParse, Detail: err.Error()}
			return res
		}
		if !rep.Searchable {
			res.warning = &Warning{
				Path:   u.file.Path,
				Reason: ReasonPDFNoTextLayer,
				Detail: fmt.Sprintf("%d of %d pages carry text", rep.PagesWithText, rep.PageCount),
			}
		}
		res.artifact = u.file.Path

	case scan.KindImage:
		artifact, err := p.builder.BuildImagePage(ctx, u.file.Path, staging, u.index)
		if err != nil {
			res.skip = &Skip{Path: u.file.Path, Reason: buildReason(err), Detail: err.Error()}
			return res
		}
		res.artifact = artifact

	default:
		res.skip = &Skip{Path: u.file.Path, Reason: ReasonUnsupportedFormat}
	}
	return res
}

// classifyReject maps a scan rejection onto a skip reason.
func classifyReject(err error) Reason {
	if errors.Is(err, scan.ErrMetadataUnavailable) {
		return ReasonMetadataUnavailable
	}
	return ReasonUnsupportedFormat
}

// buildReason maps an image build failure onto a skip reason.
func buildReason(err error) Reason {
	if errors.Is(err, pages.ErrImageDecode) {
		return ReasonImageDecode
	}
	return ReasonOCRFailed
}
