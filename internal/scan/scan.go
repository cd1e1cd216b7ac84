// Package scan lists a source folder and prepares its files for assembly.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/djherbis/times"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrFolderNotFound is returned when the source folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrNotAFolder is returned when the source path is not a directory.
	ErrNotAFolder = errors.New("not a folder")

	// ErrUnsupportedFormat marks files whose extension is neither a
	// recognized image format nor PDF.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMetadataUnavailable marks files whose timestamps could not be read.
	ErrMetadataUnavailable = errors.New("file metadata unavailable")
)

// Kind classifies a source file by its extension.
type Kind string

const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindUnsupported Kind = "unsupported"
)

// imageExts are the raster formats accepted for OCR.
var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".tif":  {},
	".tiff": {},
	".bmp":  {},
	".gif":  {},
	".webp": {},
}

// Classify returns the Kind for a path based on its extension, case-insensitively.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return KindPDF
	}
	if _, ok := imageExts[ext]; ok {
		return KindImage
	}
	return KindUnsupported
}

// File is one supported source file with its ordering metadata resolved.
type File struct {
	Path string
	Kind Kind

	// Timestamp is the sort key: filesystem creation time when the platform
	// records one, otherwise modification time.
	Timestamp time.Time

	// Birth reports whether Timestamp came from a birth time.
	Birth bool
}

// Reject records a file excluded during collection. Err wraps
// ErrUnsupportedFormat or ErrMetadataUnavailable.
type Reject struct {
	Path string
	Err  error
}

// Collect lists dir (non-recursive), classifies each regular file, and
// resolves ordering timestamps for the supported ones. Classification and
// timestamp resolution run concurrently per file. Files that cannot
// participate come back as rejects, not errors: the caller decides how to
// report them. The returned files are in directory-listing order; call Sort
// to establish assembly order.
func Collect(ctx context.Context, dir string, logger *slog.Logger) ([]File, []Reject, error) {
	log := logger
	if log == nil {
		log = slog.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFolderNotFound, dir)
		}
		return nil, nil, fmt.Errorf("failed to stat folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotAFolder, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	// Regular files only; subdirectories are not descended into.
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	// Per-index slots keep results in listing order regardless of which
	// worker finishes first.
	files := make([]*File, len(paths))
	rejects := make([]*Reject, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			kind := Classify(path)
			if kind == KindUnsupported {
				rejects[i] = &Reject{
					Path: path,
					Err:  fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path)),
				}
				return nil
			}
			ts, birth, err := sortTimestamp(path)
			if err != nil {
				rejects[i] = &Reject{
					Path: path,
					Err:  fmt.Errorf("%w: %v", ErrMetadataUnavailable, err),
				}
				return nil
			}
			files[i] = &File{Path: path, Kind: kind, Timestamp: ts, Birth: birth}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	collected := make([]File, 0, len(files))
	for _, f := range files {
		if f != nil {
			collected = append(collected, *f)
		}
	}
	skipped := make([]Reject, 0, len(rejects))
	for _, r := range rejects {
		if r != nil {
			skipped = append(skipped, *r)
		}
	}

	log.Debug("collected folder", "dir", dir, "supported", len(collected), "rejected", len(skipped))
	return collected, skipped, nil
}

// Sort orders files oldest-first by timestamp, breaking ties by path so the
// order is a deterministic total order across runs.
func Sort(files []File) {
	sort.Slice(files, func(i, j int) bool {
		if !files[i].Timestamp.Equal(files[j].Timestamp) {
			return files[i].Timestamp.Before(files[j].Timestamp)
		}
		return files[i].Path < files[j].Path
	})
}

// sortTimestamp resolves the ordering timestamp for path.
func sortTimestamp(path string) (time.Time, bool, error) {
	spec, err := times.Stat(path)
	if err != nil {
		return time.Time{}, false, err
	}
	if spec.HasBirthTime() {
		return spec.BirthTime(), true, nil
	}
	return spec.ModTime(), false, nil
}
