package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/invoice-scanner/internal/extraction"
)

// DefaultWorkers is the number of images processed concurrently by a Batch
const DefaultWorkers = 4

// contentTypes maps the file extensions an invoice can arrive as to the
// content type handed to the recognizer.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
	".heic": "image/heic",
	".heif": "image/heif",
}

// contentTypeFor returns the content type for a file name and whether the
// extension is one we can process.
func contentTypeFor(filename string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// Extractor turns an invoice image into its record
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (*extraction.InvoiceRecord, error)
}

// BatchSummary reports the outcome of a batch run
type BatchSummary struct {
	Found  int
	Saved  int
	Failed int
}

// Batch extracts every invoice image under a directory and writes one JSON
// record per image into OutputDir.
type Batch struct {
	Extractor Extractor
	OutputDir string
	Workers   int
}

// Run walks dir, processing images with at most Workers in flight. A file that
// fails is logged and counted; only walk errors and cancellation stop the run.
func (b *Batch) Run(ctx context.Context, dir string) (BatchSummary, error) {
	var summary BatchSummary

	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return summary, fmt.Errorf("creating output directory: %w", err)
	}

	workers := b.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var saved, failed atomic.Int64
	// output name -> first source path; the walk itself is sequential
	seen := make(map[string]string)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		contentType, ok := contentTypeFor(path)
		if !ok {
			return nil
		}
		if err := gctx.Err(); err != nil {
			return err
		}

		summary.Found++
		name := outputName(path)
		if first, dup := seen[name]; dup {
			slog.Warn("Skipping invoice with duplicate output name", "path", path, "output", name, "first", first)
			failed.Add(1)
			return nil
		}
		seen[name] = path

		g.Go(func() error {
			if err := b.processFile(gctx, path, contentType, name); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Error("Failed to process invoice", "path", path, "error", err)
				failed.Add(1)
				return nil
			}
			saved.Add(1)
			return nil
		})
		return nil
	})

	groupErr := g.Wait()
	summary.Saved = int(saved.Load())
	summary.Failed = int(failed.Load())

	if walkErr != nil {
		return summary, fmt.Errorf("walking %s: %w", dir, walkErr)
	}
	if groupErr != nil {
		return summary, groupErr
	}
	return summary, nil
}

func (b *Batch) processFile(ctx context.Context, path, contentType, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	record, err := b.Extractor.Extract(ctx, data, contentType)
	if err != nil {
		return err
	}

	out, err := encodeRecord(record)
	if err != nil {
		return err
	}

	target := filepath.Join(b.OutputDir, name)
	if err := os.WriteFile(target, out, 0644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	slog.Info("Saved invoice record", "path", path, "output", target, "line_items", len(record.LineItems))
	return nil
}

// outputName maps an image path to its record file name. Images with the same
// base name in different folders map to the same name.
func outputName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_output.json"
}

// encodeRecord renders a record with 4-space indentation and without HTML
// escaping, so descriptions keep their characters as printed.
func encodeRecord(record *extraction.InvoiceRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return buf.Bytes(), nil
}
