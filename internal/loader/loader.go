// Package loader walks a corpus directory, parses each article export, and
// submits the records to the similarity index in batches. Loading is
// synchronous and single-writer: one loader process at a time.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"wikirag/internal/article"
	"wikirag/internal/index"
)

// DefaultBatchSize is the number of records per upsert batch.
const DefaultBatchSize = 32

// Limits applied when flattening record fields into index metadata.
// Metadata travels on every query result, so it stays small.
const (
	maxMetaSummaryRunes = 500
	maxMetaCategories   = 10
)

// Options configures a Load run.
type Options struct {
	// Reset deletes the entire prior index content before loading.
	// Destructive and irreversible; never implied.
	Reset bool
	// Recursive descends into subdirectories. The CLI default is true.
	Recursive bool
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int
}

// FileError records one file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

// Report summarizes a Load run. Per-file parse failures land in Errors and
// never abort the batch.
type Report struct {
	Files   int // document files discovered
	Loaded  int // records successfully upserted
	Skipped int // files skipped due to parse or read failures
	Errors  []FileError
}

// Loader ingests a corpus directory into an index.
type Loader struct {
	idx index.Index
	log *slog.Logger
}

// New creates a Loader. A nil logger falls back to slog.Default.
func New(idx index.Index, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{idx: idx, log: logger}
}

// Load ingests every document file under dir. Re-running Load over an
// unchanged directory is idempotent because records are upserted by
// identifier. It returns an error only for unrecoverable conditions:
// missing directory or an unreachable index.
func (l *Loader) Load(ctx context.Context, dir string, opts Options) (*Report, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	files, err := scanFiles(dir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	if opts.Reset {
		l.log.Info("resetting index before load")
		if err := l.idx.DeleteCollection(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	}

	report := &Report{Files: len(files)}
	batch := make([]index.Document, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.idx.Upsert(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		report.Loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable file", "path", path, "err", err)
			report.Skipped++
			report.Errors = append(report.Errors, FileError{Path: path, Err: err})
			continue
		}

		rec, err := article.Parse(string(raw), path)
		if err != nil {
			var parseErr *article.ParseError
			if !errors.As(err, &parseErr) {
				return report, err
			}
			l.log.Warn("skipping unparseable file", "path", path, "reason", parseErr.Reason)
			report.Skipped++
			report.Errors = append(report.Errors, FileError{Path: path, Err: err})
			continue
		}

		batch = append(batch, recordToDocument(rec))
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	l.log.Info("load complete",
		"files", report.Files, "loaded", report.Loaded, "skipped", report.Skipped)
	return report, nil
}

// recordToDocument flattens a parsed record into an indexable document.
// All metadata values are plain strings because the index filter language
// only supports predicates over primitive values.
func recordToDocument(rec *article.Record) index.Document {
	cats := rec.Categories
	if len(cats) > maxMetaCategories {
		cats = cats[:maxMetaCategories]
	}

	return index.Document{
		// The wiki_ prefix keeps identifiers from different corpora
		// distinguishable inside a shared collection.
		ID:      "wiki_" + rec.ID,
		Content: rec.Body,
		Metadata: map[string]string{
			"title":        rec.Title,
			"page_id":      rec.ID,
			"url":          rec.URL,
			"language":     rec.Language,
			"retrieved_at": rec.RetrievedAt,
			"summary":      truncateRunes(rec.Summary, maxMetaSummaryRunes),
			"categories":   strings.Join(cats, ","),
			"source":       rec.SourcePath,
		},
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
