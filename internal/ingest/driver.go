package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/facultykb/facultygraph/internal/extract"
	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/media"
	"github.com/facultykb/facultygraph/internal/metrics"
	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/internal/normalize"
	"github.com/facultykb/facultygraph/internal/store"
	"github.com/facultykb/facultygraph/internal/synth"
	"github.com/facultykb/facultygraph/internal/upsert"
)

const traceTail = 500

// Options tune a single ingestion run.
type Options struct {
	// SkipKnown drops rows whose subject already has a graph node,
	// before any extraction work.
	SkipKnown bool

	// MaxTextLength caps the biography text handed to the extractor,
	// in runes.
	MaxTextLength int
}

// Driver runs the full pipeline for one workbook: normalize, extract,
// synthesize, upsert. It owns the document state transitions.
type Driver struct {
	store    store.Store
	upserter *upsert.Upserter
	chain    *extract.Chain
	mirror   graph.Mirror
	media    *media.Dir
	logger   *slog.Logger
}

// NewDriver wires the pipeline stages together. The media dir may be
// nil when photos are not wanted.
func NewDriver(st store.Store, up *upsert.Upserter, chain *extract.Chain, mirror graph.Mirror, mediaDir *media.Dir, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		store:    st,
		upserter: up,
		chain:    chain,
		mirror:   mirror,
		media:    mediaDir,
		logger:   logger,
	}
}

// IngestDocument processes the workbook tracked by the document. The
// document moves pending → processing → processed, or to error with the
// failure recorded; in both cases the terminal state is persisted.
func (d *Driver) IngestDocument(ctx context.Context, doc *models.Document, opts Options) error {
	if err := d.store.MarkDocumentProcessing(ctx, doc.ID); err != nil {
		return err
	}

	result, err := d.run(ctx, doc.FilePath, opts)
	if err != nil {
		metrics.Inc(metrics.DocumentsFailed)
		d.logger.Error("ingestion failed", "document", doc.ID, "error", err)
		failure := &models.IngestResult{
			Error: err.Error(),
			Trace: tail(string(debug.Stack()), traceTail),
		}
		if ferr := d.store.FinishDocument(ctx, doc.ID, models.DocumentError, failure); ferr != nil {
			d.logger.Error("recording failure state failed", "document", doc.ID, "error", ferr)
		}
		return err
	}

	metrics.Inc(metrics.DocumentsIngested)
	d.logger.Info("ingestion finished",
		"document", doc.ID,
		"processed", result.ProcessedCount,
		"skipped", result.SkippedCount,
		"triples", result.TriplesCount)
	return d.store.FinishDocument(ctx, doc.ID, models.DocumentProcessed, result)
}

// IngestFile runs the pipeline for a workbook outside the document state
// machine, for direct CLI use.
func (d *Driver) IngestFile(ctx context.Context, path string, opts Options) (*models.IngestResult, error) {
	return d.run(ctx, path, opts)
}

func (d *Driver) run(ctx context.Context, path string, opts Options) (*models.IngestResult, error) {
	rows, err := ReadWorkbook(path)
	if err != nil {
		return nil, err
	}

	result := &models.IngestResult{}
	var batch []models.Triple

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if opts.SkipKnown {
			known, err := d.mirror.HasSubject(ctx, row.Name)
			if err != nil {
				d.logger.Warn("known-subject check failed", "name", row.Name, "error", err)
			} else if known {
				metrics.Inc(metrics.RowsSkipped)
				result.SkippedCount++
				d.logger.Debug("skipping known subject", "name", row.Name, "row", row.Index)
				continue
			}
		}

		intro := normalize.Clean(row.Intro, 0)
		text := normalize.Clean(row.FullText(), opts.MaxTextLength)

		photoURL := d.savePhoto(row)
		if _, err := d.upserter.UpsertSubject(ctx, row.Name, intro, photoURL); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", row.Index, row.Name, err)
		}

		extracted := d.chain.Extract(ctx, row.Name, text)
		batch = append(batch, synth.Synthesize(extracted, row.Name)...)

		metrics.Inc(metrics.RowsProcessed)
		result.ProcessedCount++
	}

	for _, t := range synth.Dedupe(batch) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.upserter.UpsertTriple(ctx, t); err != nil {
			return nil, fmt.Errorf("storing %s -%s-> %s: %w", t.Subject, t.Relation, t.Object, err)
		}
		metrics.Inc(metrics.TriplesCreated)
		result.TriplesCount++
	}

	result.Message = fmt.Sprintf("成功处理 %d 位导师数据，生成 %d 条关系。", result.ProcessedCount, result.TriplesCount)
	return result, nil
}

func (d *Driver) savePhoto(row Row) string {
	if d.media == nil || len(row.Photo) == 0 {
		return ""
	}
	url, err := d.media.SavePhoto(row.Name, row.Index, row.Photo)
	if err != nil {
		d.logger.Warn("saving photo failed", "name", row.Name, "row", row.Index, "error", err)
		return ""
	}
	return url
}

// tail keeps the last n runes of s.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
