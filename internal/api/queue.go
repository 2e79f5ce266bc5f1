package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/facultykb/facultygraph/internal/ingest"
	"github.com/facultykb/facultygraph/internal/models"
)

// ErrQueueFull is returned when the ingestion queue cannot accept
// another document.
var ErrQueueFull = errors.New("ingestion queue is full")

// Queue processes uploaded documents one at a time in the background.
// A single worker keeps ingestion runs from interleaving writes.
type Queue struct {
	jobs   chan *models.Document
	driver *ingest.Driver
	opts   ingest.Options
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewQueue creates a queue holding at most size pending documents.
func NewQueue(driver *ingest.Driver, opts ingest.Options, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:   make(chan *models.Document, size),
		driver: driver,
		opts:   opts,
		logger: logger,
	}
}

// Start launches the worker. It returns immediately; the worker exits
// when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case doc := <-q.jobs:
				// Failures are recorded on the document itself.
				if err := q.driver.IngestDocument(ctx, doc, q.opts); err != nil {
					q.logger.Error("background ingestion failed",
						"document", doc.ID, "error", err)
				}
			}
		}
	}()
}

// Enqueue hands a pending document to the worker without blocking.
func (q *Queue) Enqueue(doc *models.Document) error {
	select {
	case q.jobs <- doc:
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait blocks until the worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}
