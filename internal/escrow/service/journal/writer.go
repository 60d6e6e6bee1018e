// Package journal buffers escrow events and ships them to the analytical
// store in the background. A failed or slow journal write never blocks or
// fails the money operation that produced the event.
package journal

import (
	"context"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/raisevaultlabs/raisevault-backend/pkg/batcher"
	"go.uber.org/zap"
)

type (
	// EventSink persists flushed event batches.
	EventSink interface {
		InsertEvents(ctx context.Context, events []model.Event) error
	}
)

// Writer batches events and writes them asynchronously.
type Writer struct {
	logger  *zap.Logger
	batcher *batcher.Batcher[model.Event]
}

func NewWriter(logger *zap.Logger, sink EventSink, flushSize int, flushInterval time.Duration, rps int) *Writer {
	return &Writer{
		logger:  logger,
		batcher: batcher.New(logger, sink.InsertEvents, flushSize, flushInterval, rps),
	}
}

// Start launches the background flush loop.
func (w *Writer) Start(ctx context.Context) {
	w.batcher.Start(ctx)
}

// Stop flushes buffered events and stops the loop.
func (w *Writer) Stop() {
	w.batcher.Stop()
}

// Record queues an event for the journal. Events that cannot be queued are
// logged and dropped; the ledger state they describe is already durable.
func (w *Writer) Record(ctx context.Context, event model.Event) {
	if err := w.batcher.Add(ctx, event); err != nil {
		w.logger.Warn("journal event dropped",
			zap.String("event_id", event.ID),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
	}
}
