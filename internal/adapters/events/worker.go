package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nischaysood/creator-connect/internal/application"
)

// Worker drains the event outbox on a fixed interval. A flush failure is
// logged and retried on the next tick rather than stopping the worker, so a
// broker outage never wedges verification traffic.
type Worker struct {
	logger       *slog.Logger
	service      *application.Service
	pollInterval time.Duration
}

func NewWorker(logger *slog.Logger, service *application.Service, pollInterval time.Duration) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{logger: logger, service: service, pollInterval: pollInterval}
}

func (w *Worker) Run(ctx context.Context) error {
	t := time.NewTicker(w.pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if w.service == nil {
				continue
			}
			if err := w.service.FlushOutbox(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox flush failed",
					"module", "events",
					"layer", "adapter",
					"operation", "flush_outbox",
					"outcome", "failure",
					"error", err.Error(),
				)
			}
		}
	}
}
