package scheduler

import (
	"context"
	"time"

	"github.com/richxcame/currencies/internal/currency"
	"go.uber.org/zap"
)

// Worker runs the currency update-values command on a fixed interval
type Worker struct {
	refresher currency.ValuesRefresher
	options   currency.AutoUpdateOptions
	interval  time.Duration
	logger    *zap.Logger
	done      chan struct{}
}

// NewWorker creates a new auto-update worker
func NewWorker(refresher currency.ValuesRefresher, options currency.AutoUpdateOptions, interval time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		refresher: refresher,
		options:   options,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
// A non-positive interval disables the worker.
func (w *Worker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("currency auto-update worker disabled")
		return
	}

	w.logger.Info("currency auto-update worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("currency auto-update worker stopped", zap.Error(ctx.Err()))
			return
		case <-w.done:
			w.logger.Info("currency auto-update worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop signals the worker to exit. It must be called at most once.
func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) runOnce(ctx context.Context) {
	result, err := currency.UpdateValues(ctx, w.refresher, w.options)
	if err != nil {
		w.logger.Error("scheduled currency update failed", zap.Error(err))
		return
	}

	w.logger.Info(result.Message, zap.Bool("updated", result.Updated))
}
