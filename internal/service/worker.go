package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// PipelineWorker reruns the full pipeline on a fixed interval while
// serve mode is up, so reports stay fresh without operator action.
type PipelineWorker struct {
	pipeline *Pipeline
	interval time.Duration

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

func NewPipelineWorker(pipeline *Pipeline, interval time.Duration) *PipelineWorker {
	return &PipelineWorker{pipeline: pipeline, interval: interval}
}

// Start runs the pipeline immediately, then on every tick until the
// context is cancelled. Run failures are logged and retried next tick.
func (w *PipelineWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("pipeline worker starting")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-ctx.Done():
			log.Info().Msg("pipeline worker stopping")
			return
		}
	}
}

func (w *PipelineWorker) runOnce(ctx context.Context) {
	_, err := w.pipeline.Run(ctx)

	w.mu.Lock()
	w.lastRun = time.Now()
	w.lastErr = err
	w.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("scheduled pipeline run failed")
	}
}

// Status returns the time and outcome of the last run.
func (w *PipelineWorker) Status() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRun, w.lastErr
}
