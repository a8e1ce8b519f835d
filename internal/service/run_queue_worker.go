package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/port"
)

// runProcessTimeout bounds one run end to end: every document of the run is
// downloaded and extracted within this window.
const runProcessTimeout = 15 * time.Minute

// RunQueueConfig holds settings for the run queue worker.
type RunQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// RunQueueWorker polls for queued validation runs and dispatches them for
// processing.
type RunQueueWorker struct {
	runRepo    port.RunRepository
	runService RunService
	cfg        RunQueueConfig
	wg         sync.WaitGroup
}

// NewRunQueueWorker creates a new RunQueueWorker.
func NewRunQueueWorker(runRepo port.RunRepository, runService RunService, cfg RunQueueConfig) *RunQueueWorker {
	return &RunQueueWorker{
		runRepo:    runRepo,
		runService: runService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight runs have finished processing.
func (w *RunQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("runQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("runQueueWorker: shutting down, waiting for in-flight runs...")
			w.wg.Wait()
			log.Printf("runQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			for n := 0; n < available; n++ {
				run, err := w.runRepo.ClaimNextQueued(ctx)
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
						break
					}
					log.Printf("runQueueWorker: ClaimNextQueued error: %v", err)
					break
				}

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func(run *domain.ValidationRun) {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight runs complete even during shutdown.
					procCtx, cancel := context.WithTimeout(context.Background(), runProcessTimeout)
					defer cancel()

					log.Printf("runQueueWorker: dispatching run %s (%d files)", run.ID, run.FileCount)
					w.runService.ProcessRun(procCtx, run)
				}(run)
			}
		}
	}
}
