package service

import (
	"context"
	"log"
	"sync"
	"time"

	"paperbridge/internal/port"
)

// JobQueueConfig holds settings for the job queue worker.
type JobQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
	JobTimeout   time.Duration
}

// JobQueueWorker polls for queued jobs and dispatches them for execution.
type JobQueueWorker struct {
	jobRepo    port.JobRepository
	jobService JobService
	cfg        JobQueueConfig
	wg         sync.WaitGroup
}

// NewJobQueueWorker creates a new JobQueueWorker.
func NewJobQueueWorker(jobRepo port.JobRepository, jobService JobService, cfg JobQueueConfig) *JobQueueWorker {
	return &JobQueueWorker{
		jobRepo:    jobRepo,
		jobService: jobService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *JobQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("jobQueueWorker: started (poll=%s, concurrency=%d, timeout=%s)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.JobTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Printf("jobQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Printf("jobQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			jobs, err := w.jobRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll, the ctx.Done case exits next
					continue
				}
				log.Printf("jobQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range jobs {
				job := jobs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight jobs complete even during shutdown.
					jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
					defer cancel()

					w.jobService.RunJob(jobCtx, &job)
				}()
			}
		}
	}
}
