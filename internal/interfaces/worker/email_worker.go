package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

const queueSize = 100

type EmailJob struct {
	ID   string
	Text string
}

type Suggester interface {
	Execute(ctx context.Context, source email.Source, id, text string) (*email.Suggestion, error)
}

type Pool struct {
	workers   int
	jobs      chan EmailJob
	suggester Suggester
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewPool(workers int, suggester Suggester, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers:   workers,
		jobs:      make(chan EmailJob, queueSize),
		suggester: suggester,
		logger:    logger,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Worker pool started", zap.Int("workers", p.workers))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues job, blocking while the queue is full. It returns false if
// ctx ends first.
func (p *Pool) Submit(ctx context.Context, job EmailJob) bool {
	select {
	case p.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
	p.logger.Info("Worker pool shut down")
}

func (p *Pool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if _, err := p.suggester.Execute(ctx, email.SourcePubSub, job.ID, job.Text); err != nil {
			p.logger.Error("Failed to process email",
				zap.Int("worker", workerID),
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
	}
}
