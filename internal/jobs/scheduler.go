package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/flashrun/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Scheduler runs jobs on fixed intervals. A job never overlaps with itself.
type Scheduler struct {
	scheduler *gocron.Scheduler
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	log       *logger.Logger
}

func NewScheduler() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Every registers job to run each interval, starting immediately once the scheduler starts.
func (s *Scheduler) Every(interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %v", job.Name(), interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.scheduler.Every(interval).Do(s.run, job); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	s.log.Debug("scheduled job %s every %v", job.Name(), interval)
	return nil
}

func (s *Scheduler) run(job Job) {
	jobLog := s.log.WithField("job", job.Name())
	start := time.Now()
	ctx := logger.NewContext(s.ctx, jobLog)

	if err := job.Run(ctx); err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
		return
	}
	jobLog.Debug("job completed in %v", time.Since(start))
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler with %d jobs", len(s.scheduler.Jobs()))
	s.scheduler.StartAsync()
}

// Stop cancels in-flight jobs and waits for the scheduler to halt.
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	s.cancel()
	s.scheduler.Stop()
}
