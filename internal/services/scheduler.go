package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of deferred work. It receives the scheduler's context.
type Task func(ctx context.Context)

var ErrSchedulerStopped = errors.New("scheduler stopped")

// Scheduler runs one-shot tasks after a delay on a fixed pool of workers.
// Armed tasks cannot be cancelled. A fired task waits for queue room instead
// of being skipped.
type Scheduler struct {
	workers int
	queue   chan Task
	log     *logrus.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
	cancel  context.CancelFunc
	group   *errgroup.Group
}

func NewScheduler(workers, queueSize int, log *logrus.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Scheduler{
		workers: workers,
		queue:   make(chan Task, queueSize),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		worker := i
		g.Go(func() error {
			s.work(gctx, worker)
			return nil
		})
	}
	s.group = g
	s.log.WithField("workers", s.workers).Info("Deferred task scheduler started")
}

func (s *Scheduler) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.queue:
			s.run(ctx, worker, task)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, worker int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{"worker": worker, "panic": r}).Error("Deferred task panicked")
		}
	}()
	task(ctx)
}

// RunAfter arms task to run once after d.
func (s *Scheduler) RunAfter(d time.Duration, task Task) error {
	select {
	case <-s.done:
		return ErrSchedulerStopped
	default:
	}

	time.AfterFunc(d, func() {
		select {
		case <-s.done:
			s.log.Warn("Scheduler stopped before a deferred task could run")
			return
		default:
		}
		select {
		case s.queue <- task:
		case <-s.done:
			s.log.Warn("Scheduler stopped before a deferred task could run")
		}
	})
	return nil
}

// Stop refuses new tasks, stops the workers and waits for running tasks to
// return. Tasks still queued are discarded and counted in the log.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return nil
	default:
		close(s.done)
	}
	cancel, group := s.cancel, s.group
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if group != nil {
		err = group.Wait()
	}

	if dropped := s.drain(); dropped > 0 {
		s.log.WithField("tasks", dropped).Warn("Scheduler stopped with queued tasks; they will not run")
	}
	return err
}

func (s *Scheduler) drain() int {
	n := 0
	for {
		select {
		case <-s.queue:
			n++
		default:
			return n
		}
	}
}
