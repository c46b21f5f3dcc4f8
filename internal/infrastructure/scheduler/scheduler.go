package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/cache"
)

// Task is work that runs on a fixed interval
type Task interface {
	Name() string
	Interval() time.Duration
	Execute(ctx context.Context) error
}

// lockPrefix namespaces the distributed lock of each task
const lockPrefix = "storefront.task."

// Option configures the scheduler
type Option func(*Scheduler)

// WithTaskTimeout bounds a single task run
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.taskTimeout = d
	}
}

// WithRunOnStart runs every task once as soon as the scheduler starts
func WithRunOnStart(run bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = run
	}
}

// Scheduler runs registered tasks on their intervals. Each run holds a lock
// named after the task, so only one node runs a task at a time.
type Scheduler struct {
	locker      cache.Locker
	logger      *zap.Logger
	taskTimeout time.Duration
	runOnStart  bool

	mu        sync.Mutex
	tasks     map[string]Task
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(locker cache.Locker, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		locker:      locker,
		logger:      logger,
		taskTimeout: 30 * time.Minute,
		tasks:       make(map[string]Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a task. Tasks cannot be added once the scheduler has started.
func (s *Scheduler) Register(t Task) error {
	if t.Interval() <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, t.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.tasks[t.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name())
	}
	s.tasks[t.Name()] = t
	return nil
}

// Tasks returns the registered task names in order
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start starts one loop per registered task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}

	s.logger.Info("Task scheduler started", zap.Int("tasks", len(s.tasks)))
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Wait for running tasks with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Task scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Task scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a task once, under its lock. It reports whether the lock was acquired.
func (s *Scheduler) RunNow(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return s.run(ctx, t)
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	if s.runOnStart {
		s.runLogged(ctx, t)
	}

	ticker := time.NewTicker(t.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Task loop stopping", zap.String("task", t.Name()))
			return
		case <-ticker.C:
			s.runLogged(ctx, t)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context, t Task) {
	start := time.Now()
	acquired, err := s.run(ctx, t)
	switch {
	case err != nil:
		s.logger.Error("Task failed",
			zap.String("task", t.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	case !acquired:
		s.logger.Debug("Task is running on another node", zap.String("task", t.Name()))
	default:
		s.logger.Info("Task completed",
			zap.String("task", t.Name()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Scheduler) run(ctx context.Context, t Task) (bool, error) {
	taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	return s.locker.PerformActionWithLock(taskCtx, lockPrefix+t.Name(), t.Interval(), t.Execute)
}
