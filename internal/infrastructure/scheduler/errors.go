package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when registering a task on a started scheduler
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrTaskNotFound is returned when a task is not registered
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateTask is returned when a task name is registered twice
	ErrDuplicateTask = errors.New("task already registered")

	// ErrInvalidInterval is returned for tasks without a positive interval
	ErrInvalidInterval = errors.New("task interval must be positive")
)
