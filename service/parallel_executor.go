package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/logging"
)

// Default values for the parallel executor
const (
	// DefaultMaxConcurrency covers one tested and one comparing parser
	DefaultMaxConcurrency = config.DefaultMaxGoroutines
	DefaultTimeout        = config.DefaultTimeoutSeconds * time.Second
)

// TaskError represents a single task failure
type TaskError struct {
	TaskName string
	Err      error

	// order is the position of the task in the submitted list
	order int
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects every task failure in submission order
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tasks failed:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap returns the error of the first submitted task that failed
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl implements domain.ParallelExecutor on top of errgroup.
// A failing task never cancels the others; all failures are aggregated.
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
	progress       domain.ProgressManager
	mu             sync.RWMutex
}

// NewParallelExecutor creates an executor with the default limits
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: DefaultMaxConcurrency,
		timeout:        DefaultTimeout,
	}
}

// NewParallelExecutorFromConfig creates an executor from the performance section.
// Non-positive values fall back to the defaults.
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(cfg.MaxGoroutines)
	executor.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return executor
}

// NewParallelExecutorWithProgress creates an executor reporting to pm
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutorFromConfig(cfg)
	executor.progress = pm
	return executor
}

// Execute runs the enabled tasks and waits for all of them. With a
// concurrency of one the tasks start in the order given.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabled := e.filterEnabledTasks(tasks)
	if len(enabled) == 0 {
		return nil
	}

	e.mu.RLock()
	limit, timeout := e.maxConcurrency, e.timeout
	e.mu.RUnlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var progress domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		progress = e.progress.StartTask("Parsing projects", len(enabled))
	}
	defer progress.Complete()

	logger := logging.FromContext(ctx)
	g, gCtx := errgroup.WithContext(runCtx)
	g.SetLimit(limit)

	var errMu sync.Mutex
	var failures []TaskError
	fail := func(order int, name string, err error) {
		errMu.Lock()
		failures = append(failures, TaskError{TaskName: name, Err: err, order: order})
		errMu.Unlock()
	}

	for i, t := range enabled {
		i, t := i, t // per-iteration copies; go directive is below 1.22
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				fail(i, t.Name(), fmt.Errorf("not started: %w", err))
				return nil
			}

			start := time.Now()
			_, err := t.Execute(gCtx)
			logger.Debug("task finished", "task", t.Name(), "duration", time.Since(start), "error", err)

			progress.Describe(t.Name())
			progress.Increment(1)
			if err != nil {
				fail(i, t.Name(), err)
			}
			// Failures are collected instead of returned so the group keeps running
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].order < failures[b].order })
	return &AggregatedError{Errors: failures}
}

// SetMaxConcurrency sets the maximum number of concurrent tasks; values below one are ignored
func (e *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max > 0 {
		e.maxConcurrency = max
	}
}

// SetTimeout bounds a whole Execute call; non-positive values are ignored
func (e *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout > 0 {
		e.timeout = timeout
	}
}

func (e *ParallelExecutorImpl) filterEnabledTasks(tasks []domain.ExecutableTask) []domain.ExecutableTask {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	return enabled
}
