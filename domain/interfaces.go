package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ProjectParser parses a project directory into a ParsingResult.
// Parse errors abort the comparison; they are never turned into discrepancies.
type ProjectParser interface {
	Name() string
	Parse(ctx context.Context, root string, ec *ExecutionContext) (*ParsingResult, error)
}

// ExecutableTask is a unit of work run by the parallel executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks with bounded concurrency and a shared timeout
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
	SetMaxConcurrency(max int)
	SetTimeout(timeout time.Duration)
}

// ProgressManager creates progress trackers for long running tasks
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks the progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// OutputFormatter writes parity results
type OutputFormatter interface {
	WriteParity(response *ParityResponse, format OutputFormat, writer io.Writer) error
}

// SettingsResolver resolves Maven settings and publishes them into an execution context
type SettingsResolver interface {
	// Initialize reads the user settings file if present, otherwise synthesizes defaults
	Initialize(ec *ExecutionContext) (*Settings, error)

	// InitializeFrom parses an explicit settings file and decrypts server passwords
	// with the master key from the security settings file
	InitializeFrom(settingsPath, securityPath string, ec *ExecutionContext) (*Settings, error)
}
