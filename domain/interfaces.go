package domain

import (
	"context"
	"io"
	"time"
)

// ExecutableTask is one unit of work a ParallelExecutor can run — one
// section's full pipeline run, in this project's case. The executor is
// deliberately payload-agnostic; only the task itself knows what a unit of
// work means.
type ExecutableTask interface {
	// Name identifies the task for error messages and progress reporting.
	Name() string
	// Execute runs the task, returning its result (typically a
	// *SectionResult) or an error.
	Execute(ctx context.Context) (interface{}, error)
	// IsEnabled reports whether the task should run at all.
	IsEnabled() bool
}

// ParallelExecutor runs a batch of ExecutableTasks with a bounded worker
// pool.
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
	SetMaxConcurrency(max int)
	SetTimeout(timeout time.Duration)
}

// ProgressManager tracks progress across named tasks, rendering a progress
// bar when the destination is an interactive terminal.
type ProgressManager interface {
	Initialize(totalUnits int)
	StartTask(taskName string)
	UpdateProgress(taskName string, processed, total int)
	CompleteTask(taskName string, success bool)
	SetWriter(w io.Writer)
	IsInteractive() bool
	Close()
}

// ProgressReporter is the simpler, non-task-keyed progress sink used by the
// CLI's single-pass commands (restructure, check).
type ProgressReporter interface {
	StartProgress(totalUnits int)
	UpdateProgress(currentUnit string, processed, total int)
	FinishProgress()
}

// ErrorCategory classifies a failure for user-facing recovery suggestions.
type ErrorCategory string

const (
	ErrorCategoryInput      ErrorCategory = "input"
	ErrorCategoryConfig     ErrorCategory = "config"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryOutput     ErrorCategory = "output"
	ErrorCategoryProcessing ErrorCategory = "processing"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// CategorizedError pairs an error with a category and a user-facing
// message for CLI diagnostics.
type CategorizedError struct {
	Category ErrorCategory
	Message  string
	Original error
}

func (c *CategorizedError) Error() string {
	if c == nil {
		return ""
	}
	if c.Original != nil {
		return c.Original.Error()
	}
	return c.Message
}

// ErrorCategorizer classifies opaque errors surfaced by the pipeline into
// ErrorCategory buckets with recovery suggestions for the CLI's error
// output.
type ErrorCategorizer interface {
	Categorize(err error) *CategorizedError
	GetRecoverySuggestions(category ErrorCategory) []string
}
