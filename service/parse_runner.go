package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/logging"
)

// parseTask adapts a ProjectParser to domain.ExecutableTask
type parseTask struct {
	role   string
	parser domain.ProjectParser
	root   string
	ec     *domain.ExecutionContext
	result *domain.ParsingResult
}

func (t *parseTask) Name() string {
	return t.role + " (" + t.parser.Name() + ")"
}

func (t *parseTask) IsEnabled() bool {
	return t.parser != nil
}

func (t *parseTask) Execute(ctx context.Context) (interface{}, error) {
	logger := logging.FromContext(ctx).With("role", t.role, "parser", t.parser.Name())
	start := time.Now()

	result, err := t.parser.Parse(logging.WithLogger(ctx, logger), t.root, t.ec)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("parser returned no result")
	}
	if result.Parser == "" {
		result.Parser = t.parser.Name()
	}

	logger.Info("project parsed", "records", result.Len(), "duration", time.Since(start))
	t.result = result
	return result, nil
}

// ParseRunner runs the tested and comparing parsers over the same project
type ParseRunner struct {
	executor domain.ParallelExecutor
}

// NewParseRunner creates a runner from the performance configuration.
// Without Parallel the parsers run one at a time, tested first.
func NewParseRunner(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParseRunner {
	executor := NewParallelExecutorWithProgress(cfg, pm)
	if !cfg.Parallel {
		executor.SetMaxConcurrency(1)
	}
	return &ParseRunner{executor: executor}
}

// NewParseRunnerWithExecutor creates a runner on top of an existing executor
func NewParseRunnerWithExecutor(executor domain.ParallelExecutor) *ParseRunner {
	return &ParseRunner{executor: executor}
}

// Run parses root with both parsers. Any parse failure aborts the run;
// failures of both parsers are reported together as an *AggregatedError.
func (r *ParseRunner) Run(
	ctx context.Context,
	root string,
	tested, comparing domain.ProjectParser,
	ec *domain.ExecutionContext,
) (*domain.ParsingResult, *domain.ParsingResult, error) {
	if tested == nil || comparing == nil {
		return nil, nil, domain.NewInvalidInputError("both a tested and a comparing parser are required", nil)
	}

	testedTask := &parseTask{role: "tested", parser: tested, root: root, ec: ec}
	comparingTask := &parseTask{role: "comparing", parser: comparing, root: root, ec: ec}

	if err := r.executor.Execute(ctx, []domain.ExecutableTask{testedTask, comparingTask}); err != nil {
		return nil, nil, err
	}

	// Only reachable with an executor that skips tasks without reporting them
	if testedTask.result == nil || comparingTask.result == nil {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, errors.New("parse run timed out before both parsers finished")
	}
	return testedTask.result, comparingTask.result, nil
}
