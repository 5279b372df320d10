package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/logging"
	"github.com/ludo-technologies/mvnparity/internal/parity"
	"github.com/ludo-technologies/mvnparity/internal/version"
)

// ParseRunner runs the tested and comparing parsers over one project
type ParseRunner interface {
	Run(ctx context.Context, root string, tested, comparing domain.ProjectParser, ec *domain.ExecutionContext) (*domain.ParsingResult, *domain.ParsingResult, error)
}

// ParityRequest describes one parity check
type ParityRequest struct {
	ProjectRoot string
	Tested      domain.ProjectParser
	Comparing   domain.ProjectParser
	Config      *config.Config

	// OutputWriter receives the formatted report; nil skips formatting
	OutputWriter io.Writer
	OutputFormat domain.OutputFormat
}

// ParityUseCase orchestrates settings resolution, parsing and verification
type ParityUseCase struct {
	settings   domain.SettingsResolver
	runner     ParseRunner
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewParityUseCase creates a new parity use case
func NewParityUseCase(settings domain.SettingsResolver, runner ParseRunner, formatter domain.OutputFormatter) *ParityUseCase {
	return &ParityUseCase{
		settings:   settings,
		runner:     runner,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute runs both parsers and compares their results. A failed comparison
// is not an error: the returned response carries Passed=false.
func (uc *ParityUseCase) Execute(ctx context.Context, req ParityRequest) (*domain.ParityResponse, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	root, err := ResolveProjectRoot(uc.fileHelper, req.ProjectRoot)
	if err != nil {
		return nil, domain.NewFileNotFoundError(req.ProjectRoot, err)
	}
	if !uc.fileHelper.HasPOM(root) {
		logger.Warn("project root has no pom.xml", "root", root)
	}

	ec := domain.NewExecutionContext()
	if _, err := ResolveSettings(uc.settings, req.Config.Maven, ec); err != nil {
		return nil, err
	}

	tested, comparing, err := uc.runner.Run(ctx, root, req.Tested, req.Comparing, ec)
	if err != nil {
		return nil, err
	}

	return uc.respond(ctx, start, root, tested, comparing, req)
}

// CompareResults checks two results that were produced elsewhere, such as
// two loaded snapshots. Only Config and the output fields of req are used.
func (uc *ParityUseCase) CompareResults(ctx context.Context, tested, comparing *domain.ParsingResult, req ParityRequest) (*domain.ParityResponse, error) {
	if req.Config == nil {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("no configuration specified"))
	}
	if err := req.Config.Validate(); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}
	return uc.respond(ctx, time.Now(), req.ProjectRoot, tested, comparing, req)
}

func (uc *ParityUseCase) respond(
	ctx context.Context,
	start time.Time,
	root string,
	tested, comparing *domain.ParsingResult,
	req ParityRequest,
) (*domain.ParityResponse, error) {
	checker := parity.NewChecker(req.Config.ToParityOptions())
	report := checker.Verify(tested, comparing)
	logging.FromContext(ctx).Info("parity check finished",
		"tested", report.TestedParser,
		"comparing", report.ComparingParser,
		"records", report.RecordsCompared,
		"discrepancies", len(report.Discrepancies))

	response := &domain.ParityResponse{
		ProjectRoot: root,
		Passed:      report.Passed(),
		Report:      report,
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	if req.OutputWriter != nil {
		if uc.formatter == nil {
			return nil, domain.NewOutputError("no formatter configured", nil)
		}
		if err := uc.formatter.WriteParity(response, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write parity report", err)
		}
	}

	return response, nil
}

// validateRequest validates the parity request
func (uc *ParityUseCase) validateRequest(req ParityRequest) error {
	if req.Tested == nil {
		return fmt.Errorf("no tested parser specified")
	}
	if req.Comparing == nil {
		return fmt.Errorf("no comparing parser specified")
	}
	if req.Config == nil {
		return fmt.Errorf("no configuration specified")
	}
	if err := req.Config.Validate(); err != nil {
		return err
	}
	if req.OutputWriter != nil && uc.formatter == nil {
		return fmt.Errorf("output writer given without a formatter")
	}
	return nil
}

// ParityUseCaseBuilder provides a builder pattern for creating ParityUseCase
type ParityUseCaseBuilder struct {
	settings  domain.SettingsResolver
	runner    ParseRunner
	formatter domain.OutputFormatter
}

// NewParityUseCaseBuilder creates a new builder
func NewParityUseCaseBuilder() *ParityUseCaseBuilder {
	return &ParityUseCaseBuilder{}
}

// WithSettingsResolver sets the Maven settings resolver
func (b *ParityUseCaseBuilder) WithSettingsResolver(settings domain.SettingsResolver) *ParityUseCaseBuilder {
	b.settings = settings
	return b
}

// WithRunner sets the parse runner
func (b *ParityUseCaseBuilder) WithRunner(runner ParseRunner) *ParityUseCaseBuilder {
	b.runner = runner
	return b
}

// WithFormatter sets the output formatter
func (b *ParityUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ParityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the ParityUseCase
func (b *ParityUseCaseBuilder) Build() (*ParityUseCase, error) {
	if b.settings == nil {
		return nil, fmt.Errorf("settings resolver is required")
	}
	if b.runner == nil {
		return nil, fmt.Errorf("parse runner is required")
	}
	return NewParityUseCase(b.settings, b.runner, b.formatter), nil
}
