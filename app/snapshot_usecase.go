package app

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/logging"
	"github.com/ludo-technologies/mvnparity/internal/snapshot"
)

// SnapshotRequest describes a snapshot capture
type SnapshotRequest struct {
	ProjectRoot string
	Parser      domain.ProjectParser
	Config      *config.Config

	// OutputPath receives the snapshot; the extension selects YAML or JSON
	OutputPath string
}

// SnapshotUseCase parses a project once and stores the result for later comparisons
type SnapshotUseCase struct {
	settings   domain.SettingsResolver
	fileHelper *FileHelper
}

// NewSnapshotUseCase creates a new snapshot use case
func NewSnapshotUseCase(settings domain.SettingsResolver) *SnapshotUseCase {
	return &SnapshotUseCase{
		settings:   settings,
		fileHelper: NewFileHelper(),
	}
}

// Execute parses the project and writes the snapshot
func (uc *SnapshotUseCase) Execute(ctx context.Context, req SnapshotRequest) (*domain.ParsingResult, error) {
	if req.Parser == nil || req.Config == nil {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("parser and configuration are required"))
	}
	if req.OutputPath == "" {
		return nil, domain.NewInvalidInputError("no snapshot output path specified", nil)
	}

	root, err := ResolveProjectRoot(uc.fileHelper, req.ProjectRoot)
	if err != nil {
		return nil, domain.NewFileNotFoundError(req.ProjectRoot, err)
	}

	ec := domain.NewExecutionContext()
	if _, err := ResolveSettings(uc.settings, req.Config.Maven, ec); err != nil {
		return nil, err
	}

	result, err := req.Parser.Parse(ctx, root, ec)
	if err != nil {
		return nil, err
	}

	if err := snapshot.WriteFile(req.OutputPath, result); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("snapshot written", "path", req.OutputPath, "records", result.Len())
	return result, nil
}
