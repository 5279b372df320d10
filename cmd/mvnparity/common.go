package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/constants"
	"github.com/ludo-technologies/mvnparity/internal/logging"
	"github.com/ludo-technologies/mvnparity/internal/mavensettings"
	"github.com/ludo-technologies/mvnparity/internal/scanner"
	"github.com/ludo-technologies/mvnparity/internal/snapshot"
	"github.com/ludo-technologies/mvnparity/service"
)

// CheckExitError carries the process exit code of a parity command
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

func exitError(format string, args ...interface{}) *CheckExitError {
	return &CheckExitError{Code: constants.ExitError, Message: fmt.Sprintf(format, args...)}
}

// commonFlags are shared by every command that loads configuration
type commonFlags struct {
	configPath   string
	settingsFile string
	securityFile string
	userHome     string
	logLevel     string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&f.settingsFile, "settings", "", "Maven settings.xml to use instead of ~/.m2/settings.xml")
	cmd.Flags().StringVar(&f.securityFile, "security", "", "Maven settings-security.xml holding the master password")
	cmd.Flags().StringVar(&f.userHome, "user-home", "", "Directory substituted for ${user.home}")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func (f *commonFlags) overrides() service.ConfigOverrides {
	return service.ConfigOverrides{
		SettingsFile: f.settingsFile,
		SecurityFile: f.securityFile,
		UserHome:     f.userHome,
		LogLevel:     f.logLevel,
	}
}

// loadConfig discovers the configuration starting at target and applies CLI overrides
func loadConfig(configPath, target string, overrides service.ConfigOverrides) (*config.Config, error) {
	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(configPath, target)
	if err != nil {
		return nil, err
	}
	return loader.MergeConfig(cfg, overrides)
}

// commandContext returns the command context carrying a logger built from cfg
func commandContext(cmd *cobra.Command, cfg *config.Config) (context.Context, *slog.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	return logging.WithLogger(ctx, logger), logger
}

func newSettingsResolver(cfg *config.Config, logger *slog.Logger) (*mavensettings.Resolver, error) {
	return mavensettings.NewResolver(mavensettings.ResolverConfig{
		UserHome: cfg.Maven.UserHome,
		Logger:   logger,
	})
}

// parserFromSpec builds a parser from "scanner", "scanner:<uri-style>" or "snapshot:<file>"
func parserFromSpec(spec string, cfg *config.Config) (domain.ProjectParser, error) {
	kind, arg, _ := strings.Cut(spec, ":")
	switch kind {
	case constants.ParserScanner:
		opts, err := cfg.ToScannerOptions()
		if err != nil {
			return nil, err
		}
		if arg != "" {
			style, err := scanner.ParseURIStyle(arg)
			if err != nil {
				return nil, err
			}
			opts.URIStyle = style
			opts.Name = spec
		}
		return scanner.New(opts), nil
	case constants.ParserSnapshot:
		if arg == "" {
			return nil, fmt.Errorf("snapshot parser needs a file: snapshot:<file>")
		}
		return snapshot.NewParser(arg), nil
	default:
		return nil, fmt.Errorf("unknown parser %q, must be scanner, scanner:<uri-style> or snapshot:<file>", spec)
	}
}

// parityExit turns a finished parity response into the command result
func parityExit(response *domain.ParityResponse) error {
	if response.Passed {
		return nil
	}
	return &CheckExitError{
		Code:    constants.ExitMismatch,
		Message: fmt.Sprintf("%d discrepancies found", len(response.Report.Discrepancies)),
	}
}
