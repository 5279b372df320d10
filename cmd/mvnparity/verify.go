package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/app"
	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/constants"
	"github.com/ludo-technologies/mvnparity/service"
)

type verifyOptions struct {
	common        commonFlags
	tested        string
	comparing     string
	format        string
	uriTolerance  string
	excludeFields []string
	parallel      bool
	sequential    bool
	timeout       int
}

func verifyCmd() *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify <project>",
		Short: "Parse a project with two parsers and compare the results",
		Long: `Parse a Maven project with a tested and a comparing parser and report
every discrepancy between the two results.

Parsers:
  scanner              the native scanner
  scanner:<uri-style>  the native scanner spelling artifact URIs as file:/ or file:///
  snapshot:<file>      a result dumped earlier with 'mvnparity snapshot'

Exit codes:
  0 - Results are equivalent
  1 - Discrepancies found
  2 - Error (parse failure, bad configuration, etc.)

Examples:
  # Check the scanner against a stored reference
  mvnparity verify . --comparing snapshot:reference.yaml

  # Strict URI comparison, JSON report
  mvnparity verify . --comparing snapshot:ref.json --uri-tolerance strict --format json

  # Ignore packaging differences
  mvnparity verify . --comparing snapshot:ref.yaml --exclude-field packaging`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, opts)
		},
	}

	opts.common.register(cmd)
	cmd.Flags().StringVarP(&opts.tested, "tested", "t", constants.ParserScanner,
		"Parser under test")
	cmd.Flags().StringVarP(&opts.comparing, "comparing", "r", "",
		"Reference parser (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "",
		"Output format: text, json, yaml")
	cmd.Flags().StringVar(&opts.uriTolerance, "uri-tolerance", "",
		"URI comparison: normalize or strict")
	cmd.Flags().StringSliceVarP(&opts.excludeFields, "exclude-field", "x", nil,
		"Marker field names never compared (repeatable)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false,
		"Run both parsers concurrently")
	cmd.Flags().BoolVar(&opts.sequential, "sequential", false,
		"Run the tested parser first, then the comparing parser")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0,
		"Timeout in seconds for parsing both projects")
	_ = cmd.MarkFlagRequired("comparing")
	cmd.MarkFlagsMutuallyExclusive("parallel", "sequential")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, opts *verifyOptions) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	overrides := opts.common.overrides()
	overrides.OutputFormat = opts.format
	overrides.URITolerance = opts.uriTolerance
	overrides.ExcludedFields = opts.excludeFields
	overrides.TimeoutSeconds = opts.timeout
	if cmd.Flags().Changed("parallel") || cmd.Flags().Changed("sequential") {
		parallel := opts.parallel && !opts.sequential
		overrides.Parallel = &parallel
	}

	cfg, err := loadConfig(opts.common.configPath, root, overrides)
	if err != nil {
		return exitError("failed to load configuration: %v", err)
	}
	ctx, logger := commandContext(cmd, cfg)

	tested, err := parserFromSpec(opts.tested, cfg)
	if err != nil {
		return exitError("invalid --tested: %v", err)
	}
	comparing, err := parserFromSpec(opts.comparing, cfg)
	if err != nil {
		return exitError("invalid --comparing: %v", err)
	}

	resolver, err := newSettingsResolver(cfg, logger)
	if err != nil {
		return exitError("%v", err)
	}

	// Progress bars only make sense next to a text report
	pm := service.NewProgressManager(cfg.Output.Format == constants.OutputFormatText)
	defer pm.Close()

	uc, err := app.NewParityUseCaseBuilder().
		WithSettingsResolver(resolver).
		WithRunner(service.NewParseRunner(&cfg.Performance, pm)).
		WithFormatter(service.NewOutputFormatter()).
		Build()
	if err != nil {
		return exitError("%v", err)
	}

	response, err := uc.Execute(ctx, app.ParityRequest{
		ProjectRoot:  root,
		Tested:       tested,
		Comparing:    comparing,
		Config:       cfg,
		OutputWriter: cmd.OutOrStdout(),
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
	})
	if err != nil {
		return exitError("verification failed: %v", err)
	}

	logger.Debug("verify finished", "passed", response.Passed, "duration_ms", response.DurationMs)
	return parityExit(response)
}

