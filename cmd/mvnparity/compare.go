package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/app"
	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/snapshot"
	"github.com/ludo-technologies/mvnparity/service"
)

type compareOptions struct {
	configPath    string
	format        string
	uriTolerance  string
	excludeFields []string
}

func compareCmd() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare <tested-snapshot> <comparing-snapshot>",
		Short: "Compare two stored parsing results",
		Long: `Compare two snapshot files written by 'mvnparity snapshot'. The first
file is the result under test, the second the reference.

Exit codes are the same as for 'verify'.

Examples:
  mvnparity compare new.yaml reference.yaml
  mvnparity compare new.json reference.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&opts.uriTolerance, "uri-tolerance", "", "URI comparison: normalize or strict")
	cmd.Flags().StringSliceVarP(&opts.excludeFields, "exclude-field", "x", nil,
		"Marker field names never compared (repeatable)")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string, opts *compareOptions) error {
	cfg, err := loadConfig(opts.configPath, "", service.ConfigOverrides{
		OutputFormat:   opts.format,
		URITolerance:   opts.uriTolerance,
		ExcludedFields: opts.excludeFields,
	})
	if err != nil {
		return exitError("failed to load configuration: %v", err)
	}
	ctx, _ := commandContext(cmd, cfg)

	tested, err := snapshot.LoadFile(args[0])
	if err != nil {
		return exitError("%v", err)
	}
	comparing, err := snapshot.LoadFile(args[1])
	if err != nil {
		return exitError("%v", err)
	}
	if tested.Parser == "" {
		tested.Parser = args[0]
	}
	if comparing.Parser == "" {
		comparing.Parser = args[1]
	}

	uc := app.NewParityUseCase(nil, nil, service.NewOutputFormatter())
	response, err := uc.CompareResults(ctx, tested, comparing, app.ParityRequest{
		Config:       cfg,
		OutputWriter: cmd.OutOrStdout(),
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
	})
	if err != nil {
		return exitError("comparison failed: %v", err)
	}
	return parityExit(response)
}
