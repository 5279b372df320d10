package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/app"
)

type snapshotOptions struct {
	common commonFlags
	parser string
	output string
}

func snapshotCmd() *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot <project>",
		Short: "Parse a project and store the result",
		Long: `Parse a Maven project and write the result to a YAML or JSON file that
can later serve as the comparing side of 'verify' or 'compare'.

Examples:
  mvnparity snapshot . -o reference.yaml
  mvnparity snapshot ./service --parser scanner:file:/ -o service.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, args, opts)
		},
	}

	opts.common.register(cmd)
	cmd.Flags().StringVarP(&opts.parser, "parser", "p", "scanner", "Parser producing the snapshot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Snapshot file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string, opts *snapshotOptions) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := loadConfig(opts.common.configPath, root, opts.common.overrides())
	if err != nil {
		return exitError("failed to load configuration: %v", err)
	}
	ctx, logger := commandContext(cmd, cfg)

	parser, err := parserFromSpec(opts.parser, cfg)
	if err != nil {
		return exitError("invalid --parser: %v", err)
	}
	resolver, err := newSettingsResolver(cfg, logger)
	if err != nil {
		return exitError("%v", err)
	}

	result, err := app.NewSnapshotUseCase(resolver).Execute(ctx, app.SnapshotRequest{
		ProjectRoot: root,
		Parser:      parser,
		Config:      cfg,
		OutputPath:  opts.output,
	})
	if err != nil {
		return exitError("snapshot failed: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", result.Len(), opts.output)
	return nil
}
