package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/internal/constants"
	"github.com/ludo-technologies/mvnparity/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mvnparity",
		Short: "mvnparity - parity checker for Maven project parsers",
		Long: `mvnparity parses a Maven project with two parsers and reports every
difference between their results: source files, resolved modules and
dependencies, classpaths and build tool markers.`,
		Version: Version,
	}

	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Handle custom exit codes from parity commands
		var exitErr *CheckExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitError)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "mvnparity %s\n", version.Get())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "mvnparity version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
