package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/internal/config"
	"github.com/ludo-technologies/mvnparity/internal/constants"
)

type initOptions struct {
	path        string
	force       bool
	minimal     bool
	interactive bool
	projectType string
	strictness  string
}

func initCmd() *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a mvnparity configuration file",
		Long: `Write a documented mvnparity.yaml with the defaults of the chosen presets.

Project types pick scanner exclusions:
  standard   build output and IDE metadata
  generated  also generated-sources directories
  monorepo   also node_modules, Gradle and build directories

Strictness levels pick parity tolerances:
  relaxed    normalized URIs, parent and packaging ignored
  standard   normalized URIs, module order ignored
  strict     literal URIs, settings and module order compared

Examples:
  mvnparity init
  mvnparity init --strictness strict --project-type generated
  mvnparity init --config ci/mvnparity.yaml --force
  mvnparity init --minimal
  mvnparity init -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "config", "c", constants.ConfigFileName, "Output path for the config file")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&opts.minimal, "minimal", false, "Write only the essential options")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Choose presets in a setup wizard")
	cmd.Flags().StringVar(&opts.projectType, "project-type", string(config.ProjectTypeStandard),
		"Project preset: standard, generated, monorepo")
	cmd.Flags().StringVar(&opts.strictness, "strictness", string(config.StrictnessStandard),
		"Parity preset: relaxed, standard, strict")
	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	projectType := config.ProjectType(opts.projectType)
	if _, ok := config.GetProjectPresets()[projectType]; !ok {
		return fmt.Errorf("unknown project type %q", opts.projectType)
	}
	strictness := config.Strictness(opts.strictness)
	if _, ok := config.GetStrictnessPresets()[strictness]; !ok {
		return fmt.Errorf("unknown strictness %q", opts.strictness)
	}

	path := opts.path
	if opts.interactive {
		var err error
		if projectType, strictness, path, err = runWizard(cmd.OutOrStdout(), path); err != nil {
			return err
		}
	}

	if err := checkConfigTarget(path, opts.force); err != nil {
		return err
	}

	content := config.GetFullConfigTemplate(projectType, strictness)
	if opts.minimal {
		content = config.GetMinimalConfigTemplate()
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "\nRun 'mvnparity verify . --comparing snapshot:<file>' to check your parsers.")
	return nil
}

// checkConfigTarget refuses to overwrite without force and requires the parent directory
func checkConfigTarget(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("directory does not exist: %s", dir)
	}
	return nil
}

// wizardOption is one entry of a promptui selection
type wizardOption struct {
	Label string
	Hint  string
}

func selectOption(label string, options []wizardOption) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: options,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }} {{ .Hint | faint }}",
			Inactive: "  {{ .Label }} {{ .Hint | faint }}",
			Selected: "{{ .Label | green }}",
		},
	}
	idx, _, err := prompt.Run()
	return idx, err
}

func runWizard(out io.Writer, defaultPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Fprintln(out, "\nmvnparity configuration")
	fmt.Fprintln(out)

	projectTypes := []config.ProjectType{config.ProjectTypeStandard, config.ProjectTypeGenerated, config.ProjectTypeMonorepo}
	idx, err := selectOption("What kind of project will be checked?", []wizardOption{
		{"Standard Maven project", "(target/ and IDE files skipped)"},
		{"Project with generated sources", "(generated-sources skipped)"},
		{"Monorepo with non-Maven modules", "(node_modules, Gradle and build/ skipped)"},
	})
	if err != nil {
		return "", "", "", fmt.Errorf("project selection cancelled: %w", err)
	}
	projectType := projectTypes[idx]

	levels := []config.Strictness{config.StrictnessStandard, config.StrictnessRelaxed, config.StrictnessStrict}
	idx, err = selectOption("How strict should the parity check be?", []wizardOption{
		{"Standard (recommended)", "(normalized URIs, module order ignored)"},
		{"Relaxed", "(also ignores parent and packaging)"},
		{"Strict", "(literal URIs, settings and module order compared)"},
	})
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	strictness := levels[idx]

	pathPrompt := promptui.Prompt{Label: "Config file", Default: defaultPath}
	path, err := pathPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if path == "" {
		path = defaultPath
	}
	return projectType, strictness, path, nil
}
