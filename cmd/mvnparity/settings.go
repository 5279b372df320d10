package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/mvnparity/app"
	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/constants"
	"github.com/ludo-technologies/mvnparity/service"
)

const maskedPassword = "********"

type settingsOptions struct {
	common     commonFlags
	format     string
	showSecret bool
}

func settingsCmd() *cobra.Command {
	opts := &settingsOptions{}
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the resolved Maven settings",
		Long: `Resolve the Maven settings the parsers would see and print them.
Server and repository passwords are masked unless --show-passwords is given.

Examples:
  mvnparity settings
  mvnparity settings --settings ci/settings.xml --security ci/settings-security.xml
  mvnparity settings --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(cmd, opts)
		},
	}

	opts.common.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", constants.OutputFormatYAML, "Output format: yaml, json")
	cmd.Flags().BoolVar(&opts.showSecret, "show-passwords", false, "Print decrypted passwords")
	return cmd
}

func runSettings(cmd *cobra.Command, opts *settingsOptions) error {
	cfg, err := loadConfig(opts.common.configPath, "", opts.common.overrides())
	if err != nil {
		return exitError("failed to load configuration: %v", err)
	}
	_, logger := commandContext(cmd, cfg)

	resolver, err := newSettingsResolver(cfg, logger)
	if err != nil {
		return exitError("%v", err)
	}

	settings, err := app.ResolveSettings(resolver, cfg.Maven, domain.NewExecutionContext())
	if err != nil {
		return exitError("%v", err)
	}
	if !opts.showSecret {
		settings = maskPasswords(settings)
	}

	switch opts.format {
	case constants.OutputFormatJSON:
		err = service.WriteJSON(cmd.OutOrStdout(), settings)
	case constants.OutputFormatYAML:
		err = service.WriteYAML(cmd.OutOrStdout(), settings)
	default:
		return exitError("unsupported settings format: %s", opts.format)
	}
	if err != nil {
		return exitError("failed to write settings: %v", err)
	}
	return nil
}

// maskPasswords returns a copy of s with every non-empty password replaced
func maskPasswords(s *domain.Settings) *domain.Settings {
	masked := *s
	masked.Servers = make([]domain.Server, len(s.Servers))
	for i, srv := range s.Servers {
		if srv.Password != "" {
			srv.Password = maskedPassword
		}
		masked.Servers[i] = srv
	}

	masked.Profiles = make([]domain.Profile, len(s.Profiles))
	for i, p := range s.Profiles {
		repos := make([]domain.MavenRepository, len(p.Repositories))
		for j, repo := range p.Repositories {
			if repo.Password != "" {
				repo.Password = maskedPassword
			}
			repos[j] = repo
		}
		p.Repositories = repos
		masked.Profiles[i] = p
	}
	return &masked
}
