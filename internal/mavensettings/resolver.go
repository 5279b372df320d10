// Package mavensettings resolves Maven user settings into domain.Settings and
// publishes them into an execution context.
package mavensettings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/logging"
)

// ResolverConfig holds the values that would otherwise come from process-wide state
type ResolverConfig struct {
	// UserHome replaces ${user.home}; defaults to the current user's home
	UserHome string

	// LocalRepositoryDefault is used when settings.xml does not name a local
	// repository; defaults to file://<UserHome>/.m2/repository/
	LocalRepositoryDefault string

	// Getenv resolves ${env.X}; defaults to os.Getenv
	Getenv func(string) string

	Logger *slog.Logger
}

// Resolver reads settings.xml and settings-security.xml
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver creates a resolver, filling unset config values
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.UserHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, domain.NewSettingsError("cannot determine user home", err)
		}
		cfg.UserHome = home
	}
	if cfg.LocalRepositoryDefault == "" {
		cfg.LocalRepositoryDefault = DefaultLocalRepository(cfg.UserHome)
	}
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Resolver{cfg: cfg}, nil
}

// DefaultLocalRepository returns file://<home>/.m2/repository/
func DefaultLocalRepository(home string) string {
	return fileURI(filepath.Join(home, ".m2", "repository"))
}

// UserSettingsPath returns <home>/.m2/settings.xml
func (r *Resolver) UserSettingsPath() string {
	return filepath.Join(r.cfg.UserHome, ".m2", "settings.xml")
}

// UserSecurityPath returns <home>/.m2/settings-security.xml
func (r *Resolver) UserSecurityPath() string {
	return filepath.Join(r.cfg.UserHome, ".m2", "settings-security.xml")
}

// Initialize resolves the user's settings.xml when it exists, otherwise the
// defaults, and publishes the result into ec
func (r *Resolver) Initialize(ec *domain.ExecutionContext) (*domain.Settings, error) {
	settingsPath := r.UserSettingsPath()
	if _, err := os.Stat(settingsPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewSettingsError("cannot access "+settingsPath, err)
		}
		r.cfg.Logger.Debug("no user settings found, using defaults", "path", settingsPath)
		settings := r.defaults()
		ec.SetSettings(settings)
		return settings, nil
	}
	return r.InitializeFrom(settingsPath, r.UserSecurityPath(), ec)
}

// InitializeFrom resolves an explicit settings file. Encrypted server passwords
// are decrypted with the master password from securityPath; an empty or
// missing securityPath leaves them encrypted.
func (r *Resolver) InitializeFrom(settingsPath, securityPath string, ec *domain.ExecutionContext) (*domain.Settings, error) {
	raw, err := readSettingsFile(settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(settingsPath, err)
		}
		return nil, domain.NewSettingsError("cannot read settings", err)
	}

	settings := r.convert(raw)

	if err := r.decryptPasswords(settings, securityPath); err != nil {
		return nil, err
	}

	r.cfg.Logger.Debug("resolved maven settings",
		"path", settingsPath,
		"local_repository", settings.LocalRepository,
		"active_profiles", settings.ActiveProfiles,
		"servers", len(settings.Servers))

	ec.SetSettings(settings)
	return settings, nil
}

func (r *Resolver) defaults() *domain.Settings {
	return &domain.Settings{LocalRepository: r.cfg.LocalRepositoryDefault}
}

func (r *Resolver) convert(raw *settingsXML) *domain.Settings {
	s := r.defaults()

	if local := r.interpolate(raw.LocalRepository); local != "" {
		s.LocalRepository = localRepositoryURI(local)
	}
	s.Offline, _ = strconv.ParseBool(strings.TrimSpace(raw.Offline))

	active := make(map[string]bool)
	for _, id := range raw.ActiveProfiles {
		id = strings.TrimSpace(id)
		if id != "" && !active[id] {
			active[id] = true
			s.ActiveProfiles = append(s.ActiveProfiles, id)
		}
	}

	for _, p := range raw.Profiles {
		profile := domain.Profile{ID: strings.TrimSpace(p.ID)}
		for _, repo := range p.Repositories {
			profile.Repositories = append(profile.Repositories, domain.MavenRepository{
				ID:        strings.TrimSpace(repo.ID),
				URI:       r.interpolate(repo.URL),
				Releases:  policy(repo.Releases),
				Snapshots: policy(repo.Snapshots),
			})
		}
		s.Profiles = append(s.Profiles, profile)

		if isTrue(p.Activation.ActiveByDefault) && !active[profile.ID] {
			active[profile.ID] = true
			s.ActiveProfiles = append(s.ActiveProfiles, profile.ID)
		}
	}

	for _, m := range raw.Mirrors {
		s.Mirrors = append(s.Mirrors, domain.Mirror{
			ID:       strings.TrimSpace(m.ID),
			URL:      r.interpolate(m.URL),
			MirrorOf: strings.TrimSpace(m.MirrorOf),
		})
	}

	for _, srv := range raw.Servers {
		s.Servers = append(s.Servers, domain.Server{
			ID:       strings.TrimSpace(srv.ID),
			Username: r.interpolate(srv.Username),
			Password: r.interpolate(srv.Password),
		})
	}
	return s
}

func (r *Resolver) decryptPasswords(s *domain.Settings, securityPath string) error {
	needed := false
	for _, srv := range s.Servers {
		if IsEncrypted(srv.Password) {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	master, err := r.masterPassword(securityPath)
	if err != nil {
		return err
	}
	if master == "" {
		r.cfg.Logger.Warn("encrypted server passwords found but no master password available",
			"security_path", securityPath)
		return nil
	}

	for i, srv := range s.Servers {
		if !IsEncrypted(srv.Password) {
			continue
		}
		plain, err := Decrypt(srv.Password, master)
		if err != nil {
			return domain.NewSettingsError(fmt.Sprintf("cannot decrypt password of server %q", srv.ID), err)
		}
		s.Servers[i].Password = plain
	}
	return nil
}

// masterPassword returns the decrypted master password, or "" when no security file exists
func (r *Resolver) masterPassword(securityPath string) (string, error) {
	if securityPath == "" {
		return "", nil
	}
	sec, err := readSecurityFile(securityPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", domain.NewSettingsError("cannot read security settings", err)
	}

	master := strings.TrimSpace(sec.Master)
	if !IsEncrypted(master) {
		return master, nil
	}
	plain, err := Decrypt(master, MasterPasswordKey)
	if err != nil {
		return "", domain.NewSettingsError("cannot decrypt master password", err)
	}
	return plain, nil
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate replaces ${user.home} and ${env.X}; unknown placeholders are kept
func (r *Resolver) interpolate(s string) string {
	s = strings.TrimSpace(s)
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		switch {
		case name == "user.home":
			return r.cfg.UserHome
		case strings.HasPrefix(name, "env."):
			if v := r.cfg.Getenv(strings.TrimPrefix(name, "env.")); v != "" {
				return v
			}
		}
		return m
	})
}

func policy(p *policyXML) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Enabled)
}

func isTrue(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

// localRepositoryURI turns a settings localRepository value into a file URI
func localRepositoryURI(v string) string {
	if strings.Contains(v, "://") || strings.HasPrefix(v, "file:") {
		return v
	}
	if abs, err := filepath.Abs(v); err == nil {
		v = abs
	}
	return fileURI(v)
}

func fileURI(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return "file://" + p
}
