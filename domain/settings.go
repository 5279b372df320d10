package domain

import "sync"

// Settings is the resolved view of a Maven settings.xml
type Settings struct {
	LocalRepository string    `json:"local_repository" yaml:"local_repository"`
	Offline         bool      `json:"offline,omitempty" yaml:"offline,omitempty"`
	ActiveProfiles  []string  `json:"active_profiles,omitempty" yaml:"active_profiles,omitempty"`
	Profiles        []Profile `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Mirrors         []Mirror  `json:"mirrors,omitempty" yaml:"mirrors,omitempty"`
	Servers         []Server  `json:"servers,omitempty" yaml:"servers,omitempty"`
}

// Profile is a settings profile contributing repositories
type Profile struct {
	ID           string            `json:"id" yaml:"id"`
	Repositories []MavenRepository `json:"repositories,omitempty" yaml:"repositories,omitempty"`
}

// Mirror redirects requests for matching repositories
type Mirror struct {
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
	MirrorOf string `json:"mirror_of" yaml:"mirror_of"`
}

// Server holds credentials for a repository id
type Server struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// MavenRepository is a remote or local artifact repository.
// Releases and Snapshots are empty when the settings file leaves them unset.
type MavenRepository struct {
	ID           string `json:"id" yaml:"id"`
	URI          string `json:"uri" yaml:"uri"`
	Releases     string `json:"releases,omitempty" yaml:"releases,omitempty"`
	Snapshots    string `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	KnownToExist bool   `json:"known_to_exist,omitempty" yaml:"known_to_exist,omitempty"`
	Username     string `json:"username,omitempty" yaml:"username,omitempty"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Server returns the server entry with the given id
func (s *Settings) Server(id string) (Server, bool) {
	if s == nil {
		return Server{}, false
	}
	for _, srv := range s.Servers {
		if srv.ID == id {
			return srv, true
		}
	}
	return Server{}, false
}

// ActiveRepositories returns the repositories of all active profiles,
// with credentials filled in from the matching server entries
func (s *Settings) ActiveRepositories() []MavenRepository {
	if s == nil {
		return nil
	}
	active := make(map[string]bool, len(s.ActiveProfiles))
	for _, id := range s.ActiveProfiles {
		active[id] = true
	}

	var repos []MavenRepository
	for _, p := range s.Profiles {
		if !active[p.ID] {
			continue
		}
		for _, repo := range p.Repositories {
			if srv, ok := s.Server(repo.ID); ok {
				repo.Username = srv.Username
				repo.Password = srv.Password
			}
			repos = append(repos, repo)
		}
	}
	return repos
}

// ExecutionContext carries resolved Maven settings to the parsers.
// It is created per run and passed explicitly.
type ExecutionContext struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewExecutionContext creates an empty execution context
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{}
}

// SetSettings publishes resolved settings
func (c *ExecutionContext) SetSettings(s *Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
}

// Settings returns the published settings, or nil
func (c *ExecutionContext) Settings() *Settings {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Repositories returns the remote repositories of the active profiles
func (c *ExecutionContext) Repositories() []MavenRepository {
	return c.Settings().ActiveRepositories()
}

// LocalRepository returns the local repository described by the settings
func (c *ExecutionContext) LocalRepository() MavenRepository {
	s := c.Settings()
	if s == nil {
		return MavenRepository{ID: "local"}
	}
	return MavenRepository{
		ID:           "local",
		URI:          s.LocalRepository,
		KnownToExist: true,
	}
}
