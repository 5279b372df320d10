package app

import (
	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
)

// userSecurityLocator is implemented by resolvers that know the default
// settings-security.xml location
type userSecurityLocator interface {
	UserSecurityPath() string
}

// ResolveSettings publishes Maven settings into ec. Without an explicit
// settings file the user's ~/.m2/settings.xml is used when present.
func ResolveSettings(resolver domain.SettingsResolver, maven config.MavenConfig, ec *domain.ExecutionContext) (*domain.Settings, error) {
	if maven.SettingsFile == "" {
		return resolver.Initialize(ec)
	}

	security := maven.SecurityFile
	if security == "" {
		if l, ok := resolver.(userSecurityLocator); ok {
			security = l.UserSecurityPath()
		}
	}
	return resolver.InitializeFrom(maven.SettingsFile, security, ec)
}
