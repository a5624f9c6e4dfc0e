package config

import (
	"github.com/open-edge-platform/selfupdate-verifier/internal/instsys"
	"github.com/open-edge-platform/selfupdate-verifier/internal/repository"
	"github.com/open-edge-platform/selfupdate-verifier/internal/selfupdate"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// IsDebugMode returns true if debug logging is enabled
func (c *ConfigHelpers) IsDebugMode() bool {
	return c.config.Logging.Level == "debug"
}

// InstalledSource returns the configured source of installed packages.
func (c *ConfigHelpers) InstalledSource() selfupdate.PackageSource {
	if c.config.Installed.RPMRoot != "" {
		return instsys.RPMDatabase{Root: c.config.resolvePath(c.config.Installed.RPMRoot)}
	}
	return instsys.PackagesFile{Path: c.config.resolvePath(c.config.Installed.PackagesFile)}
}

// TrackedPackages returns the configured tracked names, or the built-in list.
func (c *ConfigHelpers) TrackedPackages() []string {
	if len(c.config.TrackedPackages) == 0 {
		return selfupdate.TrackedPackages()
	}
	return append([]string(nil), c.config.TrackedPackages...)
}

// Registry returns a registry of the configured repositories.
func (c *ConfigHelpers) Registry() *repository.Registry {
	reg := repository.NewRegistry()
	for _, r := range c.config.Repositories {
		reg.Register(&repository.Repository{
			ID:     r.ID,
			Path:   c.config.resolvePath(r.Path),
			GPGKey: c.config.resolvePath(r.GPGKey),
		})
	}
	return reg
}
