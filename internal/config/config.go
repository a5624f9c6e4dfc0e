package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/open-edge-platform/selfupdate-verifier/internal/config/validate"
	"github.com/open-edge-platform/selfupdate-verifier/internal/instsys"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/general/slice"
)

// GlobalConfig is the verifier configuration file.
type GlobalConfig struct {
	Logging         LoggingConfig      `yaml:"logging"`
	Installed       InstalledConfig    `yaml:"installed"`
	TrackedPackages []string           `yaml:"trackedPackages,omitempty"`
	Repositories    []RepositoryConfig `yaml:"repositories,omitempty"`

	// baseDir anchors relative paths, the directory of the loaded file
	baseDir string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InstalledConfig selects the installed package source. RPMRoot wins over PackagesFile.
type InstalledConfig struct {
	PackagesFile string `yaml:"packagesFile"`
	RPMRoot      string `yaml:"rpmRoot,omitempty"`
}

// RepositoryConfig defines one update repository.
type RepositoryConfig struct {
	ID     string `yaml:"id"`
	Path   string `yaml:"path"`
	GPGKey string `yaml:"gpgKey,omitempty"`
}

// DefaultGlobalConfig returns the configuration used without a config file.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Logging:   LoggingConfig{Level: "info"},
		Installed: InstalledConfig{PackagesFile: instsys.DefaultPackagesFile},
	}
}

// LoadGlobalConfig reads and validates the configuration file at path.
// An empty path yields the defaults.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		return DefaultGlobalConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg, err := parseGlobalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config file path: %w", err)
	}
	cfg.baseDir = filepath.Dir(abs)
	return cfg, nil
}

func parseGlobalConfig(data []byte) (*GlobalConfig, error) {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	// an empty document converts to null
	if string(jsonData) != "null" {
		if err := validate.ValidateConfigJSON(jsonData); err != nil {
			return nil, err
		}
	}

	cfg := DefaultGlobalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Installed.PackagesFile == "" {
		cfg.Installed.PackagesFile = instsys.DefaultPackagesFile
	}
	cfg.TrackedPackages = slice.Unique(cfg.TrackedPackages)

	seen := make(map[string]struct{}, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate repository id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return cfg, nil
}

// resolvePath makes p absolute relative to the config file directory.
func (c *GlobalConfig) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
