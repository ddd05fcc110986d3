// Where: internal/config/global.go
// What: Global config load/save helpers.
// Why: Manage ~/.edgeman/config.yaml consistently.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/poruru/edge-manifest/internal/envutil"
	"github.com/poruru/edge-manifest/internal/meta"
	"gopkg.in/yaml.v3"
)

const (
	hostSuffixConfigPath = "CONFIG_PATH"
	hostSuffixConfigHome = "CONFIG_HOME"
)

// GlobalConfig represents the ~/.edgeman/config.yaml global configuration.
// It stores publish defaults and the projects built on this machine.
type GlobalConfig struct {
	Version   int                     `yaml:"version"`
	OutputDir string                  `yaml:"output_dir,omitempty"`
	Storage   StorageConfig           `yaml:"storage,omitempty"`
	Ledger    LedgerConfig            `yaml:"ledger,omitempty"`
	Projects  map[string]ProjectEntry `yaml:"projects,omitempty"`
}

// StorageConfig holds object storage defaults for publish.
type StorageConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// LedgerConfig holds the publish ledger table settings.
type LedgerConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Table    string `yaml:"table,omitempty"`
}

// ProjectEntry stores a project's directory path and last-used timestamp.
type ProjectEntry struct {
	Path     string `yaml:"path"`
	LastUsed string `yaml:"last_used"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Version:  1,
		Projects: map[string]ProjectEntry{},
	}
}

// GlobalConfigPath returns the path to the global config file.
// Respects EDGEMAN_CONFIG_PATH and EDGEMAN_CONFIG_HOME.
func GlobalConfigPath() (string, error) {
	if override := envutil.GetHostEnv(hostSuffixConfigPath); override != "" {
		path := override
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		return path, nil
	}
	if override := envutil.GetHostEnv(hostSuffixConfigHome); override != "" {
		return filepath.Join(override, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.HomeDir, "config.yaml"), nil
}

// EnsureGlobalConfig creates the global config file if it doesn't exist.
func EnsureGlobalConfig() error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return SaveGlobalConfig(path, DefaultGlobalConfig())
		}
		return err
	}
	return nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, err
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config at path, returning defaults when it does
// not exist yet.
func LoadOrDefault(path string) (GlobalConfig, error) {
	cfg, err := LoadGlobalConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultGlobalConfig(), nil
	}
	if err != nil {
		return GlobalConfig{}, err
	}
	if cfg.Projects == nil {
		cfg.Projects = map[string]ProjectEntry{}
	}
	return cfg, nil
}

// SaveGlobalConfig writes a GlobalConfig to the specified path.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o644)
}

// TouchProject records that name was built from dir at now.
func (c *GlobalConfig) TouchProject(name, dir string, now time.Time) {
	if c.Projects == nil {
		c.Projects = map[string]ProjectEntry{}
	}
	c.Projects[name] = ProjectEntry{
		Path:     dir,
		LastUsed: now.Format(time.RFC3339),
	}
}
