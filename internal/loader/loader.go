// Where: internal/loader/loader.go
// What: Project configuration discovery, decoding and validation.
// Why: Hand the compiler a validated Config with behavior order intact.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/schema"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// DefaultFiles lists the configuration file names Discover looks for, in
// priority order.
var DefaultFiles = []string{
	"edgeman.config.yaml",
	"edgeman.config.yml",
	"edgeman.config.json",
	"azion.config.json",
}

// ErrConfigNotFound is returned by Discover when no configuration exists.
var ErrConfigNotFound = errors.New("configuration file not found")

// Discover returns the first default configuration file present in dir.
func Discover(dir string) (string, error) {
	found, err := Candidates(dir)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w in %s (looked for %s)", ErrConfigNotFound, dir, strings.Join(DefaultFiles, ", "))
	}
	return found[0], nil
}

// Candidates lists every default configuration file present in dir, in
// priority order.
func Candidates(dir string) ([]string, error) {
	var found []string
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			found = append(found, path)
			continue
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return found, nil
}

// Load reads and decodes the configuration at path.
func Load(path string) (manifest.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(data, filepath.Base(path))
}

// Decode parses YAML or JSON configuration content. name is used only in
// error messages.
func Decode(data []byte, name string) (manifest.Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return manifest.Config{}, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(doc.Content) == 0 {
		return manifest.Config{}, fmt.Errorf("parse %s: empty configuration", name)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return manifest.Config{}, fmt.Errorf("parse %s: configuration root must be a mapping", name)
	}

	convertLegacyRules(root)

	normalized, err := yaml.Marshal(root)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("encode %s: %w", name, err)
	}
	jsonData, err := sigsyaml.YAMLToJSON(normalized)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("convert %s to json: %w", name, err)
	}
	if err := schema.ValidateJSON(jsonData); err != nil {
		return manifest.Config{}, fmt.Errorf("%s: %w", name, err)
	}

	var cfg manifest.Config
	if err := root.Decode(&cfg); err != nil {
		return manifest.Config{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return cfg, nil
}
