// Where: internal/commands/project.go
// What: Project directory, config file and output path resolution.
// Why: Share flag > environment > global config precedence across commands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/edge-manifest/internal/config"
	"github.com/poruru/edge-manifest/internal/envutil"
	"github.com/poruru/edge-manifest/internal/interaction"
	"github.com/poruru/edge-manifest/internal/loader"
	"github.com/poruru/edge-manifest/internal/meta"
)

// projectContext captures where a command runs and the global defaults it sees.
type projectContext struct {
	Dir        string
	Name       string
	GlobalPath string
	Global     config.GlobalConfig
}

func resolveProject(cli CLI, deps Dependencies, nameFlag string) (projectContext, error) {
	dir := strings.TrimSpace(cli.Dir)
	if dir == "" {
		getwd := deps.Getwd
		if getwd == nil {
			getwd = os.Getwd
		}
		wd, err := getwd()
		if err != nil {
			return projectContext{}, fmt.Errorf("resolve project directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return projectContext{}, fmt.Errorf("resolve project directory: %w", err)
	}

	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		return projectContext{}, err
	}
	global, err := config.LoadOrDefault(globalPath)
	if err != nil {
		return projectContext{}, fmt.Errorf("load global config: %w", err)
	}

	name := strings.TrimSpace(nameFlag)
	if name == "" {
		name = filepath.Base(abs)
	}
	return projectContext{
		Dir:        abs,
		Name:       name,
		GlobalPath: globalPath,
		Global:     global,
	}, nil
}

// resolveConfigPath returns the configuration file to compile. When several
// default files exist and a terminal is attached, the user picks one.
func resolveConfigPath(project projectContext, flag string, prompter interaction.Prompter) (string, error) {
	if path := strings.TrimSpace(flag); path != "" {
		return project.abs(path), nil
	}
	candidates, err := loader.Candidates(project.Dir)
	if err != nil {
		return "", err
	}
	if len(candidates) <= 1 || prompter == nil || !interaction.IsTerminal(os.Stdin) {
		return loader.Discover(project.Dir)
	}

	names := make([]string, len(candidates))
	for i, candidate := range candidates {
		names[i] = filepath.Base(candidate)
	}
	selected, err := prompter.Select("Select configuration file", names)
	if err != nil {
		return "", err
	}
	if selected == "" {
		return candidates[0], nil
	}
	return filepath.Join(project.Dir, selected), nil
}

// outputDir resolves flag > EDGEMAN_OUTPUT_DIR > global output_dir > .edge,
// relative to the project directory.
func (p projectContext) outputDir(flag string) string {
	dir := strings.TrimSpace(flag)
	if dir == "" {
		dir = envutil.GetHostEnvOr("OUTPUT_DIR", p.Global.OutputDir)
	}
	if dir == "" {
		dir = meta.OutputDir
	}
	return p.abs(dir)
}

func (p projectContext) manifestPath(flag string) string {
	if path := strings.TrimSpace(flag); path != "" {
		return p.abs(path)
	}
	return filepath.Join(p.outputDir(""), meta.ManifestFile)
}

func (p projectContext) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}
