// Where: internal/commands/build.go
// What: Build and validate commands.
// Why: Compile the project configuration into manifest.json in a testable way.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/poruru/edge-manifest/internal/config"
	"github.com/poruru/edge-manifest/internal/loader"
	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/meta"
	"github.com/poruru/edge-manifest/internal/ports"
	"github.com/rs/zerolog"
)

type (
	BuildCmd struct {
		Config   string        `short:"c" help:"Path to the project configuration (default: discovered in the project directory)"`
		Output   string        `short:"o" help:"Output directory for manifest.json"`
		Project  string        `short:"p" help:"Project name recorded in the global config"`
		Watch    bool          `short:"w" help:"Rebuild when the configuration changes"`
		Debounce time.Duration `default:"300ms" help:"Delay before rebuilding after a change"`
	}
	ValidateCmd struct {
		Config string `short:"c" help:"Path to the project configuration (default: discovered in the project directory)"`
	}
)

// runBuild executes the 'build' command which compiles the configuration and
// writes manifest.json, optionally rebuilding on every change.
func runBuild(cli CLI, deps Dependencies, out io.Writer) int {
	cmd, err := newBuildCommand(cli, deps, out)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := cmd.Run(); err != nil {
		if !cli.Build.Watch {
			return exitWithError(out, err)
		}
		cmd.ui.Warn(fmt.Sprintf("✗ %v", err))
	}
	if !cli.Build.Watch {
		return 0
	}
	if err := cmd.Watch(deps); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

type buildCommand struct {
	project    projectContext
	configPath string
	outputDir  string
	debounce   time.Duration
	compiler   *manifest.Compiler
	ui         ports.UserInterface
	logger     zerolog.Logger
	now        func() time.Time
}

func newBuildCommand(cli CLI, deps Dependencies, out io.Writer) (*buildCommand, error) {
	project, err := resolveProject(cli, deps, cli.Build.Project)
	if err != nil {
		return nil, err
	}
	configPath, err := resolveConfigPath(project, cli.Build.Config, deps.Prompter)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	return &buildCommand{
		project:    project,
		configPath: configPath,
		outputDir:  project.outputDir(cli.Build.Output),
		debounce:   cli.Build.Debounce,
		compiler:   manifest.NewCompiler(manifest.Options{Logger: &logger}),
		ui:         consoleUI(out),
		logger:     logger,
		now:        deps.now,
	}, nil
}

// Run compiles once and writes the manifest.
func (c *buildCommand) Run() error {
	result, err := compileFile(c.compiler, c.configPath, c.logger)
	if err != nil {
		return err
	}
	reportWarnings(c.ui, result.Warnings)

	data, err := manifest.Encode(result.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(c.outputDir, meta.ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	c.ui.Success(fmt.Sprintf("Manifest written to %s", c.relative(path)))
	c.ui.Block("📦", "Manifest", manifestRows(result.Manifest, len(result.Warnings)))
	c.recordProject()
	return nil
}

// Watch blocks, rebuilding after each debounced change until the context ends.
func (c *buildCommand) Watch(deps Dependencies) error {
	watcher, err := newConfigWatcher(c.configPath, c.debounce, c.logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	c.ui.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", c.relative(c.configPath)))
	watcher.Run(deps.runContext(), func() {
		c.ui.Info(fmt.Sprintf("Change detected in %s, rebuilding", filepath.Base(c.configPath)))
		if err := c.Run(); err != nil {
			c.ui.Warn(fmt.Sprintf("✗ %v", err))
		}
	})
	return nil
}

// recordProject stores the project in the global config. Failures are logged only.
func (c *buildCommand) recordProject() {
	cfg := c.project.Global
	cfg.TouchProject(c.project.Name, c.project.Dir, c.now())
	if err := config.SaveGlobalConfig(c.project.GlobalPath, cfg); err != nil {
		c.logger.Warn().Err(err).Str("path", c.project.GlobalPath).Msg("failed to record project")
		return
	}
	c.project.Global = cfg
}

func (c *buildCommand) relative(path string) string {
	if rel, err := filepath.Rel(c.project.Dir, path); err == nil {
		return rel
	}
	return path
}

// runValidate loads and compiles the configuration without writing output.
func runValidate(cli CLI, deps Dependencies, out io.Writer) int {
	project, err := resolveProject(cli, deps, "")
	if err != nil {
		return exitWithError(out, err)
	}
	configPath, err := resolveConfigPath(project, cli.Validate.Config, deps.Prompter)
	if err != nil {
		return exitWithError(out, err)
	}
	logger := deps.Logger
	result, err := compileFile(manifest.NewCompiler(manifest.Options{Logger: &logger}), configPath, logger)
	if err != nil {
		return exitWithError(out, err)
	}

	ui := consoleUI(out)
	reportWarnings(ui, result.Warnings)
	ui.Success(fmt.Sprintf("%s is valid", filepath.Base(configPath)))
	ui.Block("📦", "Manifest", manifestRows(result.Manifest, len(result.Warnings)))
	return 0
}

func compileFile(compiler *manifest.Compiler, path string, logger zerolog.Logger) (manifest.Result, error) {
	started := time.Now()
	cfg, err := loader.Load(path)
	if err != nil {
		return manifest.Result{}, err
	}
	result, err := compiler.Compile(cfg)
	if err != nil {
		return manifest.Result{}, err
	}
	logger.Debug().
		Str("config", path).
		Int("rules", len(result.Manifest.Rules)).
		Int("warnings", len(result.Warnings)).
		Dur("elapsed", time.Since(started)).
		Msg("compiled configuration")
	return result, nil
}
