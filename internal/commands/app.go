// Where: internal/commands/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/poruru/edge-manifest/internal/config"
	"github.com/poruru/edge-manifest/internal/envutil"
	"github.com/poruru/edge-manifest/internal/interaction"
	"github.com/poruru/edge-manifest/internal/logging"
	"github.com/poruru/edge-manifest/internal/meta"
	"github.com/poruru/edge-manifest/internal/publish"
	"github.com/poruru/edge-manifest/internal/version"
	"github.com/rs/zerolog"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// Zero values select the production implementations.
type Dependencies struct {
	Out      io.Writer
	ErrOut   io.Writer
	In       io.Reader
	Prompter interaction.Prompter
	Getwd    func() (string, error)
	Now      func() time.Time
	Context  context.Context
	Logger   zerolog.Logger
	Publish  PublishDeps
}

// PublishDeps holds the clients used by the publish command.
type PublishDeps struct {
	Clients publish.ClientFactory
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Dir        string        `short:"C" help:"Project directory (default: current directory)"`
	EnvFile    string        `name:"env-file" help:"Path to .env file"`
	Verbose    bool          `short:"v" help:"Enable debug logging"`
	Build      BuildCmd      `cmd:"" help:"Compile the project configuration into manifest.json"`
	Validate   ValidateCmd   `cmd:"" help:"Check the project configuration without writing output"`
	Transform  TransformCmd  `cmd:"" help:"Convert manifest.json back into a project configuration"`
	Publish    PublishCmd    `cmd:"" help:"Upload manifest.json to object storage"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion script"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
		deps.Out = out
	}

	if len(args) == 0 {
		return runNoArgs(out)
	}

	if err := config.EnsureGlobalConfig(); err != nil {
		return exitWithError(out, err)
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Compile edge configuration files into platform manifests."),
		kong.Writers(out, errOut(deps)),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	loadEnvFile(cli, out)
	deps.Logger = newLogger(cli, deps)

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	plainUI(out).Warn("unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"build":           runBuild,
		"validate":        runValidate,
		"transform":       runTransform,
		"publish":         runPublish,
		"completion bash": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionBash(cli, out) },
		"completion zsh":  func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionZsh(cli, out) },
		"completion fish": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionFish(cli, out) },
		"version":         func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(cli, out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, out io.Writer) int {
	plainUI(out).Info(version.GetVersion())
	return 0
}

// runNoArgs handles the case when edgeman is invoked without arguments.
func runNoArgs(out io.Writer) int {
	ui := plainUI(out)
	ui.Info("Usage:")
	ui.Info(fmt.Sprintf("  %s build [--config <path>] [--output <dir>] [--watch]", meta.AppName))
	ui.Info(fmt.Sprintf("  %s transform [--manifest <path>] [--output <file>]", meta.AppName))
	ui.Info(fmt.Sprintf("  %s publish --bucket <name> [--endpoint <url>]", meta.AppName))
	ui.Info("")
	ui.Info(fmt.Sprintf("Try: %s --help", meta.AppName))
	return 0
}

// loadEnvFile loads --env-file, or .env in the current directory when present.
func loadEnvFile(cli CLI, out io.Writer) {
	ui := plainUI(out)
	if path := strings.TrimSpace(cli.EnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			ui.Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", path, err))
		}
		return
	}
	if _, err := os.Stat(meta.EnvFile); err == nil {
		if err := godotenv.Load(meta.EnvFile); err != nil {
			ui.Warn(fmt.Sprintf("Warning: failed to load %s: %v", meta.EnvFile, err))
		}
	}
}

func newLogger(cli CLI, deps Dependencies) zerolog.Logger {
	level := envutil.GetHostEnv("LOG_LEVEL")
	if cli.Verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:  level,
		Pretty: interaction.IsTerminal(os.Stderr),
		Out:    errOut(deps),
	})
}

func errOut(deps Dependencies) io.Writer {
	if deps.ErrOut != nil {
		return deps.ErrOut
	}
	return os.Stderr
}

func (d Dependencies) runContext() context.Context {
	if d.Context != nil {
		return d.Context
	}
	return context.Background()
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
