// Where: internal/commands/transform.go
// What: Transform command converting a manifest back into a project configuration.
// Why: Let existing manifests be adopted as editable configuration files.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/edge-manifest/internal/interaction"
	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/meta"
	"github.com/poruru/edge-manifest/internal/render"
)

const stdoutPath = "-"

type TransformCmd struct {
	Manifest string `short:"m" help:"Path to manifest.json (default: <output dir>/manifest.json)"`
	Output   string `short:"o" default:"edgeman.config.yaml" help:"Destination file, or - for stdout"`
	Format   string `short:"f" help:"Output format (yaml or json); inferred from the output extension"`
	Force    bool   `help:"Overwrite the output file without asking"`
}

var errOverwriteDeclined = errors.New("transform cancelled")

// runTransform executes the 'transform' command.
func runTransform(cli CLI, deps Dependencies, out io.Writer) int {
	project, err := resolveProject(cli, deps, "")
	if err != nil {
		return exitWithError(out, err)
	}
	flags := cli.Transform

	source := project.manifestPath(flags.Manifest)
	data, err := os.ReadFile(source)
	if err != nil {
		return exitWithError(out, fmt.Errorf("read manifest: %w", err))
	}
	m, err := manifest.Decode(data)
	if err != nil {
		return exitWithError(out, fmt.Errorf("parse %s: %w", filepath.Base(source), err))
	}

	format, err := transformFormat(flags.Format, flags.Output)
	if err != nil {
		return exitWithError(out, err)
	}
	cfg, warnings := manifest.Decompile(m)
	rendered, err := render.Config(cfg, format, render.Header{Tool: meta.AppName, Source: source})
	if err != nil {
		return exitWithError(out, err)
	}

	if strings.TrimSpace(flags.Output) == stdoutPath {
		writeString(out, string(rendered))
		return 0
	}

	ui := consoleUI(out)
	reportWarnings(ui, warnings)
	target := project.abs(flags.Output)
	if err := confirmOverwrite(target, flags.Force, deps); err != nil {
		return exitWithError(out, err)
	}
	if err := os.WriteFile(target, rendered, 0o644); err != nil {
		return exitWithError(out, fmt.Errorf("write config: %w", err))
	}
	ui.Success(fmt.Sprintf("Configuration written to %s", filepath.Base(target)))
	return 0
}

func transformFormat(flag, output string) (render.Format, error) {
	if strings.TrimSpace(flag) != "" {
		return render.ParseFormat(flag)
	}
	if strings.EqualFold(filepath.Ext(output), ".json") {
		return render.FormatJSON, nil
	}
	return render.FormatYAML, nil
}

// confirmOverwrite asks before replacing an existing file. Without a
// terminal the command refuses unless --force is set.
func confirmOverwrite(path string, force bool, deps Dependencies) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	title := fmt.Sprintf("%s already exists. Overwrite?", filepath.Base(path))
	var (
		ok  bool
		err error
	)
	switch {
	case deps.Prompter != nil && interaction.IsTerminal(os.Stdin):
		ok, err = deps.Prompter.Confirm(title)
	case deps.In != nil:
		ok, err = interaction.PromptYesNo(deps.In, title)
	default:
		return fmt.Errorf("%s already exists (use --force to overwrite)", filepath.Base(path))
	}
	if err != nil {
		return err
	}
	if !ok {
		return errOverwriteDeclined
	}
	return nil
}
