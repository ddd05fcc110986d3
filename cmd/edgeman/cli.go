// Where: cmd/edgeman/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"

	"github.com/poruru/edge-manifest/internal/commands"
	"github.com/poruru/edge-manifest/internal/interaction"
)

var getwd = os.Getwd

// buildDependencies constructs the runtime dependencies required by the CLI.
// The working directory is resolved once so every command sees the same project.
func buildDependencies(ctx context.Context) (commands.Dependencies, error) {
	projectDir, err := getwd()
	if err != nil {
		return commands.Dependencies{}, err
	}

	return commands.Dependencies{
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		In:       os.Stdin,
		Prompter: interaction.HuhPrompter{},
		Getwd:    func() (string, error) { return projectDir, nil },
		Context:  ctx,
	}, nil
}
