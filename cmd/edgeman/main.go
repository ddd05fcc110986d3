// Where: cmd/edgeman/main.go
// What: CLI entrypoint.
// Why: Execute edgeman commands with configured dependencies.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/poruru/edge-manifest/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := commands.Run(os.Args[1:], deps)
	stop()
	os.Exit(code)
}
