// Where: internal/commands/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface usage and raw line output.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/ports"
)

func plainUI(out io.Writer) ports.UserInterface {
	return ports.NewPlainUI(out)
}

func consoleUI(out io.Writer) ports.UserInterface {
	return ports.NewConsoleUI(out)
}

// exitWithError prints the error and returns exit code 1.
func exitWithError(out io.Writer, err error) int {
	plainUI(out).Warn(fmt.Sprintf("✗ %v", err))
	return 1
}

func writeString(out io.Writer, text string) {
	if out == nil || text == "" {
		return
	}
	_, _ = io.WriteString(out, text)
}

func writeLine(out io.Writer, line string) {
	if out == nil {
		return
	}
	if strings.HasSuffix(line, "\n") {
		_, _ = io.WriteString(out, line)
		return
	}
	_, _ = io.WriteString(out, line+"\n")
}

func reportWarnings(ui ports.UserInterface, warnings []manifest.Warning) {
	for _, w := range warnings {
		ui.Warn(w.String())
	}
}

func manifestRows(m manifest.Manifest, warnings int) []ports.KeyValue {
	domain := m.Domain.Name
	if domain == "" {
		domain = "-"
	}
	return []ports.KeyValue{
		{Key: "Origins", Value: len(m.Origin)},
		{Key: "Cache settings", Value: len(m.CacheSettings)},
		{Key: "Rules", Value: len(m.Rules)},
		{Key: "Domain", Value: domain},
		{Key: "Purge", Value: len(m.Purge)},
		{Key: "Network lists", Value: len(m.NetworkList)},
		{Key: "Warnings", Value: warnings},
	}
}
