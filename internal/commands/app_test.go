// Where: internal/commands/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing remains stable.
package commands

import (
	"os"
	"strings"
	"testing"

	"github.com/poruru/edge-manifest/internal/version"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	p := newTestProject(t, "")
	if code := p.run(); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(p.out.String(), "edgeman build") {
		t.Fatalf("unexpected output: %q", p.out.String())
	}
}

func TestRunVersion(t *testing.T) {
	p := newTestProject(t, "")
	if code := p.run("version"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if strings.TrimSpace(p.out.String()) != version.GetVersion() {
		t.Fatalf("unexpected version output: %q", p.out.String())
	}
}

func TestRunParseErrorUsesErrorPrefix(t *testing.T) {
	p := newTestProject(t, "")
	if code := p.run("build", "--no-such-flag"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(p.out.String(), "✗ ") {
		t.Fatalf("expected error prefix, got %q", p.out.String())
	}
}

func TestRunCreatesGlobalConfig(t *testing.T) {
	p := newTestProject(t, "")
	if code := p.run("version"); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	readFile(t, p.configHome+"/config.yaml")
}

func TestRunLoadsEnvFile(t *testing.T) {
	p := newTestProject(t, projectConfig)
	// godotenv never overrides variables that are already set.
	if err := os.Unsetenv("EDGEMAN_OUTPUT_DIR"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	envFile := p.dir + "/custom.env"
	writeFile(t, envFile, "EDGEMAN_OUTPUT_DIR=from-env\n")

	if code := p.run("--env-file", envFile, "build"); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, p.out.String())
	}
	readFile(t, p.dir+"/from-env/manifest.json")
}
