// Where: internal/commands/helpers_test.go
// What: Shared fixtures for command tests.
// Why: Run commands against temp projects and an isolated global config.
package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const projectConfig = `
origin:
  - name: api
    type: single_origin
    addresses: [api.example.com]
  - name: assets
    type: object_storage
    bucket: site-assets
rules:
  request:
    - name: assets
      match: "^/static"
      behavior:
        setOrigin:
          name: assets
          type: object_storage
        deliver: true
    - name: api
      match: "^/api"
      behavior:
        setOrigin:
          name: api
          type: single_origin
domain:
  name: example
`

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testProject struct {
	dir        string
	configHome string
	out        *bytes.Buffer
	deps       Dependencies
}

func newTestProject(t *testing.T, content string) *testProject {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("ENV_PREFIX", "")
	t.Setenv("EDGEMAN_CONFIG_PATH", "")
	t.Setenv("EDGEMAN_CONFIG_HOME", configHome)
	t.Setenv("EDGEMAN_OUTPUT_DIR", "")

	dir := t.TempDir()
	if content != "" {
		writeFile(t, filepath.Join(dir, "edgeman.config.yaml"), content)
	}
	out := &bytes.Buffer{}
	return &testProject{
		dir:        dir,
		configHome: configHome,
		out:        out,
		deps: Dependencies{
			Out:    out,
			ErrOut: io.Discard,
			Getwd:  func() (string, error) { return dir, nil },
			Now:    func() time.Time { return fixedNow },
		},
	}
}

func (p *testProject) run(args ...string) int {
	p.out.Reset()
	return Run(args, p.deps)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

type mockPrompter struct {
	confirmFn   func(title string) (bool, error)
	selectFn    func(title string, options []string) (string, error)
	lastTitle   string
	lastOptions []string
}

func (m *mockPrompter) Confirm(title string) (bool, error) {
	m.lastTitle = title
	if m.confirmFn != nil {
		return m.confirmFn(title)
	}
	return false, nil
}

func (m *mockPrompter) Select(title string, options []string) (string, error) {
	m.lastTitle = title
	m.lastOptions = options
	if m.selectFn != nil {
		return m.selectFn(title, options)
	}
	return "", nil
}
