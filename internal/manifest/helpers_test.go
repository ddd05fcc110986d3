// Where: internal/manifest/helpers_test.go
// What: Shared fixtures for manifest tests.
// Why: Build configurations from YAML the same way the loader does.
package manifest

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func mustConfig(t *testing.T, content string) Config {
	t.Helper()
	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	return cfg
}

func mustCompile(t *testing.T, content string) Result {
	t.Helper()
	result, err := Compile(mustConfig(t, content))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return result
}

// asJSON returns the generic JSON form of value for shape assertions.
func asJSON(t *testing.T, value any) any {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}
