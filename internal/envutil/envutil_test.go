package envutil

import "testing"

func TestHostEnvKeyDefaultsToAppPrefix(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	if got := HostEnvKey("CONFIG_PATH"); got != "EDGEMAN_CONFIG_PATH" {
		t.Fatalf("expected EDGEMAN_CONFIG_PATH, got %s", got)
	}
	t.Setenv("ENV_PREFIX", "EDGE")
	if got := HostEnvKey("CONFIG_PATH"); got != "EDGE_CONFIG_PATH" {
		t.Fatalf("expected EDGE_CONFIG_PATH, got %s", got)
	}
}

func TestGetHostEnvOr(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	t.Setenv("EDGEMAN_OUTPUT_DIR", "  ")
	if got := GetHostEnvOr("OUTPUT_DIR", ".edge"); got != ".edge" {
		t.Fatalf("expected fallback, got %q", got)
	}
	SetHostEnv("OUTPUT_DIR", "dist")
	if got := GetHostEnvOr("OUTPUT_DIR", ".edge"); got != "dist" {
		t.Fatalf("expected dist, got %q", got)
	}
}
