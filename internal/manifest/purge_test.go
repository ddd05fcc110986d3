// Where: internal/manifest/purge_test.go
// What: Tests for purge normalization.
// Why: Ensure scheme/wildcard validation and method/layer defaults.
package manifest

import (
	"errors"
	"testing"
)

func TestPurgeDefaults(t *testing.T) {
	cfg := mustConfig(t, `
purge:
  - type: url
    urls: [https://example.com/a]
  - type: cachekey
    urls: [https://example.com/b]
  - type: wildcard
    urls: ["https://example.com/*"]
    method: delete
`)
	purges, err := PurgeStrategy{}.Generate(cfg, References{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(purges) != 3 {
		t.Fatalf("expected 3 purges, got %d", len(purges))
	}
	if purges[0].Method != "delete" || purges[0].Layer != "" {
		t.Fatalf("unexpected url purge: %+v", purges[0])
	}
	if purges[1].Layer != "edge_caching" {
		t.Fatalf("expected cachekey layer default, got %q", purges[1].Layer)
	}
	if purges[2].Type != "wildcard" {
		t.Fatalf("unexpected wildcard purge: %+v", purges[2])
	}
}

func TestPurgeErrors(t *testing.T) {
	_, err := PurgeStrategy{}.Generate(mustConfig(t, "purge:\n  - type: url\n    urls: [example.com/a]\n"), References{})
	if !errors.Is(err, ErrMissingScheme) {
		t.Fatalf("expected MissingScheme, got %v", err)
	}

	_, err = PurgeStrategy{}.Generate(mustConfig(t, "purge:\n  - type: wildcard\n    urls: [https://example.com/a]\n"), References{})
	if !errors.Is(err, ErrMissingWildcard) {
		t.Fatalf("expected MissingWildcard, got %v", err)
	}
}

func TestPurgeKeepsExplicitLayer(t *testing.T) {
	cfg := mustConfig(t, "purge:\n  - type: cachekey\n    urls: [https://example.com/b]\n    layer: l2_caching\n")
	purges, err := PurgeStrategy{}.Generate(cfg, References{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if purges[0].Layer != "l2_caching" {
		t.Fatalf("expected l2_caching, got %q", purges[0].Layer)
	}
}
