// Where: internal/schema/schema_test.go
// What: Tests for configuration schema validation.
// Why: Ensure schema failures surface as tagged errors with readable paths.
package schema

import (
	"errors"
	"testing"

	"github.com/poruru/edge-manifest/internal/manifest"
	"sigs.k8s.io/yaml"
)

func validateYAML(t *testing.T, content string) error {
	t.Helper()
	data, err := yaml.YAMLToJSON([]byte(content))
	if err != nil {
		t.Fatalf("yaml to json: %v", err)
	}
	return ValidateJSON(data)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	err := validateYAML(t, `
origin:
  - name: api
    type: single_origin
    addresses:
      - api.example.com
      - address: backup.example.com
        weight: 2
    hmac:
      region: us-east-1
      accessKey: ak
      secretKey: sk
cache:
  - name: static
    browser:
      maxAgeSeconds: "60 * 60"
    edge:
      maxAgeSeconds: 120
    cacheByCookie:
      option: whitelist
      list: [session]
rules:
  request:
    - name: main
      match: "^/"
      behavior:
        setOrigin:
          name: api
          type: single_origin
        setCache:
          name: inline
          cdn_cache_settings_maximum_ttl: 10
        runFunction:
          path: ./out/worker.js
        futureVerb: anything
  response:
    - name: gzip
      match: ".*"
      behavior:
        enableGZIP: true
domain:
  name: example
  digitalCertificateId: lets_encrypt
  mtls:
    verification: enforce
    trustedCaCertificateId: 10
    crlList: [1, 2]
purge:
  - type: cachekey
    urls: [https://example.com/]
    layer: l2_caching
networkList:
  - id: 1
    listType: ip_cidr
    listContent: [10.0.0.0/8]
`)
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateReportsUnknownProperty(t *testing.T) {
	err := validateYAML(t, `
rules:
  request:
    - name: r
      match: "^/"
      cache: true
`)
	if !errors.Is(err, manifest.ErrInvalidPropertyFound) {
		t.Fatalf("expected InvalidPropertyFound, got %v", err)
	}
	if err.Error() != "Invalid property found: rules.request[0].cache" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateReportsUnknownTopLevelProperty(t *testing.T) {
	err := validateYAML(t, "build:\n  preset: next\n")
	if !errors.Is(err, manifest.ErrInvalidPropertyFound) {
		t.Fatalf("expected InvalidPropertyFound, got %v", err)
	}
	if err.Error() != "Invalid property found: build" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateReportsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"enum":          "purge:\n  - type: everything\n    urls: [https://a/]\n",
		"missing list":  "cache:\n  - name: c\n    cacheByCookie:\n      option: whitelist\n",
		"empty rules":   "rules: {}\n",
		"bad ttl":       "cache:\n  - name: c\n    edge:\n      maxAgeSeconds: \"require('fs')\"\n",
		"missing match": "rules:\n  request:\n    - name: r\n",
	}
	for name, content := range cases {
		err := validateYAML(t, content)
		if !errors.Is(err, manifest.ErrSchemaViolation) {
			t.Fatalf("%s: expected SchemaViolation, got %v", name, err)
		}
	}
}

func TestValidateLeavesSemanticChecksToCompiler(t *testing.T) {
	err := validateYAML(t, `
origin:
  - name: odd
    type: carrier_pigeon
rules:
  request:
    - name: r
      match: "^/"
      behavior:
        setOrigin:
          name: odd
        runFunction:
          target: 42
domain:
  name: d
  mtls:
    verification: strict
    trustedCaCertificateId: 1
`)
	if err != nil {
		t.Fatalf("expected schema to accept semantically invalid config, got %v", err)
	}
}

func TestInstancePath(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"/origin/0/addresses/2":     "origin[0].addresses[2]",
		"/rules/request/1/behavior": "rules.request[1].behavior",
		"/a~1b/c~0d":                "a/b.c~d",
	}
	for pointer, want := range cases {
		if got := instancePath(pointer); got != want {
			t.Fatalf("instancePath(%q): expected %q, got %q", pointer, want, got)
		}
	}
}

func TestExtraProperties(t *testing.T) {
	got := extraProperties("additionalProperties 'foo', 'bar' not allowed")
	if len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Fatalf("unexpected names: %v", got)
	}
	if extraProperties("expected string, but got number") != nil {
		t.Fatalf("expected no names for other messages")
	}
}
