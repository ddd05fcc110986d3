// Where: cmd/edgeman/cli_test.go
// What: Tests for CLI dependency wiring.
// Why: Ensure buildDependencies is deterministic.
package main

import (
	"context"
	"errors"
	"testing"
)

func TestBuildDependenciesSuccess(t *testing.T) {
	origGetwd := getwd
	t.Cleanup(func() {
		getwd = origGetwd
	})

	getwd = func() (string, error) {
		return "/project", nil
	}

	ctx := context.Background()
	deps, err := buildDependencies(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	dir, err := deps.Getwd()
	if err != nil || dir != "/project" {
		t.Fatalf("unexpected project dir: %s (%v)", dir, err)
	}
	if deps.Prompter == nil {
		t.Fatalf("expected prompter")
	}
	if deps.Context != ctx {
		t.Fatalf("expected context to be passed through")
	}
}

func TestBuildDependenciesGetwdError(t *testing.T) {
	origGetwd := getwd
	t.Cleanup(func() {
		getwd = origGetwd
	})

	getwd = func() (string, error) {
		return "", errors.New("boom")
	}

	if _, err := buildDependencies(context.Background()); err == nil {
		t.Fatalf("expected error on getwd failure")
	}
}
