package ui

import (
	"bytes"
	"testing"
)

func TestConsoleBlock(t *testing.T) {
	var out bytes.Buffer
	c := New(&out)
	c.BlockStart("📦", "Manifest")
	c.Item("Rules", 3)
	c.BlockEnd()

	want := "📦 Manifest:\n   Rules:             3\n\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestConsolePrefixes(t *testing.T) {
	var out bytes.Buffer
	c := New(&out)
	c.Info("a")
	c.Success("b")
	c.Warn("c")
	c.ItemPlain("d")

	want := "➜ a\n✅ b\n⚠️  c\n   d\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}
