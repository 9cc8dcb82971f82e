package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "", "--config", writeConfig(t, dir), "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(dir) && got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := runCLI(t, "", "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on empty cache:\n%s", out)
	}

	if _, err := runCLI(t, "", "--config", cfg, "render", "λx.x"); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "", "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	// One layout and one txt artifact.
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("clear after render:\n%s", out)
	}
}
