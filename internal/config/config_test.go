package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
roots = ["source/class", "lib"]
output = "build/tags"
debounce = "1s"
gitignore = true
`)

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Roots:     []string{"source/class", "lib"},
		Output:    "build/tags",
		Debounce:  time.Second,
		Gitignore: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `roots = ["."]`)

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != "tags" || cfg.Debounce != 250*time.Millisecond {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := Load(missing, true)
	if err != nil {
		t.Fatalf("optional Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}

	if _, err := Load(missing, false); err == nil {
		t.Error("expected error for required missing file")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "roots = [\".\"]\nverbose = true\n")

	_, err := Load(path, false)
	if err == nil || !strings.Contains(err.Error(), "verbose") {
		t.Errorf("err = %v, want unknown key error", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cfg := Config{Roots: []string{"src"}, Output: "tags"}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !filepath.IsAbs(cfg.Roots[0]) || !filepath.IsAbs(cfg.Output) {
		t.Errorf("paths not absolute: %+v", cfg)
	}

	for _, bad := range []Config{
		{Output: "tags"},
		{Roots: []string{"."}},
		{Roots: []string{"."}, Output: "tags", Debounce: -time.Second},
	} {
		if err := bad.Resolve(); err == nil {
			t.Errorf("Resolve(%+v) should fail", bad)
		}
	}
}
