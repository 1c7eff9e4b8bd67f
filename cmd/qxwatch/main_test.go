package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesInitialTags(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTestFile(t, root, "src/Foo.js", `qx.Class.define("app.Foo", {
  members: { bar: function() {} }
});
`)
	out := filepath.Join(t.TempDir(), "tags")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stderr bytes.Buffer
	if err := run(ctx, []string{"-o", out, root}, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading tags: %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "!_TAG_FILE_FORMAT\t2\n") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "bar\t"+filepath.Join(root, "src", "Foo.js")+"\t2;\"\tm\t") {
		t.Errorf("missing method record:\n%s", got)
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTestFile(t, root, "A.js", `qx.Class.define("app.A", {});`)
	writeTestFile(t, root, "gen/B.js", `qx.Class.define("app.B", {});`)
	writeTestFile(t, root, ".gitignore", "gen/\n")
	out := filepath.Join(t.TempDir(), "tags")
	cfg := writeTestFile(t, t.TempDir(), "qxtags.toml",
		"roots = [\""+root+"\"]\noutput = \""+out+"\"\ngitignore = true\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stderr bytes.Buffer
	if err := run(ctx, []string{"-config", cfg}, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "app.A\t") {
		t.Errorf("app.A missing:\n%s", data)
	}
	if strings.Contains(string(data), "app.B\t") {
		t.Errorf("ignored app.B present:\n%s", data)
	}
}

func TestRunNoRoots(t *testing.T) {
	t.Parallel()
	cfg := writeTestFile(t, t.TempDir(), "empty.toml", "")

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"-config", cfg}, &stderr); err == nil {
		t.Error("expected error without roots")
	}
}

func TestRunBadFlag(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"-nope"}, &stderr); err == nil {
		t.Error("expected flag error")
	}
}
