package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestResolveAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "renderer")

	path, ok := Resolve(stub)
	if !ok || path != stub {
		t.Fatalf("expected %s, got %s (ok=%v)", stub, path, ok)
	}

	if _, ok := Resolve(filepath.Join(dir, "absent")); ok {
		t.Fatal("expected absent absolute path to fail")
	}
}

func TestResolveViaSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeStub(t, dir, "probe-ok")
	t.Setenv("PATH", dir)

	if _, ok := Resolve("probe-ok"); !ok {
		t.Fatal("expected PATH resolution with passing probe")
	}

	// A binary whose --version invocation fails is treated as not found.
	failing := filepath.Join(dir, "probe-bad")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok := Resolve("probe-bad"); ok {
		t.Fatal("expected failing probe to report not found")
	}
}

func TestCheckBinaries(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "present")

	reqs := []Requirement{
		{Name: "Present", Command: stub},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != stub {
		t.Fatalf("expected first requirement available at %s, got %#v", stub, results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestMissing(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "present")

	missing := Missing([]Requirement{
		{Name: "Present", Command: stub},
		{Name: "Gone", Command: "clearly-not-present-binary", InstallHint: "install it"},
	})
	if len(missing) != 1 {
		t.Fatalf("expected one missing tool, got %d", len(missing))
	}
	if missing[0].Name != "Gone" {
		t.Fatalf("unexpected missing tool: %s", missing[0].Name)
	}
	if missing[0].InstallHint != "install it" {
		t.Fatalf("install hint lost: %#v", missing[0])
	}
}
