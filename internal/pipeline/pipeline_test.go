package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func writeTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite(t, root, "go.mod", "module example.com/sample\n\ngo 1.21\n")
	mustWrite(t, root, "main.go", `package main

import "example.com/sample/internal/greeter"

func main() {
	greeter.Greet("world")
}
`)
	mustWrite(t, root, "internal/greeter/greeter.go", `package greeter

import "fmt"

// Greet prints a greeting.
func Greet(name string) {
	fmt.Println(build(name))
}

func build(name string) string {
	return "hello, " + name
}
`)
	return root
}

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateProjectMissingDir(t *testing.T) {
	if err := ValidateProject(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestValidateProjectNotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateProject(file); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestValidateProjectNoIndicators(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateProject(root); err == nil {
		t.Error("expected error for a directory with no recognized project files")
	}
}

func TestValidateProjectAcceptsGoMod(t *testing.T) {
	root := writeTestProject(t)
	if err := ValidateProject(root); err != nil {
		t.Errorf("ValidateProject() = %v, want nil", err)
	}
}

func TestPipelineRunProducesFindingsAndField(t *testing.T) {
	root := writeTestProject(t)

	var buf bytes.Buffer
	p := New(&buf, false, nil, nil)

	result, err := p.Run(root)
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if result.Field == nil {
		t.Fatal("Run() result.Field is nil")
	}
	if result.Diagnostics.FilesDiscovered == 0 {
		t.Error("expected at least one discovered file")
	}
	if result.Diagnostics.FilesParsed == 0 {
		t.Error("expected at least one parsed file")
	}
	if _, ok := result.Field.PerFile["main.go"]; !ok {
		t.Errorf("expected per-file signals for main.go, got keys: %v", keysOf(result.Field.PerFile))
	}
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestPipelineRunInvalidSettings(t *testing.T) {
	root := writeTestProject(t)

	bad := codelens.DefaultSettings()
	bad.PageRankDamping = 0 // out of (0,1), Validate() must reject this

	var buf bytes.Buffer
	p := New(&buf, false, bad, nil)

	if _, err := p.Run(root); err == nil {
		t.Error("expected Run() to reject invalid settings")
	}
}

func TestPipelineRunProgressCallback(t *testing.T) {
	root := writeTestProject(t)

	var stages []string
	onProgress := func(stage, detail string) {
		stages = append(stages, stage)
	}

	var buf bytes.Buffer
	p := New(&buf, false, nil, onProgress)

	if _, err := p.Run(root); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	for _, want := range []string{"discover", "parse", "analyze", "fuse", "patterns"} {
		found := false
		for _, got := range stages {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing progress callback for stage %q, got: %v", want, stages)
		}
	}
}

func TestPipelineRunRejectsEmptyProject(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	p := New(&buf, false, nil, nil)

	if _, err := p.Run(root); err == nil {
		t.Error("expected Run() to fail on a project with no recognized source files")
	}
}
