package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetScanFlags resets package-level flags to defaults before each test.
func resetScanFlags() {
	configPath = ""
	jsonOutput = false
	badgeOutput = false
	historyDBFlag = ""
	maxFindings = 0
	failUnder = 0
	verbose = false
}

// makeMinimalGoProject creates a temp dir with a minimal Go module for scanning.
func makeMinimalGoProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/test\n\ngo 1.21\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {\n\tgreet()\n}\n\nfunc greet() {\n\tprintln(\"hi\")\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScanCmdFlags(t *testing.T) {
	flags := []struct {
		name     string
		defValue string
	}{
		{"config", ""},
		{"json", "false"},
		{"badge", "false"},
		{"history-db", ""},
		{"max-findings", "0"},
		{"fail-under", "0"},
	}

	for _, tt := range flags {
		f := scanCmd.Flags().Lookup(tt.name)
		if f == nil {
			t.Errorf("flag %q not registered on scan command", tt.name)
			continue
		}
		if f.DefValue != tt.defValue {
			t.Errorf("flag %q: expected default %q, got %q", tt.name, tt.defValue, f.DefValue)
		}
	}
}

func TestScanCmdRequiresExactlyOneArg(t *testing.T) {
	cmd := scanCmd
	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("scan should require exactly 1 argument, got no error for 0 args")
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("scan should require exactly 1 argument, got no error for 2 args")
	}
	if err := cmd.Args(cmd, []string{"a"}); err != nil {
		t.Errorf("scan should accept exactly 1 argument, got error: %v", err)
	}
}

func TestScanCmdMetadata(t *testing.T) {
	if scanCmd.Use != "scan <directory>" {
		t.Errorf("expected Use='scan <directory>', got %q", scanCmd.Use)
	}
	if scanCmd.Short == "" {
		t.Error("scan command should have a short description")
	}
	if !scanCmd.SilenceUsage {
		t.Error("scan command should have SilenceUsage=true")
	}
}

func TestScanRunE_InvalidDir(t *testing.T) {
	resetScanFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "/nonexistent/path/xyz"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "directory not found") {
		t.Errorf("expected 'directory not found' error, got: %v", err)
	}
}

func TestScanRunE_NoArgs(t *testing.T) {
	resetScanFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing argument")
	}
}

func TestScanRunE_ValidProject(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan should succeed, got: %v", err)
	}
}

func TestScanRunE_JSONOutput(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "--json", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan with --json should succeed, got: %v", err)
	}
	if output := buf.String(); !strings.Contains(output, "{") {
		t.Errorf("expected JSON output containing '{', got: %s", output)
	}
}

func TestScanRunE_WithBadge(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "--badge", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan with --badge should succeed, got: %v", err)
	}
	if output := buf.String(); !strings.Contains(output, "shields.io") {
		t.Errorf("expected shields.io badge URL in output, got: %s", output)
	}
}

func TestScanRunE_WithMaxFindings(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "--max-findings", "1", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan with --max-findings should succeed, got: %v", err)
	}
}

func TestScanRunE_VerboseFlag(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "-v", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan with -v should succeed, got: %v", err)
	}
}

func TestScanRunE_FailUnderTriggersExit(t *testing.T) {
	resetScanFlags()
	dir := makeMinimalGoProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"scan", "--fail-under", "1.01", dir})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected exit error when health is below --fail-under")
	}
}
