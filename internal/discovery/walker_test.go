package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func TestWalkValidProject(t *testing.T) {
	root, err := filepath.Abs("../../testdata/valid-go-project")
	if err != nil {
		t.Fatal(err)
	}

	result, err := Walk(root, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk(%q) returned error: %v", root, err)
	}

	fileMap := make(map[string]codelens.Language)
	for _, f := range result.Files {
		fileMap[f.RelPath] = f.Language
		if filepath.Base(f.RelPath) == ".git" || (len(f.RelPath) > 4 && f.RelPath[:5] == ".git/") {
			t.Errorf("found .git file in results: %s", f.RelPath)
		}
		if lang, ok := fileMap[f.RelPath]; ok && lang != codelens.LangGo {
			continue
		}
	}

	if _, ok := fileMap["main.go"]; !ok {
		t.Error("main.go not found in results")
	}
	if _, ok := fileMap[filepath.ToSlash(filepath.Join("vendor", "dep", "dep.go"))]; ok {
		t.Error("vendor files should be excluded by default ExcludePatterns")
	}
	if _, ok := fileMap["main_test.go"]; ok {
		t.Error("*_test.go is excluded by default ExcludePatterns")
	}
}

func TestWalkEmptyDir(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk(%q) returned error: %v", tmpDir, err)
	}
	if len(result.Files) != 0 {
		t.Errorf("expected empty file list, got %d files", len(result.Files))
	}
}

func TestWalkNonExistentDir(t *testing.T) {
	_, err := Walk("/nonexistent/path/that/does/not/exist", codelens.DefaultSettings())
	if err == nil {
		t.Error("expected error for non-existent directory, got nil")
	}
}

func TestWalkSkipsSymlinksByDefault(t *testing.T) {
	tmpDir := t.TempDir()

	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "real.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "real.go"), filepath.Join(tmpDir, "link.go")); err != nil {
		t.Skipf("symlink creation not supported: %v", err)
	}

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "real.go" {
			found = true
		}
		if f.RelPath == "link.go" {
			t.Error("link.go should have been skipped: FollowSymlinks is false by default")
		}
	}
	if !found {
		t.Error("real.go not found in results")
	}
	if result.SymlinkCount < 1 {
		t.Errorf("SymlinkCount = %d, want >= 1", result.SymlinkCount)
	}
}

func TestWalkFollowsValidatedSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	targetDir := filepath.Join(tmpDir, "target")
	if err := os.Mkdir(targetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(targetDir, "target.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(targetDir, filepath.Join(tmpDir, "linkdir")); err != nil {
		t.Skipf("directory symlink creation not supported: %v", err)
	}

	settings := codelens.DefaultSettings()
	settings.FollowSymlinks = true
	result, err := Walk(tmpDir, settings)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == filepath.ToSlash(filepath.Join("linkdir", "target.go")) ||
			f.RelPath == filepath.ToSlash(filepath.Join("target", "target.go")) {
			found = true
		}
	}
	if !found {
		t.Error("target.go reached via symlink not found in results")
	}
}

func TestWalkPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}

	tmpDir := t.TempDir()
	goContent := []byte("package main\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "accessible.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}

	subdir := filepath.Join(tmpDir, "noperm")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(subdir, "hidden.go"), goContent, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(subdir, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(subdir, 0o755) })

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v (should have continued past the unreadable dir)", err)
	}

	found := false
	for _, f := range result.Files {
		if f.RelPath == "accessible.go" {
			found = true
		}
	}
	if !found {
		t.Error("accessible.go not found in results")
	}
}

func TestWalkUnicodePaths(t *testing.T) {
	tmpDir := t.TempDir()
	unicodeDir := filepath.Join(tmpDir, "pkg_unicodé")
	if err := os.Mkdir(unicodeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(unicodeDir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	want := filepath.ToSlash(filepath.Join("pkg_unicodé", "main.go"))
	found := false
	for _, f := range result.Files {
		if f.RelPath == want {
			found = true
			if f.Language != codelens.LangGo {
				t.Errorf("Language = %v, want LangGo", f.Language)
			}
		}
	}
	if !found {
		t.Errorf("file in Unicode directory not found in results; files: %+v", result.Files)
	}
}

func TestWalkMaxFileSizeZeroDisablesCap(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("package main\n// " + string(make([]byte, 2048)) + "\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "big.go"), content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "small.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	settings := codelens.DefaultSettings()
	settings.MaxFileSizeMB = 0 // 0 means no size cap, so both files are kept
	result, err := Walk(tmpDir, settings)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(result.Files) != 2 {
		t.Errorf("len(Files) = %d, want 2 when MaxFileSizeMB=0 disables the cap", len(result.Files))
	}
}

func TestWalkEnforcesMaxFilesCap(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := filepath.Join(tmpDir, "file"+string(rune('a'+i))+".go")
		if err := os.WriteFile(name, []byte("package main\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	settings := codelens.DefaultSettings()
	settings.MaxFiles = 2
	result, err := Walk(tmpDir, settings)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(result.Files) != 2 {
		t.Errorf("len(Files) = %d, want 2 (MaxFiles cap)", len(result.Files))
	}
	if result.TruncatedCount < 1 {
		t.Errorf("TruncatedCount = %d, want >= 1", result.TruncatedCount)
	}
}

func TestWalkHonorsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("ignored.go\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "ignored.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "kept.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	var names []string
	for _, f := range result.Files {
		names = append(names, f.RelPath)
	}
	for _, n := range names {
		if n == "ignored.go" {
			t.Error("ignored.go should have been excluded via .gitignore")
		}
	}
	if result.ExcludedCount < 1 {
		t.Errorf("ExcludedCount = %d, want >= 1", result.ExcludedCount)
	}
}

func TestWalkExcludesGeneratedGoFiles(t *testing.T) {
	tmpDir := t.TempDir()
	generated := "// Code generated by stringer. DO NOT EDIT.\n\npackage main\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "thing_string.go"), []byte(generated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	for _, f := range result.Files {
		if f.RelPath == "thing_string.go" {
			t.Error("generated file should have been excluded")
		}
	}
	var foundMain bool
	for _, f := range result.Files {
		if f.RelPath == "main.go" {
			foundMain = true
		}
	}
	if !foundMain {
		t.Error("main.go should still be discovered")
	}
	if result.ExcludedCount < 1 {
		t.Errorf("ExcludedCount = %d, want >= 1", result.ExcludedCount)
	}
}

func TestWalkKeepsGeneratedCommentAfterPackageDeclaration(t *testing.T) {
	// A "DO NOT EDIT" comment that appears after the package clause is not
	// the standard generated-file marker and should not trigger exclusion.
	tmpDir := t.TempDir()
	content := "package main\n\n// Code generated by mistake. DO NOT EDIT.\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "normal.go"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Walk(tmpDir, codelens.DefaultSettings())
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	var found bool
	for _, f := range result.Files {
		if f.RelPath == "normal.go" {
			found = true
		}
	}
	if !found {
		t.Error("normal.go should not be excluded: generated marker appeared after package clause")
	}
}

func TestMatchGlobstarHandlesDoubleStarSegments(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"vendor/**", "vendor/dep/dep.go", true},
		{"**/__pycache__/**", "pkg/sub/__pycache__/x.pyc", true},
		{"vendor/**", "internal/vendor.go", false},
	}
	for _, c := range cases {
		if got := matchGlobstar(c.pattern, c.path); got != c.want {
			t.Errorf("matchGlobstar(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}
