package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	tmpDir := t.TempDir()

	settings, err := Load(tmpDir, "", nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.MaxFindings != 50 {
		t.Errorf("MaxFindings = %d, want default 50", settings.MaxFindings)
	}
	if settings.PageRankDamping != 0.85 {
		t.Errorf("PageRankDamping = %v, want default 0.85", settings.PageRankDamping)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `max_findings: 25
workers: 4
exclude_patterns:
  - "vendor/**"
  - "testdata/**"
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".codelens.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(tmpDir, "", nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.MaxFindings != 25 {
		t.Errorf("MaxFindings = %d, want 25", settings.MaxFindings)
	}
	if settings.Workers != 4 {
		t.Errorf("Workers = %d, want 4", settings.Workers)
	}
	if len(settings.ExcludePatterns) != 2 {
		t.Errorf("ExcludePatterns = %v, want 2 entries", settings.ExcludePatterns)
	}
}

func TestLoadJSONFormatSniffedByExtension(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"max_findings": 10, "follow_symlinks": true}`
	path := filepath.Join(tmpDir, ".codelens.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(tmpDir, "", nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.MaxFindings != 10 {
		t.Errorf("MaxFindings = %d, want 10", settings.MaxFindings)
	}
	if !settings.FollowSymlinks {
		t.Error("expected FollowSymlinks = true")
	}
}

func TestLoadExplicitPathOverridesDiscovery(t *testing.T) {
	tmpDir := t.TempDir()
	decoy := filepath.Join(tmpDir, ".codelens.yml")
	if err := os.WriteFile(decoy, []byte("max_findings: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	explicit := filepath.Join(tmpDir, "custom.toml")
	if err := os.WriteFile(explicit, []byte("max_findings = 99\n"), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(tmpDir, explicit, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.MaxFindings != 99 {
		t.Errorf("MaxFindings = %d, want 99 from explicit path", settings.MaxFindings)
	}
}

func TestLoadOverridesLayerAboveFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "max_findings: 25\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".codelens.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(tmpDir, "", map[string]interface{}{"max_findings": 5})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.MaxFindings != 5 {
		t.Errorf("MaxFindings = %d, want 5 (override wins over file)", settings.MaxFindings)
	}
}

func TestLoadInvalidWeightsFailsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	content := `thresholds:
  weights:
    pagerank: 0.9
    blast_radius: 0.9
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".codelens.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir, "", nil)
	if err == nil {
		t.Fatal("expected validation error for weights not summing to 1.0")
	}
}

func TestLoadUnsupportedExtensionErrors(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.ini")
	if err := os.WriteFile(path, []byte("max_findings=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir, path, nil)
	if err == nil {
		t.Fatal("expected error for unsupported config format")
	}
}
