// Package config loads Settings (spec.md §6) from an optional project
// config file layered under explicit overrides, using koanf the way the
// pack's tooling-focused repos do for multi-format configuration
// (format-sniffed by extension: yaml/yml, json, toml), falling back to
// codelens.DefaultSettings() when no file is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/codelens/codelens/pkg/codelens"
)

// defaultConfigNames are searched, in order, under the project root when no
// explicit path is given.
var defaultConfigNames = []string{".codelens.yml", ".codelens.yaml", ".codelens.json", ".codelens.toml"}

// fileConfig mirrors the subset of codelens.Settings a project config file
// may override; koanf unmarshals into this before merging onto defaults.
type fileConfig struct {
	PageRankDamping    float64             `koanf:"pagerank_damping"`
	PageRankIterations int                 `koanf:"pagerank_iterations"`
	PageRankTolerance  float64             `koanf:"pagerank_tolerance"`
	Workers            int                 `koanf:"workers"`
	MaxFileSizeMB      int                 `koanf:"max_file_size_mb"`
	MaxFiles           int                 `koanf:"max_files"`
	GitMaxCommits      int                 `koanf:"git_max_commits"`
	GitMinCommits      int                 `koanf:"git_min_commits"`
	MaxFindings        int                 `koanf:"max_findings"`
	ExcludePatterns    []string            `koanf:"exclude_patterns"`
	AllowHiddenFiles   bool                `koanf:"allow_hidden_files"`
	FollowSymlinks     bool                `koanf:"follow_symlinks"`
	HistoryDBPath      string              `koanf:"history_db_path"`
	Thresholds         thresholdFileConfig `koanf:"thresholds"`
}

type thresholdFileConfig struct {
	Weights  map[string]float64            `koanf:"weights"`
	Patterns map[string]map[string]float64 `koanf:"patterns"`
}

// Load resolves Settings by starting from codelens.DefaultSettings(),
// merging in a project config file if one exists (explicitPath, or the
// first of defaultConfigNames found under dir), then applying overrides
// (typically CLI flags) last so they always win.
func Load(dir, explicitPath string, overrides map[string]interface{}) (*codelens.Settings, error) {
	settings := codelens.DefaultSettings()

	path := explicitPath
	if path == "" {
		path = findConfigFile(dir)
	}

	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	if k.Len() > 0 {
		fc := fileConfig{}
		if err := k.Unmarshal("", &fc); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
		applyFileConfig(settings, k, fc)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func findConfigFile(dir string) string {
	for _, name := range defaultConfigNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

// applyFileConfig overlays only the keys koanf actually saw (k.Exists),
// so an absent field in the config file never clobbers a default.
func applyFileConfig(s *codelens.Settings, k *koanf.Koanf, fc fileConfig) {
	if k.Exists("pagerank_damping") {
		s.PageRankDamping = fc.PageRankDamping
	}
	if k.Exists("pagerank_iterations") {
		s.PageRankIterations = fc.PageRankIterations
	}
	if k.Exists("pagerank_tolerance") {
		s.PageRankTolerance = fc.PageRankTolerance
	}
	if k.Exists("workers") {
		s.Workers = fc.Workers
	}
	if k.Exists("max_file_size_mb") {
		s.MaxFileSizeMB = fc.MaxFileSizeMB
	}
	if k.Exists("max_files") {
		s.MaxFiles = fc.MaxFiles
	}
	if k.Exists("git_max_commits") {
		s.GitMaxCommits = fc.GitMaxCommits
	}
	if k.Exists("git_min_commits") {
		s.GitMinCommits = fc.GitMinCommits
	}
	if k.Exists("max_findings") {
		s.MaxFindings = fc.MaxFindings
	}
	if k.Exists("exclude_patterns") {
		s.ExcludePatterns = fc.ExcludePatterns
	}
	if k.Exists("allow_hidden_files") {
		s.AllowHiddenFiles = fc.AllowHiddenFiles
	}
	if k.Exists("follow_symlinks") {
		s.FollowSymlinks = fc.FollowSymlinks
	}
	if k.Exists("history_db_path") {
		s.HistoryDBPath = fc.HistoryDBPath
	}
	if len(fc.Thresholds.Weights) > 0 {
		w := codelens.DefaultCompositeWeights()
		for name, v := range fc.Thresholds.Weights {
			switch name {
			case "pagerank":
				w.PageRank = v
			case "blast_radius":
				w.BlastRadius = v
			case "cognitive_load":
				w.CognitiveLoad = v
			case "instability":
				w.Instability = v
			case "bus_factor":
				w.BusFactor = v
			}
		}
		s.Thresholds.Weights = &w
	}
	if len(fc.Thresholds.Patterns) > 0 {
		s.Thresholds.Patterns = fc.Thresholds.Patterns
	}
}
