// Package discovery implements the file-list-and-content collaborator
// (spec.md §6, input 1): a directory walker that discovers source files,
// classifies and excludes them, and hands back read, UTF-8-cleaned
// content ready for the Syntax Extractor. Grounded on the teacher's
// internal/discovery walker (gitignore handling, vendor/generated
// detection, symlink rejection), generalized to the spec's resource
// limits (size/count caps, path-escape validation) and settings surface.
package discovery

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/codelens/codelens/internal/syntax"
	"github.com/codelens/codelens/pkg/codelens"
)

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"dist": true, "build": true, ".venv": true, "venv": true, "env": true,
}

var langExtensions = map[string]codelens.Language{
	".go": codelens.LangGo, ".py": codelens.LangPython,
	".ts": codelens.LangTypeScript, ".tsx": codelens.LangTypeScript,
}

// Result is the outcome of a Walk: the files handed to the Syntax
// Extractor plus counters for the caller's diagnostics report.
type Result struct {
	Files          []syntax.SourceFile
	TotalSeen      int
	SkippedCount   int
	ExcludedCount  int
	SymlinkCount   int
	OversizeCount  int
	TruncatedCount int // MaxFiles cap reached
}

// Walk discovers source files under root per settings: honors
// ExcludePatterns and any .gitignore at the root, rejects symlinks and
// paths that escape root, and enforces the per-file size cap and total
// file count cap (spec.md §5 resource limits).
func Walk(root string, settings *codelens.Settings) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	exclude := compileExcludes(settings.ExcludePatterns)

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(absRoot, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, _ = ignore.CompileIgnoreFile(gitignorePath)
	}

	result := &Result{}
	maxSize := int64(settings.MaxFileSizeMB) * 1024 * 1024

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.SkippedCount++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !settings.FollowSymlinks {
				result.SymlinkCount++
				return nil
			}
			target, err := filepath.EvalSymlinks(path)
			if err != nil || !withinRoot(absRoot, target) {
				result.SymlinkCount++
				return nil
			}
		}

		name := d.Name()
		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") && !settings.AllowHiddenFiles {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		if name != "." && strings.HasPrefix(name, ".") && !settings.AllowHiddenFiles {
			return nil
		}

		ext := filepath.Ext(name)
		lang, supported := langExtensions[ext]
		if !supported {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			result.SkippedCount++
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !withinRoot(absRoot, path) {
			result.SkippedCount++
			return nil
		}

		result.TotalSeen++

		if exclude.match(relPath) || (gitIgnore != nil && gitIgnore.MatchesPath(relPath)) {
			result.ExcludedCount++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			result.SkippedCount++
			return nil
		}
		if maxSize > 0 && fi.Size() > maxSize {
			result.OversizeCount++
			return nil
		}

		if lang == codelens.LangGo {
			if generated, _ := isGeneratedFile(path); generated {
				result.ExcludedCount++
				return nil
			}
		}

		if settings.MaxFiles > 0 && len(result.Files) >= settings.MaxFiles {
			result.TruncatedCount++
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			result.SkippedCount++
			return nil
		}
		if !utf8.Valid(content) {
			content = bytes.ToValidUTF8(content, []byte("�"))
		}

		result.Files = append(result.Files, syntax.SourceFile{
			Path:     path,
			RelPath:  relPath,
			Language: lang,
			Content:  content,
			MTime:    fi.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].RelPath < result.Files[j].RelPath })
	return result, nil
}

// withinRoot reports whether path lies within root after resolution,
// rejecting symlink targets (or, defensively, any path) that escapes it.
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type excludeSet struct {
	patterns []string
}

func compileExcludes(patterns []string) excludeSet {
	return excludeSet{patterns: patterns}
}

func (e excludeSet) match(relPath string) bool {
	for _, pat := range e.patterns {
		if ok, _ := filepath.Match(pat, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(relPath)); ok {
			return true
		}
		if matchGlobstar(pat, relPath) {
			return true
		}
	}
	return false
}

// matchGlobstar handles the "**" segments used throughout
// DefaultSettings().ExcludePatterns (e.g. "vendor/**",
// "**/__pycache__/**"), which filepath.Match does not support directly.
func matchGlobstar(pattern, path string) bool {
	if !strings.Contains(pattern, "**") {
		return false
	}
	parts := strings.Split(pattern, "**")
	idx := 0
	for i, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		pos := strings.Index(path[idx:], part)
		if i == 0 && !strings.HasPrefix(path, part) && pos != 0 {
			return false
		}
		if pos < 0 {
			return false
		}
		idx += pos + len(part)
	}
	return true
}
