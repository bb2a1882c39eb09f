// Package gitlog is the external git collaborator named in spec.md §6: it
// ingests commit history and hands the Temporal Analyzer a plain
// []codelens.CommitRecord stream, independent of how the repository is
// stored on disk. Grounded on the go-git wrapper in panbanda-omen's
// internal/vcs/git.go, simplified to the read-only log-and-stats path this
// pipeline needs (no blame, no diff rendering).
package gitlog

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/codelens/codelens/pkg/codelens"
)

// Source reads commit history from an on-disk git repository.
type Source struct {
	repo *git.Repository
}

// Open opens the git repository rooted at path, detecting .git in parent
// directories the way a worktree checkout would need. Returns
// git.ErrRepositoryNotExists if the root is not inside a git repository --
// callers treat this as "history unavailable", not a hard failure, per
// spec.md §4.3's failure semantics.
func Open(root string) (*Source, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &Source{repo: repo}, nil
}

// CommitRecords walks the commit log reachable from HEAD, up to maxCommits
// (0 = unbounded), converting each non-merge commit into a CommitRecord.
func (s *Source) CommitRecords(maxCommits int) ([]codelens.CommitRecord, error) {
	return s.CommitRecordsWithProgress(maxCommits, nil)
}

// CommitRecordsWithProgress is CommitRecords with an optional per-commit
// callback, so a caller can drive a progress indicator across a large
// repository's history without CommitRecords itself taking a UI dependency.
// Binary files are skipped (go-git's FileStats reports them with zero
// additions/deletions, the same signal the teacher's numstat parser used
// to detect "-").
func (s *Source) CommitRecordsWithProgress(maxCommits int, onProgress func(seen int)) ([]codelens.CommitRecord, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	var records []codelens.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		if maxCommits > 0 && len(records) >= maxCommits {
			return storerStop
		}
		if c.NumParents() > 1 {
			return nil // skip merge commits, matching the teacher's --no-merges
		}
		stats, statErr := c.Stats()
		if statErr != nil {
			return nil // unreadable stats (e.g. root commit edge cases): skip, don't fail the whole walk
		}
		files := make([]string, 0, len(stats))
		for _, fs := range stats {
			if fs.Addition == 0 && fs.Deletion == 0 {
				continue // binary file, no line-level signal
			}
			files = append(files, filepath.ToSlash(fs.Name))
		}
		records = append(records, codelens.CommitRecord{
			Hash:      c.Hash.String(),
			Timestamp: c.Author.When.Unix(),
			Author:    c.Author.Email,
			Message:   c.Message,
			Files:     files,
		})
		if onProgress != nil {
			onProgress(len(records))
		}
		return nil
	})
	if err != nil && err != storerStop {
		return records, err
	}
	return records, nil
}

// storerStop is a sentinel returned from the ForEach callback to stop
// iteration early once maxCommits is reached; go-git's object.CommitIter
// treats any non-nil error as a stop signal and does not surface it if we
// swallow it ourselves.
var storerStop = fmt.Errorf("gitlog: commit limit reached")
