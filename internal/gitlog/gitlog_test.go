package gitlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepoWithCommits(t *testing.T, n int) string {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	for i := 0; i < n; i++ {
		name := "file.txt"
		content := []byte(time.Now().Format(time.RFC3339Nano) + "\n" + string(rune('a'+i)))
		if err := os.WriteFile(filepath.Join(repoPath, name), content, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}
		_, err := w.Commit("commit message", &git.CommitOptions{
			Author: &object.Signature{
				Name:  "Test",
				Email: "test@example.com",
				When:  time.Now(),
			},
		})
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}
	return repoPath
}

func TestOpen_NotARepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Error("expected error opening a non-git directory")
	}
}

func TestOpen_ValidRepository(t *testing.T) {
	dir := initRepoWithCommits(t, 1)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if src == nil {
		t.Fatal("Open returned nil Source")
	}
}

func TestCommitRecords_ReturnsAllCommits(t *testing.T) {
	dir := initRepoWithCommits(t, 3)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := src.CommitRecords(0)
	if err != nil {
		t.Fatalf("CommitRecords: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(commits))
	}
	for _, c := range commits {
		if c.Hash == "" {
			t.Error("commit hash should not be empty")
		}
		if c.Author == "" {
			t.Error("commit author should not be empty")
		}
		if len(c.Files) == 0 {
			t.Error("commit should list at least one changed file")
		}
	}
}

func TestCommitRecords_MaxCommitsCaps(t *testing.T) {
	dir := initRepoWithCommits(t, 5)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := src.CommitRecords(2)
	if err != nil {
		t.Fatalf("CommitRecords: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits (capped), got %d", len(commits))
	}
}

func TestCommitRecordsWithProgress_InvokesCallback(t *testing.T) {
	dir := initRepoWithCommits(t, 3)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var seenValues []int
	commits, err := src.CommitRecordsWithProgress(0, func(seen int) {
		seenValues = append(seenValues, seen)
	})
	if err != nil {
		t.Fatalf("CommitRecordsWithProgress: %v", err)
	}
	if len(seenValues) != len(commits) {
		t.Fatalf("expected one callback per commit, got %d callbacks for %d commits", len(seenValues), len(commits))
	}
	if seenValues[len(seenValues)-1] != len(commits) {
		t.Errorf("expected final callback value %d, got %d", len(commits), seenValues[len(seenValues)-1])
	}
}
