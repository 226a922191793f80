package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	DefaultBranch    = "main"
	DefaultAuthor    = "semcache"
	DefaultEmail     = "semcache@local"
	SnapshotFilename = "snapshot.json"
)

var _ Persister = (*GitStore)(nil)

// GitStore keeps the snapshot file in a git worktree and commits every save,
// so earlier states of the cache can be listed, diffed and restored.
type GitStore struct {
	file     *FileStore
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
}

// NewGitStore opens the repository rooted at dir, initializing it on first
// use.
func NewGitStore(dir string) (*GitStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	gitPath := filepath.Join(dir, git.GitDirName)
	storage := filesystem.NewStorage(osfs.New(gitPath), cache.NewObjectLRUDefault())
	wt := osfs.New(dir)

	repo, err := git.Open(storage, wt)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = initRepository(storage, wt)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitStore{
		file:     NewFileStore(filepath.Join(dir, SnapshotFilename)),
		repo:     repo,
		worktree: worktree,
		rootPath: dir,
	}, nil
}

func initRepository(storage *filesystem.Storage, wt billy.Filesystem) (*git.Repository, error) {
	repo, err := git.Init(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("set config: %w", err)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(DefaultBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("set HEAD: %w", err)
	}

	return repo, nil
}

func (s *GitStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := s.file.Save(ctx, snap); err != nil {
		return err
	}

	_, err := s.commit(fmt.Sprintf("save: %d entries", snap.Len()))
	return err
}

func (s *GitStore) Load(ctx context.Context) (*Snapshot, error) {
	return s.file.Load(ctx)
}

func (s *GitStore) Close() error {
	return nil
}

// SnapshotPath is the file watched by followers of this store.
func (s *GitStore) SnapshotPath() string {
	return s.file.Path()
}

func (s *GitStore) Log(ctx context.Context, limit int) ([]*Commit, error) {
	iter, err := s.repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	count := 0

	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && count >= limit {
			return io.EOF
		}
		commits = append(commits, toCommit(c))
		count++
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// Diff renders a line diff of the stored contexts between two revisions.
// Embeddings are left out; they change wholesale and are unreadable as text.
// An empty to means HEAD.
func (s *GitStore) Diff(ctx context.Context, from, to string) (string, error) {
	if to == "" {
		to = "HEAD"
	}

	before, err := s.snapshotAt(from)
	if err != nil {
		return "", err
	}
	after, err := s.snapshotAt(to)
	if err != nil {
		return "", err
	}

	oldText, err := contextsText(before)
	if err != nil {
		return "", err
	}
	newText, err := contextsText(after)
	if err != nil {
		return "", err
	}

	return renderDiff(fmt.Sprintf("a/%s@%s", SnapshotFilename, from), fmt.Sprintf("b/%s@%s", SnapshotFilename, to), oldText, newText), nil
}

// Revert restores the snapshot stored at ref as a new commit. Later history
// is kept.
func (s *GitStore) Revert(ctx context.Context, ref string) (*Commit, error) {
	snap, err := s.snapshotAt(ref)
	if err != nil {
		return nil, err
	}
	if err := s.file.Save(ctx, snap); err != nil {
		return nil, err
	}

	commit, err := s.commit(fmt.Sprintf("revert: restore %s", ref))
	if err != nil {
		return nil, err
	}
	if commit == nil {
		return s.Show(ctx, "HEAD")
	}
	return commit, nil
}

func (s *GitStore) Show(ctx context.Context, ref string) (*Commit, error) {
	commit, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return toCommit(commit), nil
}

// commit stages the snapshot and commits it. A save that changes nothing
// returns a nil commit.
func (s *GitStore) commit(message string) (*Commit, error) {
	if _, err := s.worktree.Add(SnapshotFilename); err != nil {
		return nil, fmt.Errorf("stage snapshot: %w", err)
	}

	hash, err := s.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	c, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return toCommit(c), nil
}

func (s *GitStore) resolve(ref string) (*object.Commit, error) {
	resolved, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve ref %q: %w", ref, err)
	}

	commit, err := s.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return commit, nil
}

func (s *GitStore) snapshotAt(ref string) (*Snapshot, error) {
	commit, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	f, err := commit.File(SnapshotFilename)
	if errors.Is(err, object.ErrFileNotFound) {
		return EmptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot at %s: %w", ref, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read snapshot at %s: %w", ref, err)
	}
	return decodeSnapshot([]byte(content))
}

func contextsText(snap *Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap.Contexts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal contexts: %w", err)
	}
	return string(data) + "\n", nil
}

func renderDiff(oldName, newName, oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", oldName, newName)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
		}
	}
	return buf.String()
}

func toCommit(c *object.Commit) *Commit {
	var parents []string
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
		Parents:   parents,
	}
}
