// Package git reads working tree status by shelling out to the git binary.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"stagr/internal/errors"
	"stagr/internal/log"
	"stagr/pkg/types"

	"golang.org/x/sync/errgroup"
)

// DetachedHead is reported as the branch name when HEAD is detached.
const DetachedHead = "(detached)"

// Repository is a git working tree.
type Repository struct {
	root string
}

// Snapshot is the repository state shown by one refresh.
type Snapshot struct {
	Branch  string
	Items   []types.StatusItem
	TakenAt time.Time
}

// Open resolves the working tree containing path.
func Open(ctx context.Context, path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewRepoError("cannot resolve path", path, errors.InvalidPath, err)
	}

	out, err := run(ctx, abs, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.NewRepoError("not a git repository", abs, errors.RepoNotFound, err)
	}

	root := strings.TrimSpace(string(out))
	log.LogWithFields(log.F("root", root)).Debug("Opened repository")
	return &Repository{root: filepath.FromSlash(root)}, nil
}

// Root returns the absolute path of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// Status lists every changed path, untracked files included.
func (r *Repository) Status(ctx context.Context) ([]types.StatusItem, error) {
	out, err := run(ctx, r.root, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, errors.NewRepoError("git status failed", r.root, errors.GitCommandFailed, err)
	}

	items, err := ParseStatus(out)
	if err != nil {
		return nil, errors.NewRepoError("cannot read git status", r.root, errors.StatusParseFailed, err)
	}
	return items, nil
}

// Branch returns the current branch name, or DetachedHead.
func (r *Repository) Branch(ctx context.Context) (string, error) {
	out, err := run(ctx, r.root, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return DetachedHead, nil
		}
		return "", errors.NewRepoError("cannot read branch", r.root, errors.GitCommandFailed, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Snapshot reads branch and status concurrently.
func (r *Repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		branch, err := r.Branch(gctx)
		snap.Branch = branch
		return err
	})
	g.Go(func() error {
		items, err := r.Status(gctx)
		snap.Items = items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.TakenAt = time.Now()
	log.LogWithFields(
		log.F("branch", snap.Branch),
		log.F("entries", len(snap.Items)),
	).Debug("Status snapshot taken")
	return &snap, nil
}

func run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrap(err, msg)
		}
		return nil, err
	}
	return out, nil
}
