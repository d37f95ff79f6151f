// Package project resolves the store root for the current invocation.
package project

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// MarkerDir is the directory whose presence marks a project root.
const MarkerDir = ".recall"

// FindRoot locates the project root starting from the given directory.
//
// It walks up from start looking for a MarkerDir directory. If none is
// found it falls back to the enclosing git worktree root, and finally to
// start itself. The resolver never fails: a tool operating on a fresh
// project simply roots the store at the working directory.
func FindRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	for dir := abs; ; {
		if info, err := os.Stat(filepath.Join(dir, MarkerDir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if root, ok := gitRoot(abs); ok {
		return root
	}
	return abs
}

// gitRoot returns the worktree root of the repository enclosing dir.
func gitRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}
