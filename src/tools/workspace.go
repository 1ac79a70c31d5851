package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a requested file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrPathOutsideRoot is returned for absolute paths and any path that
	// escapes the workspace root.
	ErrPathOutsideRoot = errors.New("path escapes workspace root")
)

// Workspace confines all tool file access to a fixed root directory.
type Workspace struct {
	root string
}

func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	return &Workspace{root: abs}, nil
}

func (w *Workspace) Root() string { return w.root }

// Resolve turns a user-supplied relative path into an absolute path under
// the root. Absolute paths and parent-directory traversal are rejected
// outright rather than silently joined, and symlinks that resolve outside
// the root are rejected too.
func (w *Workspace) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathOutsideRoot)
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	abs := filepath.Join(w.root, filepath.Clean(rel))
	if err := w.checkSymlinks(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// checkSymlinks verifies that the path, once symlinks are followed, still
// lands under the root. The lexical checks above do not catch a link inside
// the workspace that points elsewhere. For a path that does not exist yet
// the nearest existing ancestor is verified instead, so proposed edits to
// new files keep working.
func (w *Workspace) checkSymlinks(abs string) error {
	target := abs
	for {
		resolved, err := filepath.EvalSymlinks(target)
		if err == nil {
			return w.ensureUnderRoot(resolved)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("resolve %s: %w", target, err)
		}
		parent := filepath.Dir(target)
		if parent == target {
			return nil
		}
		target = parent
	}
}

func (w *Workspace) ensureUnderRoot(resolved string) error {
	root, err := filepath.EvalSymlinks(w.root)
	if err != nil {
		return fmt.Errorf("resolve workspace root: %w", err)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathOutsideRoot, resolved)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathOutsideRoot, resolved)
	}
	return nil
}
