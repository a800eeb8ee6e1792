// Package workspace provides workspace management functionality for Sweepbot.
// It handles workspace directory creation, path resolution, and subdirectory management.
//
// The workspace is the root directory where Sweepbot stores its data, including:
//   - index/: Per-chat message index files
//
// Example usage:
//
//	cfg := config.WorkspaceConfig{Path: "~/.sweepbot"}
//	ws := workspace.New(cfg)
//	if err := ws.EnsureSubpath(workspace.SubdirIndex); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Index dir:", ws.Subpath(workspace.SubdirIndex))
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aatumaykin/sweepbot/internal/config"
)

// SubdirIndex is the subdirectory name for per-chat message indexes
const SubdirIndex = "index"

// Workspace represents a Sweepbot workspace with path management capabilities.
type Workspace struct {
	path     string // Expanded workspace path
	basePath string // Original path from config (may contain ~)
}

// New creates a new Workspace from the given configuration.
// The path from config is stored as-is in basePath and expanded in path.
func New(cfg config.WorkspaceConfig) *Workspace {
	expandedPath := expandHome(cfg.Path)
	return &Workspace{
		path:     expandedPath,
		basePath: cfg.Path,
	}
}

// Path returns the expanded workspace path (with ~ expanded to home directory).
func (w *Workspace) Path() string {
	return w.path
}

// BasePath returns the original path from config (may contain ~).
func (w *Workspace) BasePath() string {
	return w.basePath
}

// EnsureDir creates the workspace directory if it doesn't exist.
func (w *Workspace) EnsureDir() error {
	if w.path == "" {
		return fmt.Errorf("workspace path is empty")
	}

	info, err := os.Stat(w.path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("workspace path exists but is not a directory: %s", w.path)
		}
		return nil
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access workspace path %s: %w", w.path, err)
	}

	if err := os.MkdirAll(w.path, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory %s: %w", w.path, err)
	}

	return nil
}

// Subpath returns a path for a standard workspace subdirectory.
func (w *Workspace) Subpath(name string) string {
	return filepath.Join(w.path, name)
}

// EnsureSubpath creates a subdirectory within the workspace if it doesn't exist.
// The workspace directory itself is created first when missing.
func (w *Workspace) EnsureSubpath(name string) error {
	if err := w.EnsureDir(); err != nil {
		return fmt.Errorf("failed to ensure workspace: %w", err)
	}

	if name == "" {
		return fmt.Errorf("subdirectory name is empty")
	}

	subpath := w.Subpath(name)

	info, err := os.Stat(subpath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("subdirectory path exists but is not a directory: %s", subpath)
		}
		return nil
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access subdirectory %s: %w", subpath, err)
	}

	if err := os.MkdirAll(subpath, 0755); err != nil {
		return fmt.Errorf("failed to create subdirectory %s: %w", subpath, err)
	}

	return nil
}

// expandHome expands ~ to the user's home directory.
// If the path doesn't start with ~/, it's returned unchanged.
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' && (len(path) == 1 || path[1] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
