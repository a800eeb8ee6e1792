package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aatumaykin/sweepbot/internal/config"
)

// TestNew tests the New constructor
func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfgPath   string
		wantPath  string
		checkHome bool
	}{
		{
			name:     "simple path",
			cfgPath:  "/tmp/sweepbot",
			wantPath: "/tmp/sweepbot",
		},
		{
			name:     "empty path",
			cfgPath:  "",
			wantPath: "", // Should remain empty
		},
		{
			name:      "home path with tilde",
			cfgPath:   "~/.sweepbot",
			checkHome: true, // Should be expanded to actual home directory
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.WorkspaceConfig{Path: tt.cfgPath}
			ws := New(cfg)

			if ws.basePath != tt.cfgPath {
				t.Errorf("BasePath() = %v, want %v", ws.basePath, tt.cfgPath)
			}

			if tt.checkHome {
				home, _ := os.UserHomeDir()
				expectedPath := filepath.Join(home, ".sweepbot")
				if ws.path != expectedPath {
					t.Errorf("Path() = %v, want %v (home expanded)", ws.path, expectedPath)
				}
			} else if tt.wantPath != "" && ws.path != tt.wantPath {
				t.Errorf("Path() = %v, want %v", ws.path, tt.wantPath)
			}
		})
	}
}

// TestPath tests the Path method
func TestPath(t *testing.T) {
	ws := &Workspace{
		path:     "/tmp/sweepbot",
		basePath: "~/.sweepbot",
	}

	if got := ws.Path(); got != "/tmp/sweepbot" {
		t.Errorf("Path() = %v, want %v", got, "/tmp/sweepbot")
	}
}

// TestBasePath tests the BasePath method
func TestBasePath(t *testing.T) {
	ws := &Workspace{
		path:     filepath.Join(os.Getenv("HOME"), ".sweepbot"),
		basePath: "~/.sweepbot",
	}

	if got := ws.BasePath(); got != "~/.sweepbot" {
		t.Errorf("BasePath() = %v, want %v", got, "~/.sweepbot")
	}
}

// TestEnsureDir tests the EnsureDir method
func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "workspace path is empty",
		},
		{
			name:    "existing directory",
			path:    t.TempDir(),
			wantErr: false,
		},
		{
			name:    "create new directory",
			path:    filepath.Join(t.TempDir(), "fresh"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &Workspace{path: tt.path, basePath: tt.path}
			err := ws.EnsureDir()

			if (err != nil) != tt.wantErr {
				t.Errorf("EnsureDir() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("EnsureDir() error message = %v, want %v", err.Error(), tt.errMsg)
				}
			}

			if !tt.wantErr && tt.path != "" {
				info, err := os.Stat(tt.path)
				if err != nil {
					t.Errorf("directory was not created: %v", err)
				}
				if err == nil && !info.IsDir() {
					t.Errorf("path exists but is not a directory")
				}
			}
		})
	}
}

// TestEnsureDirOnFile verifies that a file at the workspace path is rejected
func TestEnsureDirOnFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "asfile")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	ws := &Workspace{path: filePath, basePath: filePath}
	if err := ws.EnsureDir(); err == nil {
		t.Error("EnsureDir() on file path should error")
	}
}

// TestSubpath tests the Subpath method
func TestSubpath(t *testing.T) {
	tmpDir := "/tmp/sweepbot"
	ws := &Workspace{path: tmpDir, basePath: tmpDir}

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{
			name: "index subdirectory",
			dir:  SubdirIndex,
			want: filepath.Join(tmpDir, "index"),
		},
		{
			name: "custom subdirectory",
			dir:  "custom",
			want: filepath.Join(tmpDir, "custom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ws.Subpath(tt.dir)
			if got != tt.want {
				t.Errorf("Subpath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEnsureSubpath tests the EnsureSubpath method
func TestEnsureSubpath(t *testing.T) {
	tmpDir := t.TempDir()
	ws := &Workspace{path: tmpDir, basePath: tmpDir}

	tests := []struct {
		name    string
		subdir  string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty subdirectory name",
			subdir:  "",
			wantErr: true,
			errMsg:  "subdirectory name is empty",
		},
		{
			name:    "create index subdirectory",
			subdir:  SubdirIndex,
			wantErr: false,
		},
		{
			name:    "create nested subdirectory",
			subdir:  "nested/path",
			wantErr: false,
		},
		{
			name:   "existing subdirectory",
			subdir: SubdirIndex,
			// This should not error if the directory already exists
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ws.EnsureSubpath(tt.subdir)

			if (err != nil) != tt.wantErr {
				t.Errorf("EnsureSubpath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("EnsureSubpath() error message = %v, want %v", err.Error(), tt.errMsg)
				}
			}

			if !tt.wantErr && tt.subdir != "" {
				subpath := ws.Subpath(tt.subdir)
				info, err := os.Stat(subpath)
				if err != nil {
					t.Errorf("subdirectory was not created: %v", err)
				}
				if err == nil && !info.IsDir() {
					t.Errorf("subpath exists but is not a directory")
				}
			}
		})
	}
}

// TestExpandHome tests the expandHome function
func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home directory: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "expand tilde only",
			path: "~",
			want: home,
		},
		{
			name: "expand tilde with slash",
			path: "~/",
			want: home,
		},
		{
			name: "expand tilde with path",
			path: "~/.sweepbot",
			want: filepath.Join(home, ".sweepbot"),
		},
		{
			name: "absolute path",
			path: "/tmp/sweepbot",
			want: "/tmp/sweepbot",
		},
		{
			name: "relative path",
			path: "./sweepbot",
			want: "./sweepbot",
		},
		{
			name: "empty path",
			path: "",
			want: "",
		},
		{
			name: "path starting with ~ but not followed by /",
			path: "~test",
			want: "~test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandHome(tt.path)
			if got != tt.want {
				t.Errorf("expandHome() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConfigToWorkspaceIntegration tests the complete flow from config to workspace
func TestConfigToWorkspaceIntegration(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := config.WorkspaceConfig{Path: tmpDir}
	ws := New(cfg)

	if ws.Path() != tmpDir {
		t.Errorf("ws.Path() = %q, want %q", ws.Path(), tmpDir)
	}

	if err := ws.EnsureSubpath(SubdirIndex); err != nil {
		t.Fatalf("EnsureSubpath(index) failed: %v", err)
	}

	indexPath := ws.Subpath(SubdirIndex)
	info, err := os.Stat(indexPath)
	if err != nil {
		t.Fatalf("failed to stat index dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("index path exists but is not a directory")
	}
}
