package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		loader, err := NewFilesystemLoader(tmpDir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dir      string
		file     string
		content  string
		load     func(*FilesystemLoader, string) (string, error)
		asset    string
		notFound error
	}{
		{
			name:     "style",
			dir:      "styles",
			file:     "capture.css",
			content:  ".pagepdf-detached { background: #fff; }",
			load:     (*FilesystemLoader).LoadStyle,
			asset:    "capture",
			notFound: ErrStyleNotFound,
		},
		{
			name:     "script",
			dir:      "scripts",
			file:     "measure.js",
			content:  "(id) => []",
			load:     (*FilesystemLoader).LoadScript,
			asset:    "measure",
			notFound: ErrScriptNotFound,
		},
		{
			name:     "template",
			dir:      "templates",
			file:     "remote.html",
			content:  "<body>{{.Body}}</body>",
			load:     (*FilesystemLoader).LoadTemplate,
			asset:    "remote",
			notFound: ErrTemplateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			dir := filepath.Join(tmpDir, tt.dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatalf("failed to create %s dir: %v", tt.dir, err)
			}
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write %s: %v", tt.file, err)
			}

			loader, err := NewFilesystemLoader(tmpDir)
			if err != nil {
				t.Fatalf("NewFilesystemLoader() error = %v", err)
			}

			got, err := tt.load(loader, tt.asset)
			if err != nil {
				t.Fatalf("load(%q) error = %v", tt.asset, err)
			}
			if got != tt.content {
				t.Errorf("load(%q) = %q, want %q", tt.asset, got, tt.content)
			}

			if _, err := tt.load(loader, "nonexistent"); !errors.Is(err, tt.notFound) {
				t.Errorf("load(nonexistent) error = %v, want %v", err, tt.notFound)
			}

			for _, name := range []string{"", "../secret", "..\\secret", "asset.evil"} {
				if _, err := tt.load(loader, name); !errors.Is(err, ErrInvalidAssetName) {
					t.Errorf("load(%q) error = %v, want ErrInvalidAssetName", name, err)
				}
			}
		})
	}
}

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	t.Run("rejects symlink escape attempt", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		scriptsDir := filepath.Join(tmpDir, "scripts")
		if err := os.MkdirAll(scriptsDir, 0755); err != nil {
			t.Fatalf("failed to create scripts dir: %v", err)
		}

		// Create a secret file outside the base path
		secretDir := t.TempDir()
		secretFile := filepath.Join(secretDir, "secret.js")
		if err := os.WriteFile(secretFile, []byte("secret content"), 0644); err != nil {
			t.Fatalf("failed to write secret file: %v", err)
		}

		// Create symlink inside scripts pointing outside
		symlinkPath := filepath.Join(scriptsDir, "evil.js")
		if err := os.Symlink(secretFile, symlinkPath); err != nil {
			t.Skipf("symlink creation not supported: %v", err)
		}

		loader, err := NewFilesystemLoader(tmpDir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}

		// The symlink resolves to a path outside basePath
		// verifyPathContainment uses EvalSymlinks to detect this
		_, err = loader.LoadScript("evil")
		if !errors.Is(err, ErrPathTraversal) {
			t.Errorf("LoadScript() with symlink escape error = %v, want ErrPathTraversal", err)
		}
	})
}

func TestFilesystemLoader_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*FilesystemLoader)(nil)
}
