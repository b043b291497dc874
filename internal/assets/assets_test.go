package assets

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestEmbeddedLoader - Built-in Assets
// ---------------------------------------------------------------------------

func TestEmbeddedLoader_BuiltinsPresent(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	for _, name := range []string{StyleCapture, StylePrint, StyleDocument} {
		css, err := loader.LoadStyle(name)
		if err != nil {
			t.Errorf("LoadStyle(%q) error = %v", name, err)
			continue
		}
		if strings.TrimSpace(css) == "" {
			t.Errorf("LoadStyle(%q) returned empty content", name)
		}
	}

	for _, name := range Scripts {
		src, err := loader.LoadScript(name)
		if err != nil {
			t.Errorf("LoadScript(%q) error = %v", name, err)
			continue
		}
		if !strings.Contains(src, "=>") {
			t.Errorf("LoadScript(%q) is not a function expression", name)
		}
	}

	for _, name := range []string{TemplateDocument, TemplateRemote} {
		tpl, err := loader.LoadTemplate(name)
		if err != nil {
			t.Errorf("LoadTemplate(%q) error = %v", name, err)
			continue
		}
		if !strings.Contains(tpl, "{{.Body}}") {
			t.Errorf("LoadTemplate(%q) has no body placeholder", name)
		}
	}
}

func TestEmbeddedLoader_CaptureStyleDefinesVisibilityClasses(t *testing.T) {
	t.Parallel()

	css, err := LoadStyle(StyleCapture)
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}
	for _, class := range []string{".pagepdf-detached", ".pagepdf-capturing", ".pagepdf-root"} {
		if !strings.Contains(css, class) {
			t.Errorf("capture style missing %s", class)
		}
	}
}

func TestEmbeddedLoader_RemoteTemplateLoadsMathJax(t *testing.T) {
	t.Parallel()

	tpl, err := LoadTemplate(TemplateRemote)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if !strings.Contains(tpl, "MathJax-script") {
		t.Error("remote template does not load the typesetting engine")
	}
}

func TestEmbeddedLoader_Errors(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		load    func() (string, error)
		wantErr error
	}{
		{
			name:    "unknown style",
			load:    func() (string, error) { return loader.LoadStyle("nonexistent") },
			wantErr: ErrStyleNotFound,
		},
		{
			name:    "unknown script",
			load:    func() (string, error) { return loader.LoadScript("nonexistent") },
			wantErr: ErrScriptNotFound,
		},
		{
			name:    "unknown template",
			load:    func() (string, error) { return loader.LoadTemplate("nonexistent") },
			wantErr: ErrTemplateNotFound,
		},
		{
			name:    "traversal in style name",
			load:    func() (string, error) { return loader.LoadStyle("../secret") },
			wantErr: ErrInvalidAssetName,
		},
		{
			name:    "extension in script name",
			load:    func() (string, error) { return loader.LoadScript("clone.js") },
			wantErr: ErrInvalidAssetName,
		},
		{
			name:    "empty template name",
			load:    func() (string, error) { return loader.LoadTemplate("") },
			wantErr: ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadScripts - Batch Loading
// ---------------------------------------------------------------------------

func TestLoadScripts(t *testing.T) {
	t.Parallel()

	t.Run("loads every requested script", func(t *testing.T) {
		t.Parallel()

		got, err := LoadScripts(NewEmbeddedLoader(), Scripts...)
		if err != nil {
			t.Fatalf("LoadScripts() error = %v", err)
		}
		if len(got) != len(Scripts) {
			t.Errorf("LoadScripts() returned %d scripts, want %d", len(got), len(Scripts))
		}
	})

	t.Run("fails on first missing script", func(t *testing.T) {
		t.Parallel()

		_, err := LoadScripts(NewEmbeddedLoader(), ScriptClone, "missing")
		if !errors.Is(err, ErrScriptNotFound) {
			t.Errorf("LoadScripts() error = %v, want ErrScriptNotFound", err)
		}
	})
}

func TestEmbeddedStyles(t *testing.T) {
	t.Parallel()

	want := []string{StyleCapture, StyleDocument, StylePrint}
	if diff := cmp.Diff(want, EmbeddedStyles()); diff != "" {
		t.Errorf("EmbeddedStyles() mismatch (-want +got):\n%s", diff)
	}
}
