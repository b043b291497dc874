// Package assets provides the stylesheets, DOM scripts and HTML templates
// used to paginate a document in a headless browser.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (defaults)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when an asset is
// missing, so a directory may override a single file.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # capture, print, document
//	├── scripts/
//	│   └── {name}.js       # one function expression per file
//	└── templates/
//	    └── {name}.html     # document, remote
//
// Every script evaluates to a single function expression. The browser layer
// calls it with JSON arguments and awaits the returned value.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
