package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	pagepdf "github.com/alnah/go-pagepdf"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .html, .htm, .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// Input kinds, decided by extension.
const (
	kindHTML     = "html"
	kindMarkdown = "markdown"
)

// stdinOutputName is the output base name for documents read from stdin.
const stdinOutputName = "document"

// FileToConvert represents a single document to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Kind       string // kindHTML or kindMarkdown
	Content    []byte // preloaded content (stdin); nil reads InputPath
}

// inputKind returns the document kind for path, or "" if unsupported.
func inputKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return kindHTML
	case ".md", ".markdown":
		return kindMarkdown
	}
	return ""
}

// looksLikeInput reports whether a bare argument names a document.
func looksLikeInput(arg string) bool {
	return arg == stdinName || inputKind(arg) != ""
}

// discoverFiles finds all documents to convert.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		kind := inputKind(inputPath)
		if kind == "" {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath, Kind: kind}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		kind := inputKind(path)
		if kind == "" {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath, Kind: kind})
		return nil
	})

	return files, err
}

// stdinFile wraps a document read from stdin. Content starting with '<'
// is treated as HTML, anything else as Markdown.
func stdinFile(data []byte, outputDir string) FileToConvert {
	kind := kindMarkdown
	if strings.HasPrefix(strings.TrimSpace(string(data)), "<") {
		kind = kindHTML
	}
	return FileToConvert{
		InputPath:  stdinName,
		OutputPath: resolveOutputPath(stdinOutputName+".html", outputDir, ""),
		Kind:       kind,
		Content:    data,
	}
}

// resolveOutputPath determines the PDF output path for a document.
// Base names are NFC-normalized so the same title typed on different
// systems yields the same file name.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := norm.NFC.String(strings.TrimSuffix(filepath.Base(inputPath), ext))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(strings.ToLower(outputDir), ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > pagepdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, pagepdf.MaxPoolSize)
	}
	return nil
}

// htmlOutputPath returns the HTML path corresponding to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".html"
}
