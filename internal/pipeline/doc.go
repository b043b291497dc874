// Package pipeline builds the HTML document that gets paginated.
//
// Stages:
//   - Markdown preprocessing (line endings, ==highlight== syntax)
//   - Markdown to HTML fragment via Goldmark, with TeX left verbatim
//   - Wrapping fragments into a full document from a template
//   - CSS injection
//   - Relative resource paths rewritten to file:// URLs
//
// Capture and pagination live in the root pagepdf package. This package
// only decides what the browser loads.
package pipeline
