package pipeline

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use Private Use Area characters, which Goldmark passes
// through unchanged.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
	mathStart            = "\uE002"
	mathEnd              = "\uE003"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)

	// Display math first so $$ is never read as two inline delimiters.
	// Inline $ needs a non-space right after the opener and right before
	// the closer, which keeps prices like "$5 and $10" out.
	mathPattern = regexp.MustCompile(
		`(?s)\$\$.+?\$\$` +
			`|\\\[.+?\\\]` +
			`|\\\(.+?\\\)` +
			`|\$[^\s$](?:[^$\n]*?[^\s$\\])?\$`)

	mathPlaceholder = regexp.MustCompile(`\x{E002}(\d+)\x{E003}`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown normalizes line endings, marks ==highlights== and
// compresses runs of blank lines.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// ProtectMath swaps TeX spans for numbered placeholders so Markdown
// emphasis and escapes do not touch them.
func ProtectMath(content string) (string, []string) {
	var spans []string
	out := mathPattern.ReplaceAllStringFunc(content, func(m string) string {
		spans = append(spans, m)
		return mathStart + strconv.Itoa(len(spans)-1) + mathEnd
	})
	return out, spans
}

// RestoreMath puts the spans saved by ProtectMath back, HTML-escaped.
func RestoreMath(content string, spans []string) string {
	if len(spans) == 0 {
		return content
	}
	return mathPlaceholder.ReplaceAllStringFunc(content, func(m string) string {
		i, err := strconv.Atoi(m[len(mathStart) : len(m)-len(mathEnd)])
		if err != nil || i < 0 || i >= len(spans) {
			return m
		}
		return html.EscapeString(spans[i])
	})
}
