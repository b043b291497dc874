package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrDocumentRender indicates the document template failed to execute.
var ErrDocumentRender = errors.New("document template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, else right after
// <body>, else at the very start. A later block wins over earlier ones,
// so callers inject base styles first.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(htmlContent[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + styleBlock + htmlContent[pos:]
		}
	}
	return styleBlock + htmlContent
}

// sanitizeCSS keeps CSS from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// DocumentData fills the document template.
type DocumentData struct {
	Lang       string
	Title      string
	Styles     []template.CSS
	MathJaxURL string // empty disables the typesetter script
	Body       template.HTML
}

// DocumentBuilder wraps body fragments into a complete HTML document.
type DocumentBuilder interface {
	BuildDocument(ctx context.Context, data DocumentData) (string, error)
}

// TemplateDocument renders DocumentData through an html/template.
type TemplateDocument struct {
	tmpl *template.Template
}

// NewTemplateDocument parses tmplContent.
// Returns error if the template cannot be parsed.
func NewTemplateDocument(tmplContent string) (*TemplateDocument, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &TemplateDocument{tmpl: tmpl}, nil
}

// BuildDocument executes the template. Lang defaults to "en".
func (d *TemplateDocument) BuildDocument(ctx context.Context, data DocumentData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data.Lang == "" {
		data.Lang = "en"
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}
