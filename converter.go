package pagepdf

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-pagepdf/internal/assets"
	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ pipeline.DocumentBuilder      = (*pipeline.TemplateDocument)(nil)
)

// strategyCustom names renderers injected with WithRenderer.
const strategyCustom = "custom"

// Converter paginates HTML or Markdown content into PDF documents.
// Create with NewConverter, call Convert per job and Close when done.
// A Converter runs one job at a time; use ConverterPool for parallel jobs.
type Converter struct {
	cfg           converterConfig
	logger        *zap.Logger
	renderer      PdfRenderer
	strategy      string
	assetLoader   assets.AssetLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	documents     pipeline.DocumentBuilder
	documentCSS   string
	captureCSS    string
}

// NewConverter creates a Converter. The browser is not started until the
// first local job.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           defaultConverterConfig(),
		logger:        zap.NewNop(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	switch c.cfg.imageFormat {
	case ImageFormatJPEG, ImageFormatPNG:
	default:
		return nil, fmt.Errorf("%w: %q (must be jpeg or png)", ErrInvalidImageFormat, c.cfg.imageFormat)
	}

	resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.assetLoader = resolver
	c.logger.Debug("assets resolved",
		zap.Bool("custom", resolver.HasCustomLoader()),
		zap.String("path", c.cfg.assetPath),
	)

	if c.captureCSS, err = c.resolveStyle(c.cfg.captureStyle, assets.StyleCapture); err != nil {
		return nil, err
	}
	if c.documentCSS, err = c.assetLoader.LoadStyle(assets.StyleDocument); err != nil {
		return nil, fmt.Errorf("loading document style: %w", err)
	}

	docTemplate, err := c.assetLoader.LoadTemplate(assets.TemplateDocument)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	if c.documents, err = pipeline.NewTemplateDocument(docTemplate); err != nil {
		return nil, err
	}

	if c.renderer != nil {
		c.strategy = strategyCustom
		return c, nil
	}
	if err := c.initRenderer(); err != nil {
		return nil, err
	}
	return c, nil
}

// initRenderer builds the renderer named by the strategy option.
func (c *Converter) initRenderer() error {
	switch c.cfg.strategy {
	case StrategyLocal, "":
		scripts, err := assets.LoadScripts(c.assetLoader, assets.Scripts...)
		if err != nil {
			return fmt.Errorf("loading capture scripts: %w", err)
		}
		opener := newRodOpener(c.cfg.timeout, scripts, c.logger)
		c.renderer = newLocalTiledRenderer(opener, c.cfg, c.logger)
		c.strategy = StrategyLocal

	case StrategyRemote:
		if c.cfg.remoteEndpoint == "" {
			return ErrMissingRemoteEndpoint
		}
		src, err := c.assetLoader.LoadTemplate(assets.TemplateRemote)
		if err != nil {
			return fmt.Errorf("loading remote template: %w", err)
		}
		tmpl, err := template.New(assets.TemplateRemote).Parse(src)
		if err != nil {
			return fmt.Errorf("parsing remote template: %w", err)
		}
		printCSS, err := c.assetLoader.LoadStyle(assets.StylePrint)
		if err != nil {
			return fmt.Errorf("loading print style: %w", err)
		}
		c.renderer = newRemoteServiceRenderer(c.cfg, tmpl, printCSS, c.logger)
		c.strategy = StrategyRemote

	default:
		return fmt.Errorf("%w: %q (must be local or remote)", ErrInvalidStrategy, c.cfg.strategy)
	}
	return nil
}

// Convert paginates one document. The result PDF has been parsed back and
// its page count checked; on any error no partial output is returned.
// Convert recovers from internal panics.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	jobID := uuid.NewString()
	start := time.Now()
	log := c.logger.With(zap.String("job", jobID), zap.String("strategy", c.strategy))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		if err != nil {
			result = nil
			log.Error("conversion failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	in := input.resolved()
	page := resolvePage(in.Page)
	page.Filename = pdfFilename(page.Filename)
	log = log.With(zap.String("filename", page.Filename))

	geometry, err := geometryFor(page)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	doc, err := c.buildDocument(ctx, in, page)
	if err != nil {
		return nil, err
	}

	res := &Result{
		JobID:    jobID,
		HTML:     []byte(doc),
		Filename: page.Filename,
		Strategy: c.strategy,
	}
	if in.HTMLOnly {
		return res, nil
	}

	out, err := c.renderer.Render(ctx, RenderRequest{
		JobID:    jobID,
		Document: doc,
		Input:    in,
		Page:     page,
		Geometry: geometry,
	})
	if err != nil {
		return nil, err
	}

	pages, err := verifyPageCount(out.PDF, out.Pages)
	if err != nil {
		return nil, err
	}

	res.PDF = out.PDF
	res.Pages = pages
	res.Shifts = out.Shifts
	log.Info("conversion complete",
		zap.String("layout", in.Layout),
		zap.Int("pages", pages),
		zap.Int("shifts", len(out.Shifts)),
		zap.Int("bytes", len(out.PDF)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// buildDocument produces the HTML loaded by the renderer: Markdown and
// fragments are wrapped in the document template, relative resources are
// made absolute and the capture styles are injected last.
func (c *Converter) buildDocument(ctx context.Context, in Input, page PageSettings) (string, error) {
	body := in.HTML
	if in.Markdown != "" {
		md := c.preprocessor.PreprocessMarkdown(ctx, in.Markdown)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html, err := c.htmlConverter.ToHTML(ctx, md)
		if err != nil {
			return "", conversionError(ctx, err)
		}
		body = pipeline.ConvertMarkPlaceholders(html)
	}

	doc := body
	if !pipeline.IsFullDocument(body) {
		var err error
		doc, err = c.documents.BuildDocument(ctx, pipeline.DocumentData{
			Title:      strings.TrimSuffix(page.Filename, ".pdf"),
			Styles:     []template.CSS{template.CSS(c.documentCSS)}, // #nosec G203 -- embedded or operator-provided asset
			MathJaxURL: c.cfg.mathJaxURL,
			Body:       template.HTML(body), // #nosec G203 -- caller's own content
		})
		if err != nil {
			return "", conversionError(ctx, err)
		}
	}

	if in.SourceDir != "" {
		var err error
		doc, err = pipeline.RewriteRelativePaths(doc, in.SourceDir)
		if err != nil {
			return "", fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	css := buildContainerWidthCSS(page.ReferenceWidthPx)
	if in.CSS != "" {
		css += "\n" + in.CSS
	}
	css += "\n" + c.captureCSS
	doc = c.cssInjector.InjectCSS(ctx, doc, css)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return doc, nil
}

// conversionError wraps err as ErrHTMLConversion unless the job was
// canceled or timed out, in which case the context error is returned.
func conversionError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrHTMLConversion, err)
}

// Close releases the renderer (headless Chrome for the local strategy).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// resolveStyle resolves a style given as a name, a file path or inline
// CSS. An empty input loads fallback by name.
func (c *Converter) resolveStyle(input, fallback string) (string, error) {
	if input == "" {
		input = fallback
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	if fileutil.IsCSS(input) {
		return input, nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}
