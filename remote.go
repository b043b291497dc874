package pagepdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pagepdf/internal/markup"
)

// maxRemoteErrorBody bounds how much of a failure body is kept.
const maxRemoteErrorBody = 4 << 10

// maxRemotePDFSize bounds the accepted response size.
const maxRemotePDFSize = 256 << 20

// remotePayload is the request body of the print service.
type remotePayload struct {
	HTML       string           `json:"html"`
	Filename   string           `json:"filename"`
	PDFOptions remotePDFOptions `json:"pdfOptions"`
}

type remotePDFOptions struct {
	Format          string       `json:"format"`
	PrintBackground bool         `json:"printBackground"`
	Margin          remoteMargin `json:"margin"`
	Landscape       bool         `json:"landscape"`
}

type remoteMargin struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

// remoteDocumentData feeds the remote document template.
type remoteDocumentData struct {
	Lang            string
	Title           string
	Styles          []template.CSS
	StylesheetLinks []string
	MathJaxURL      string
	Body            template.HTML
}

// RemoteServiceRenderer delegates printing to an HTTP service that accepts
// a self-contained HTML document and answers with a PDF.
type RemoteServiceRenderer struct {
	endpoint   string
	client     *http.Client
	timeout    time.Duration
	tmpl       *template.Template
	printCSS   string
	mathJaxURL string
	maxPDF     int64
	logger     *zap.Logger
}

func newRemoteServiceRenderer(cfg converterConfig, tmpl *template.Template, printCSS string, logger *zap.Logger) *RemoteServiceRenderer {
	client := cfg.httpClient
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteServiceRenderer{
		endpoint:   cfg.remoteEndpoint,
		client:     client,
		timeout:    cfg.remoteTimeout,
		tmpl:       tmpl,
		printCSS:   printCSS,
		mathJaxURL: cfg.mathJaxURL,
		maxPDF:     maxRemotePDFSize,
		logger:     logger,
	}
}

// Render snapshots the capture target with the document's styles and posts
// it to the service. Any non-2xx answer becomes a *RemoteRenderError
// carrying the upstream status and body.
func (r *RemoteServiceRenderer) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	doc, err := r.buildDocument(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(remotePayload{
		HTML:       doc,
		Filename:   req.Page.Filename,
		PDFOptions: remoteOptions(req.Page),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding remote request: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRenderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/pdf")

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteRenderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxRemoteErrorBody))
		return nil, &RemoteRenderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, r.maxPDF+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrRemoteRenderFailure, err)
	}
	if int64(len(pdf)) > r.maxPDF {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrRemoteRenderFailure, r.maxPDF)
	}
	r.logger.Debug("remote render complete",
		zap.String("job", req.JobID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &RenderResult{PDF: pdf}, nil
}

// buildDocument produces the standalone HTML sent to the service.
func (r *RemoteServiceRenderer) buildDocument(req RenderRequest) (string, error) {
	snap, err := markup.Take(req.Document, req.Input.Selector)
	if err != nil {
		if errors.Is(err, markup.ErrTargetNotFound) {
			return "", fmt.Errorf("%w: %q", ErrCaptureTargetMissing, req.Input.Selector)
		}
		if errors.Is(err, markup.ErrInvalidSelector) {
			return "", fmt.Errorf("%w: %v", ErrInvalidSelector, err)
		}
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	data := remoteDocumentData{
		Lang:            snap.Lang,
		Title:           snap.Title,
		StylesheetLinks: snap.StylesheetLinks,
		MathJaxURL:      r.mathJaxURL,
		Body:            template.HTML(snap.Body), // #nosec G203 -- content is the caller's own document
	}
	if data.Lang == "" {
		data.Lang = "en"
	}
	if data.Title == "" {
		data.Title = strings.TrimSuffix(req.Page.Filename, ".pdf")
	}
	for _, css := range append([]string{r.printCSS, buildPageCSS(req.Page)}, snap.Styles...) {
		if css != "" {
			data.Styles = append(data.Styles, template.CSS(css)) // #nosec G203 -- document styles
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: remote template: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// remoteOptions translates page settings into print options.
func remoteOptions(p PageSettings) remotePDFOptions {
	m := strconv.FormatFloat(p.MarginPt, 'f', -1, 64) + "pt"
	return remotePDFOptions{
		Format:          remoteFormatName(p.Format),
		PrintBackground: true,
		Margin:          remoteMargin{Top: m, Right: m, Bottom: m, Left: m},
		Landscape:       p.Orientation == OrientationLandscape,
	}
}

func remoteFormatName(format string) string {
	switch format {
	case PageFormatA4, PageFormatA3, PageFormatA5:
		return strings.ToUpper(format)
	case "":
		return "A4"
	default:
		return strings.ToUpper(format[:1]) + format[1:]
	}
}

// Close is a no-op; the HTTP client belongs to the caller.
func (r *RemoteServiceRenderer) Close() error {
	return nil
}
