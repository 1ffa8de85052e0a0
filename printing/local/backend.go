// Package local implements a print/PDF backend in pure Go: documents are drawn with the
// canvas renderer and handed to the operating system spooler.
package local

import (
	"context"

	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/printing"
	canvasrenderer "github.com/ByLCY/checkpress/renderer/canvas"
)

// Config contains configuration for the local backend.
type Config struct {
	Renderer *canvasrenderer.Renderer
	Spooler  printing.Spooler
	Logger   *zap.Logger
}

// Backend renders PDFs with tdewolff/canvas.
type Backend struct {
	renderer *canvasrenderer.Renderer
	spooler  printing.Spooler
	logger   *zap.Logger
}

var _ printing.Backend = (*Backend)(nil)

// New creates a local backend. A nil renderer uses the built-in font and no injected images.
func New(cfg Config) *Backend {
	b := &Backend{renderer: cfg.Renderer, spooler: cfg.Spooler, logger: cfg.Logger}
	if b.renderer == nil {
		b.renderer = canvasrenderer.NewRenderer("")
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// RenderToPDF draws the document on a page of exactly PageSizeMm.
func (b *Backend) RenderToPDF(ctx context.Context, req printing.PDFRequest) printing.Result {
	if req.Document == nil {
		return printing.Result{Error: printing.NewBackendError(printing.ErrCodeInvalidInput, "document is nil", nil)}
	}
	page := canvasrenderer.Page{WidthMm: req.PageSizeMm.Width, HeightMm: req.PageSizeMm.Height}
	if page.WidthMm <= 0 || page.HeightMm <= 0 {
		page.WidthMm, page.HeightMm = req.Document.PageSizeMm()
	}
	if req.Options.Landscape {
		page.WidthMm, page.HeightMm = page.HeightMm, page.WidthMm
	}
	data, err := b.renderer.RenderPage(req.Document, page)
	if err != nil {
		return printing.Result{Error: printing.NewBackendError(printing.ErrCodeRenderFailed, "canvas rendering failed", err)}
	}
	b.logger.Debug("pdf rendered", zap.String("job_id", req.JobID), zap.Int("bytes", len(data)))
	return printing.Result{Success: true, Data: data}
}

// Print renders the document onto the nominal paper, offset by the margins, and spools it.
func (b *Backend) Print(ctx context.Context, req printing.PrintRequest) printing.Result {
	if b.spooler == nil {
		return printing.Result{Error: printing.ErrNoSpooler}
	}
	if req.Document == nil {
		return printing.Result{Error: printing.NewBackendError(printing.ErrCodeInvalidInput, "document is nil", nil)}
	}
	page := canvasrenderer.Page{
		WidthMm:   req.PageSize.Width,
		HeightMm:  req.PageSize.Height,
		OffsetXMm: req.Margins.Left,
		OffsetYMm: req.Margins.Top,
	}
	if page.WidthMm <= 0 || page.HeightMm <= 0 {
		page.WidthMm, page.HeightMm = req.Document.PageSizeMm()
	}
	data, err := b.renderer.RenderPage(req.Document, page)
	if err != nil {
		return printing.Result{Error: printing.NewBackendError(printing.ErrCodeRenderFailed, "canvas rendering failed", err)}
	}
	err = b.spooler.Spool(ctx, printing.SpoolRequest{
		JobID:      req.JobID,
		Title:      req.Document.Title,
		DeviceName: req.DeviceName,
		Silent:     req.Silent,
		PDF:        data,
	})
	if err != nil {
		return printing.Result{Error: err}
	}
	return printing.Result{Success: true}
}
