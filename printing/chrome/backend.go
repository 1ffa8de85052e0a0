// Package chrome implements the print/PDF backend on top of a headless Chrome driven
// through the DevTools protocol. The HTML produced by renderer/html is loaded as-is, so
// the printed page matches what the browser shows.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
	"github.com/ByLCY/checkpress/printing"
)

// Config contains configuration for the chrome backend.
type Config struct {
	// RemoteURL is the websocket URL of a running Chrome; empty launches a local one.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Timeout bounds a single render. Zero means no limit.
	Timeout time.Duration
	// Spooler receives the PDF on Print. Nil makes Print report the backend unavailable.
	Spooler printing.Spooler
	Logger  *zap.Logger
}

// Backend renders HTML to PDF with chromedp.
type Backend struct {
	config      *Config
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu       sync.Mutex
	previews []context.CancelFunc
}

var (
	_ printing.Backend   = (*Backend)(nil)
	_ printing.Previewer = (*Backend)(nil)
)

// New creates a chrome backend. The browser itself is started lazily on first use.
func New(config *Config) *Backend {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backend{config: config, logger: logger}
	b.allocCtx, b.allocCancel = b.newAllocator(true)
	return b
}

func (b *Backend) allocatorOptions(headless bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if b.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return opts
}

func (b *Backend) newAllocator(headless bool) (context.Context, context.CancelFunc) {
	if b.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), b.config.RemoteURL)
	}
	return chromedp.NewExecAllocator(context.Background(), b.allocatorOptions(headless)...)
}

// printParams holds the parameters for page.PrintToPDF, all in inches.
type printParams struct {
	paperWidth      float64
	paperHeight     float64
	marginTop       float64
	marginRight     float64
	marginBottom    float64
	marginLeft      float64
	landscape       bool
	printBackground bool
}

func pdfParams(req printing.PDFRequest) printParams {
	w, h := req.PageSizeMm.Width, req.PageSizeMm.Height
	if (w <= 0 || h <= 0) && req.Document != nil {
		w, h = req.Document.PageSizeMm()
	}
	return printParams{
		paperWidth:      layout.MmToIn(w),
		paperHeight:     layout.MmToIn(h),
		landscape:       req.Options.Landscape,
		printBackground: true,
	}
}

func printRequestParams(req printing.PrintRequest) printParams {
	w, h := req.PageSize.Width, req.PageSize.Height
	if (w <= 0 || h <= 0) && req.Document != nil {
		w, h = req.Document.PageSizeMm()
	}
	return printParams{
		paperWidth:      layout.MmToIn(w),
		paperHeight:     layout.MmToIn(h),
		marginTop:       layout.MmToIn(req.Margins.Top),
		marginRight:     layout.MmToIn(req.Margins.Right),
		marginBottom:    layout.MmToIn(req.Margins.Bottom),
		marginLeft:      layout.MmToIn(req.Margins.Left),
		printBackground: true,
	}
}

// RenderToPDF loads the HTML into a blank tab and prints it at the requested size.
func (b *Backend) RenderToPDF(ctx context.Context, req printing.PDFRequest) printing.Result {
	data, err := b.render(ctx, req.JobID, req.HTML, pdfParams(req))
	if err != nil {
		return printing.Result{Error: err}
	}
	return printing.Result{Success: true, Data: data}
}

// Print renders onto the nominal paper with the placement margins and spools the result.
func (b *Backend) Print(ctx context.Context, req printing.PrintRequest) printing.Result {
	if b.config.Spooler == nil {
		return printing.Result{Error: printing.ErrNoSpooler}
	}
	data, err := b.render(ctx, req.JobID, req.HTML, printRequestParams(req))
	if err != nil {
		return printing.Result{Error: err}
	}
	title := ""
	if req.Document != nil {
		title = req.Document.Title
	}
	err = b.config.Spooler.Spool(ctx, printing.SpoolRequest{
		JobID:      req.JobID,
		Title:      title,
		DeviceName: req.DeviceName,
		Silent:     req.Silent,
		PDF:        data,
	})
	if err != nil {
		return printing.Result{Error: err}
	}
	return printing.Result{Success: true}
}

func (b *Backend) render(ctx context.Context, jobID string, html []byte, params printParams) ([]byte, error) {
	if len(html) == 0 {
		return nil, printing.NewBackendError(printing.ErrCodeInvalidInput, "HTML content is empty", nil)
	}
	if params.paperWidth <= 0 || params.paperHeight <= 0 {
		return nil, printing.NewBackendError(printing.ErrCodeInvalidInput,
			fmt.Sprintf("invalid paper size %.2fx%.2fin", params.paperWidth, params.paperHeight), nil)
	}

	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	browserCtx, browserCancel := chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	// 调用方取消时一并关闭标签页
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	start := time.Now()
	// 无动作的 Run 只负责启动浏览器并创建标签页，失败说明后端不可用
	if err := chromedp.Run(browserCtx); err != nil {
		b.logger.Error("chrome launch failed", zap.String("job_id", jobID), zap.Error(err))
		return nil, b.runError(ctx, stageLaunch, err)
	}

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		setContent(string(html)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(params.printBackground).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithLandscape(params.landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		b.logger.Error("chromedp rendering failed", zap.String("job_id", jobID), zap.Error(err))
		return nil, b.runError(ctx, stageRender, err)
	}
	if len(pdfData) == 0 {
		return nil, printing.NewBackendError(printing.ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	b.logger.Info("PDF rendered",
		zap.String("job_id", jobID),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))
	return pdfData, nil
}

type runStage int

const (
	stageLaunch runStage = iota
	stageRender
)

// runError 按阶段归类 chromedp 错误：启动失败为不可用，页面内的失败为渲染失败。
func (b *Backend) runError(ctx context.Context, stage runStage, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return printing.NewBackendError(printing.ErrCodeRenderFailed,
			fmt.Sprintf("PDF rendering timed out after %v", b.config.Timeout), ctx.Err())
	case errors.Is(ctx.Err(), context.Canceled):
		return printing.NewBackendError(printing.ErrCodeCancelled, "PDF rendering was cancelled", ctx.Err())
	case stage == stageLaunch:
		return printing.NewBackendError(printing.ErrCodeUnavailable, "chrome could not be started: "+err.Error(), err)
	default:
		return printing.NewBackendError(printing.ErrCodeRenderFailed, "chromedp execution failed: "+err.Error(), err)
	}
}

// Preview opens a visible browser window showing the HTML. The window stays open until Close.
func (b *Backend) Preview(ctx context.Context, doc *document.Document, html []byte) error {
	if len(html) == 0 {
		return printing.NewBackendError(printing.ErrCodeInvalidInput, "HTML content is empty", nil)
	}
	allocCtx, allocCancel := b.newAllocator(false)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	title := ""
	if doc != nil {
		title = doc.Title
	}
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		setContent(string(html)),
	)
	if err != nil {
		cancel()
		return printing.NewBackendError(printing.ErrCodeUnavailable, "preview window failed to open", err)
	}
	b.logger.Debug("preview opened", zap.String("title", title))

	b.mu.Lock()
	b.previews = append(b.previews, cancel)
	b.mu.Unlock()
	return nil
}

// Close shuts down preview windows and the headless browser.
func (b *Backend) Close() error {
	b.mu.Lock()
	previews := b.previews
	b.previews = nil
	b.mu.Unlock()
	for _, cancel := range previews {
		cancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		frameTree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
	})
}
