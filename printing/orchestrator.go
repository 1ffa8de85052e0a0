// Package printing drives single-check and batch print/PDF jobs against an external backend.
//
// The Orchestrator is an explicit state machine. It exposes transition methods (Print, SavePDF,
// PrintBatch, Preview, Cancel, ClearError) and a read-only Status projection; only one job may be
// in flight at a time and the orchestrator never queues.
package printing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
	"github.com/ByLCY/checkpress/renderer"
	htmlrenderer "github.com/ByLCY/checkpress/renderer/html"
)

const (
	// DefaultBatchDelay separates consecutive batch items so the spooler is not flooded.
	DefaultBatchDelay = 500 * time.Millisecond
	// DefaultDoneClearDelay is how long Done stays visible before returning to Idle.
	DefaultDoneClearDelay = 3 * time.Second
)

// Options configures an Orchestrator.
type Options struct {
	Backend   Backend
	Previewer Previewer
	// HTML renders the document handed to backends; defaults to renderer/html.
	HTML     renderer.Renderer
	Resolver binding.Resolver
	Order    []string
	// Title is the document title template, e.g. "Check ${checkNumber}".
	Title          string
	BatchDelay     time.Duration
	DoneClearDelay time.Duration
	Logger         *zap.Logger
	// Sleep waits between batch items; it must return early with ctx.Err() when ctx ends.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PrintJob prints one check (or one sheet of three).
type PrintJob struct {
	Model      *layout.Model
	Data       layout.SlotData
	SheetMode  bool
	Silent     bool
	DeviceName string
}

// PDFJob renders one check (or one sheet) to PDF bytes.
type PDFJob struct {
	Model     *layout.Model
	Data      layout.SlotData
	SheetMode bool
	Options   PDFOptions
}

// JobResult is returned by Print, SavePDF and Preview.
type JobResult struct {
	JobID   string
	Success bool
	Error   error
	Data    []byte
	// Discarded is set when the backend answered after Cancel; state was left untouched.
	Discarded bool
}

// Orchestrator owns the print state machine.
type Orchestrator struct {
	backend    Backend
	previewer  Previewer
	html       renderer.Renderer
	resolver   binding.Resolver
	order      []string
	title      string
	batchDelay time.Duration
	clearDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger

	mu         sync.Mutex
	status     Status
	jobID      string
	current    int
	total      int
	lastError  error
	inFlight   bool
	generation uint64
	clearTimer *time.Timer
}

// NewOrchestrator creates an orchestrator in the Idle state.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		backend:    opts.Backend,
		previewer:  opts.Previewer,
		html:       opts.HTML,
		resolver:   opts.Resolver,
		order:      opts.Order,
		title:      opts.Title,
		batchDelay: opts.BatchDelay,
		clearDelay: opts.DoneClearDelay,
		sleep:      opts.Sleep,
		logger:     opts.Logger,
		status:     StatusIdle,
	}
	if o.html == nil {
		o.html = htmlrenderer.New(htmlrenderer.Options{})
	}
	if o.batchDelay == 0 {
		o.batchDelay = DefaultBatchDelay
	}
	if o.clearDelay == 0 {
		o.clearDelay = DefaultDoneClearDelay
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Status returns a read-only snapshot of the current state.
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		Status:    o.status,
		JobID:     o.jobID,
		Current:   o.current,
		Total:     o.total,
		LastError: o.lastError,
		InFlight:  o.inFlight,
	}
}

// Print generates the document and sends it to the backend's print entry point.
func (o *Orchestrator) Print(ctx context.Context, job PrintJob) JobResult {
	gen, jobID, err := o.begin(1)
	if err != nil {
		return JobResult{Error: err}
	}
	log := o.logger.With(zap.String("job_id", jobID))
	log.Info("print job started", zap.String("device", job.DeviceName), zap.Bool("silent", job.Silent))

	doc, html, err := o.prepare(job.Model, job.Data, job.SheetMode)
	if err != nil {
		return o.finish(gen, jobID, Result{Error: err}, log)
	}
	if !o.transition(gen, StatusSpooling) {
		return o.finish(gen, jobID, Result{Error: ErrCancelled}, log)
	}
	if o.backend == nil {
		return o.finish(gen, jobID, Result{Error: ErrBackendUnavailable}, log)
	}
	res := o.backend.Print(ctx, o.printRequest(jobID, job.Model, doc, html, job.Silent, job.DeviceName))
	return o.finish(gen, jobID, res, log)
}

// SavePDF renders the document to PDF. The page is sized to the composed check block in mm.
func (o *Orchestrator) SavePDF(ctx context.Context, job PDFJob) JobResult {
	gen, jobID, err := o.begin(1)
	if err != nil {
		return JobResult{Error: err}
	}
	log := o.logger.With(zap.String("job_id", jobID))
	log.Info("pdf job started")

	doc, html, err := o.prepare(job.Model, job.Data, job.SheetMode)
	if err != nil {
		return o.finish(gen, jobID, Result{Error: err}, log)
	}
	if !o.transition(gen, StatusSpooling) {
		return o.finish(gen, jobID, Result{Error: ErrCancelled}, log)
	}
	if o.backend == nil {
		return o.finish(gen, jobID, Result{Error: ErrBackendUnavailable}, log)
	}
	w, h := doc.PageSizeMm()
	res := o.backend.RenderToPDF(ctx, PDFRequest{
		JobID:      jobID,
		Document:   doc,
		HTML:       html,
		PageSizeMm: PageSize{Width: w, Height: h},
		Options:    job.Options,
	})
	if res.Success && len(res.Data) == 0 {
		res = Result{Error: NewBackendError(ErrCodeRenderFailed, "backend returned an empty PDF", nil)}
	}
	return o.finish(gen, jobID, res, log)
}

// Preview builds the document and opens it in the previewer. It does not touch the job state.
func (o *Orchestrator) Preview(ctx context.Context, job PrintJob) JobResult {
	jobID := uuid.NewString()
	if o.previewer == nil {
		return JobResult{JobID: jobID, Error: fmt.Errorf("%w: no previewer configured", ErrPreviewFailure)}
	}
	doc, html, err := o.prepare(job.Model, job.Data, job.SheetMode)
	if err != nil {
		return JobResult{JobID: jobID, Error: err}
	}
	if err := o.previewer.Preview(ctx, doc, html); err != nil {
		o.logger.Warn("preview failed", zap.String("job_id", jobID), zap.Error(err))
		return JobResult{JobID: jobID, Error: fmt.Errorf("%w: %w", ErrPreviewFailure, err)}
	}
	return JobResult{JobID: jobID, Success: true, Data: html}
}

// Cancel flips the state to Cancelled. An in-flight backend call is not aborted; its result is
// discarded when it arrives, and a running batch stops before its next item.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.inFlight {
		return
	}
	o.generation++
	o.status = StatusCancelled
	o.lastError = nil
	o.logger.Info("print job cancelled", zap.String("job_id", o.jobID))
}

// ClearError returns a Failed or Cancelled orchestrator to Idle.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight || (o.status != StatusFailed && o.status != StatusCancelled) {
		return
	}
	o.status = StatusIdle
	o.lastError = nil
	o.current, o.total = 0, 0
}

// begin claims the in-flight flag and starts a new generation.
func (o *Orchestrator) begin(total int) (uint64, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return 0, "", ErrBusy
	}
	if o.clearTimer != nil {
		o.clearTimer.Stop()
		o.clearTimer = nil
	}
	o.inFlight = true
	o.generation++
	o.jobID = uuid.NewString()
	o.status = StatusPreparing
	o.lastError = nil
	o.current, o.total = 0, total
	return o.generation, o.jobID, nil
}

// transition moves to next if gen is still current and the move is legal.
func (o *Orchestrator) transition(gen uint64, next Status) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || !o.status.CanTransitionTo(next) {
		return false
	}
	o.status = next
	return true
}

func (o *Orchestrator) advance(gen uint64, current int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || !o.status.CanTransitionTo(StatusPrinting) {
		return false
	}
	o.status = StatusPrinting
	o.current = current
	return true
}

// finish applies a backend result. Results from a superseded generation are discarded.
func (o *Orchestrator) finish(gen uint64, jobID string, res Result, log *zap.Logger) JobResult {
	err := resultError(res)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	if gen != o.generation {
		log.Info("late backend result discarded", zap.Bool("success", res.Success))
		return JobResult{JobID: jobID, Error: ErrCancelled, Discarded: true}
	}
	if err != nil {
		o.status = StatusFailed
		o.lastError = err
		log.Error("print job failed", zap.Error(err))
		return JobResult{JobID: jobID, Error: err}
	}
	o.status = StatusDone
	o.current = o.total
	o.scheduleClear(gen)
	log.Info("print job finished", zap.Int("bytes", len(res.Data)))
	return JobResult{JobID: jobID, Success: true, Data: res.Data}
}

// scheduleClear returns Done to Idle after the clear delay unless a newer job started. Caller holds mu.
func (o *Orchestrator) scheduleClear(gen uint64) {
	o.clearTimer = time.AfterFunc(o.clearDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation == gen && o.status == StatusDone && !o.inFlight {
			o.status = StatusIdle
			o.current, o.total = 0, 0
		}
	})
}

func (o *Orchestrator) prepare(m *layout.Model, data layout.SlotData, sheet bool) (*document.Document, []byte, error) {
	if m == nil {
		return nil, nil, fmt.Errorf("%w: model is nil", ErrInvalidJob)
	}
	doc, err := document.Generate(m, data, document.Options{
		Order:     o.order,
		SheetMode: sheet,
		Resolver:  o.resolver,
		Title:     o.title,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	html, err := o.html.Render(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	return doc, html, nil
}

func (o *Orchestrator) printRequest(jobID string, m *layout.Model, doc *document.Document, html []byte, silent bool, device string) PrintRequest {
	page := PageSize{Width: layout.InToMm(m.Page.WidthIn), Height: layout.InToMm(m.Page.HeightIn)}
	if page.Width <= 0 || page.Height <= 0 {
		page.Width, page.Height = doc.PageSizeMm()
	}
	return PrintRequest{
		JobID:      jobID,
		Document:   doc,
		HTML:       html,
		Silent:     silent,
		DeviceName: device,
		PageSize:   page,
		Margins:    MarginsFromPlacement(m.Placement),
	}
}

// resultError normalizes a backend result into the error taxonomy.
func resultError(res Result) error {
	if res.Success {
		return nil
	}
	switch {
	case res.Error == nil:
		return ErrBackendFailure
	case errors.Is(res.Error, ErrBackendUnavailable),
		errors.Is(res.Error, ErrBackendFailure),
		errors.Is(res.Error, ErrInvalidJob),
		errors.Is(res.Error, ErrCancelled),
		errors.Is(res.Error, context.Canceled),
		errors.Is(res.Error, context.DeadlineExceeded):
		return res.Error
	default:
		return fmt.Errorf("%w: %w", ErrBackendFailure, res.Error)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
