package printing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/layout"
)

// BatchJob prints a sequence of checks. Items are printed one by one, always silently.
type BatchJob struct {
	Model *layout.Model
	Items []layout.CheckData
	// Sheet groups items three per page (top, middle, bottom); a short last page leaves slots empty.
	Sheet           bool
	ContinueOnError bool
	DeviceName      string
	// Progress is called once per page before its print attempt.
	Progress func(Progress)
}

// Progress reports the page about to be printed, 1-based.
type Progress struct {
	Current int
	Total   int
}

// ItemResult is the outcome of one printed page.
type ItemResult struct {
	Index   int
	Items   []int
	Success bool
	Error   error
}

// Summary counts printed pages.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// BatchResult is the terminal batch outcome. Success equals Summary.Failed == 0; a batch
// stopped early by Cancel or by the caller's ctx reports that through Cancelled and Error.
type BatchResult struct {
	JobID     string
	Success   bool
	Results   []ItemResult
	Summary   Summary
	Error     error
	Cancelled bool
}

type batchPage struct {
	items []int
	data  layout.SlotData
}

func batchPages(job BatchJob) []batchPage {
	var pages []batchPage
	if !job.Sheet {
		for i := range job.Items {
			pages = append(pages, batchPage{items: []int{i}, data: layout.SingleCheck(&job.Items[i])})
		}
		return pages
	}
	for start := 0; start < len(job.Items); start += 3 {
		var slots [3]*layout.CheckData
		var idx []int
		for k := 0; k < 3 && start+k < len(job.Items); k++ {
			slots[k] = &job.Items[start+k]
			idx = append(idx, start+k)
		}
		pages = append(pages, batchPage{items: idx, data: layout.SheetChecks(slots[0], slots[1], slots[2])})
	}
	return pages
}

// PrintBatch prints items sequentially with a delay between pages (not after the last).
// With ContinueOnError false the first failure stops the batch and the results so far,
// including the failure, are returned.
func (o *Orchestrator) PrintBatch(ctx context.Context, job BatchJob) BatchResult {
	pages := batchPages(job)
	if job.Model == nil || len(pages) == 0 {
		return BatchResult{Error: fmt.Errorf("%w: batch has no model or no items", ErrInvalidJob)}
	}
	gen, jobID, err := o.begin(len(pages))
	if err != nil {
		return BatchResult{Error: err}
	}
	log := o.logger.With(zap.String("job_id", jobID))
	log.Info("batch started",
		zap.Int("items", len(job.Items)),
		zap.Int("pages", len(pages)),
		zap.Bool("continue_on_error", job.ContinueOnError))

	out := BatchResult{JobID: jobID, Summary: Summary{Total: len(pages)}}
	var firstErr error

	for i, page := range pages {
		if i > 0 {
			if err := o.sleep(ctx, o.batchDelay); err != nil {
				firstErr = err
				break
			}
		}
		if !o.advance(gen, i+1) {
			out.Cancelled = true
			break
		}
		if job.Progress != nil {
			job.Progress(Progress{Current: i + 1, Total: len(pages)})
		}

		itemErr := o.printPage(ctx, job, page, jobID)
		if o.superseded(gen) {
			out.Cancelled = true
			break
		}
		out.Results = append(out.Results, ItemResult{Index: i, Items: page.items, Success: itemErr == nil, Error: itemErr})
		if itemErr == nil {
			out.Summary.Succeeded++
			continue
		}
		out.Summary.Failed++
		log.Warn("batch item failed", zap.Int("page", i+1), zap.Error(itemErr))
		if firstErr == nil {
			firstErr = itemErr
		}
		if !job.ContinueOnError {
			break
		}
	}

	// Success 只反映失败页数；取消与 ctx 结束通过 Cancelled/Error 表达。
	out.Success = out.Summary.Failed == 0

	if out.Cancelled {
		o.release()
		out.Error = ErrCancelled
		log.Info("batch cancelled", zap.Int("printed", len(out.Results)))
		return out
	}

	// firstErr also covers a caller ctx that ended during the inter-item delay.
	out.Error = firstErr

	res := Result{Success: firstErr == nil, Error: firstErr}
	o.finish(gen, jobID, res, log)
	log.Info("batch finished",
		zap.Int("total", out.Summary.Total),
		zap.Int("succeeded", out.Summary.Succeeded),
		zap.Int("failed", out.Summary.Failed))
	return out
}

func (o *Orchestrator) printPage(ctx context.Context, job BatchJob, page batchPage, jobID string) error {
	doc, html, err := o.prepare(job.Model, page.data, job.Sheet)
	if err != nil {
		return err
	}
	if o.backend == nil {
		return ErrBackendUnavailable
	}
	res := o.backend.Print(ctx, o.printRequest(jobID, job.Model, doc, html, true, job.DeviceName))
	return resultError(res)
}

func (o *Orchestrator) superseded(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen != o.generation
}

// release drops the in-flight flag after a cancelled job without touching the status.
func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
}
