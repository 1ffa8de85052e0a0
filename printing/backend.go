package printing

import (
	"context"

	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
)

// Margins in millimeters.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// MarginsFromPlacement converts the check block offset on the page into print margins.
func MarginsFromPlacement(p layout.Placement) Margins {
	return Margins{
		Top:  layout.InToMm(nonNegative(p.Y)),
		Left: layout.InToMm(nonNegative(p.X)),
	}
}

// PageSize in millimeters.
type PageSize struct {
	Width  float64
	Height float64
}

// PDFOptions are passed through to the backend untouched.
type PDFOptions struct {
	PrintBackground bool
	Landscape       bool
}

// PrintRequest asks a backend to send a document to a device.
type PrintRequest struct {
	JobID    string
	Document *document.Document
	// HTML is the document rendered by renderer/html; backends that print HTML use it directly.
	HTML []byte
	// Silent suppresses the system print dialog.
	Silent     bool
	DeviceName string
	// PageSize is the nominal paper size; Margins place the check block on it.
	PageSize PageSize
	Margins  Margins
}

// PDFRequest asks a backend to render a document to PDF bytes.
type PDFRequest struct {
	JobID      string
	Document   *document.Document
	HTML       []byte
	PageSizeMm PageSize
	Options    PDFOptions
}

// Result is the single-shot outcome of a backend call.
type Result struct {
	Success bool
	Error   error
	Data    []byte
}

// Backend is the external print/PDF collaborator. Calls are single-shot; retries are never implied.
type Backend interface {
	Print(ctx context.Context, req PrintRequest) Result
	RenderToPDF(ctx context.Context, req PDFRequest) Result
}

// Previewer opens a preview window for a document.
type Previewer interface {
	Preview(ctx context.Context, doc *document.Document, html []byte) error
}

// BackendFunc adapts plain functions to Backend. Nil functions report ErrBackendUnavailable.
type BackendFunc struct {
	PrintFunc       func(ctx context.Context, req PrintRequest) Result
	RenderToPDFFunc func(ctx context.Context, req PDFRequest) Result
}

func (f BackendFunc) Print(ctx context.Context, req PrintRequest) Result {
	if f.PrintFunc == nil {
		return Result{Error: ErrBackendUnavailable}
	}
	return f.PrintFunc(ctx, req)
}

func (f BackendFunc) RenderToPDF(ctx context.Context, req PDFRequest) Result {
	if f.RenderToPDFFunc == nil {
		return Result{Error: ErrBackendUnavailable}
	}
	return f.RenderToPDFFunc(ctx, req)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
