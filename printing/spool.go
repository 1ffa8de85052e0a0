package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// SpoolRequest hands a finished PDF to the operating system print queue.
type SpoolRequest struct {
	JobID      string
	Title      string
	DeviceName string
	Silent     bool
	PDF        []byte
}

// Spooler delivers PDF bytes to a printer.
type Spooler interface {
	Spool(ctx context.Context, req SpoolRequest) error
}

// LPSpooler submits jobs through the CUPS `lp` command, reading the PDF from stdin.
// lp never shows a dialog, so every job is spooled silently.
type LPSpooler struct {
	// Command defaults to "lp".
	Command string
	Logger  *zap.Logger
}

// Spool runs `lp [-d device] [-t title] -` with the PDF on stdin.
func (s LPSpooler) Spool(ctx context.Context, req SpoolRequest) error {
	if len(req.PDF) == 0 {
		return NewBackendError(ErrCodeInvalidInput, "nothing to spool", nil)
	}
	cmd := s.Command
	if cmd == "" {
		cmd = "lp"
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		return NewBackendError(ErrCodeUnavailable, "print spooler not found", err)
	}

	c := exec.CommandContext(ctx, path, lpArgs(req)...)
	c.Stdin = bytes.NewReader(req.PDF)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "lp failed"
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return NewBackendError(ErrCodeCancelled, "spooling was cancelled", err)
		}
		return NewBackendError(ErrCodeSpoolFailed, msg, err)
	}
	if s.Logger != nil {
		s.Logger.Info("job spooled",
			zap.String("job_id", req.JobID),
			zap.String("device", req.DeviceName),
			zap.String("lp", strings.TrimSpace(string(out))))
	}
	return nil
}

func lpArgs(req SpoolRequest) []string {
	var args []string
	if req.DeviceName != "" {
		args = append(args, "-d", req.DeviceName)
	}
	if req.Title != "" {
		args = append(args, "-t", req.Title)
	}
	return append(args, "-")
}

// SpoolerFunc adapts a function to Spooler.
type SpoolerFunc func(ctx context.Context, req SpoolRequest) error

func (f SpoolerFunc) Spool(ctx context.Context, req SpoolRequest) error { return f(ctx, req) }

// ErrNoSpooler is returned by backends that were built without a Spooler.
var ErrNoSpooler = fmt.Errorf("%w: no spooler configured", ErrBackendUnavailable)
