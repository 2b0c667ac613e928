package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

// forceWindow is the time window for a second Ctrl+C to force an exit.
const forceWindow = 2 * time.Second

const (
	cleanupMessage = "\nInterrupted, removing temporary files. Press Ctrl+C again to quit now."
	forceMessage   = "\nAborted."
)

// Handler turns SIGINT/SIGTERM into context cancellation.
// The first signal cancels the context so running ffmpeg jobs stop and
// their temporary segments are removed. A second signal within the
// window exits immediately without waiting for cleanup.
type Handler struct {
	mu          sync.Mutex
	first       time.Time
	interrupted bool
	forced      bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}

	exitFunc func(int)
	nowFunc  func() time.Time
	stderr   io.Writer
	logger   logrus.FieldLogger
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	NowFunc  func() time.Time
	// Stderr must be safe for concurrent writes.
	Stderr io.Writer
	Logger logrus.FieldLogger
}

// NewHandler creates a handler that listens for SIGINT/SIGTERM.
// The returned context is canceled on the first signal.
func NewHandler(parent context.Context, logger logrus.FieldLogger) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return NewHandlerWithOptions(parent, Options{SigCh: sigCh, Logger: logger})
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancel:   cancel,
		done:     make(chan struct{}),
		exitFunc: opts.ExitFunc,
		nowFunc:  opts.NowFunc,
		stderr:   opts.Stderr,
		logger:   opts.Logger,
	}
	if h.exitFunc == nil {
		h.exitFunc = os.Exit
	}
	if h.nowFunc == nil {
		h.nowFunc = time.Now
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}
	if h.logger == nil {
		h.logger = logrus.StandardLogger()
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handle(sig) {
				return
			}
		}
	}
}

// handle processes one signal and reports whether listening should stop.
func (h *Handler) handle(sig os.Signal) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}
	now := h.nowFunc()

	if !h.interrupted {
		h.interrupted = true
		h.first = now
		h.mu.Unlock()

		h.logger.WithField("signal", sig).Info("interrupt received, canceling")
		_, _ = fmt.Fprintln(h.stderr, cleanupMessage)
		h.cancel()
		return false
	}

	if now.Sub(h.first) > forceWindow {
		// Too late to count as a double press; restart the window.
		h.first = now
		h.mu.Unlock()
		return false
	}

	h.forced = true
	h.mu.Unlock()

	h.logger.WithField("signal", sig).Warn("second interrupt, exiting without cleanup")
	_, _ = fmt.Fprintln(h.stderr, forceMessage)
	h.exitFunc(ExitInterrupt)
	return true
}

// WasInterrupted reports whether at least one signal was received.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// WasForced reports whether a second signal forced an exit.
func (h *Handler) WasForced() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.forced
}

// Stop releases the signal handlers. Safe to call more than once.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
	h.cancel()
}
