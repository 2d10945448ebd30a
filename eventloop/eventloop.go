// Package eventloop coordinates resident mode: hotkey and tray capture
// requests come in as events, OCR runs on the worker pool, and results are
// delivered back on the loop goroutine.
package eventloop

import (
	"context"
	"log"
	"time"

	"neocr/config"
	"neocr/gui"
	"neocr/hotkey"
	"neocr/logutil"
	"neocr/notification"
	"neocr/session"
	"neocr/tray"
	"neocr/worker"
)

// Loop is the single-threaded coordinator for hotkey and tray capture flows.
type Loop struct {
	selector       gui.Selector
	pool           *worker.Pool
	busy           bool
	results        chan result
	captureCh      chan struct{}
	defaultTooltip string
	deadline       time.Duration

	// Delivery hooks, replaceable in tests.
	deliver func(text string) error
	notify  func(title, message string)
}

type result struct {
	text   string
	err    error
	cancel context.CancelFunc
}

// New creates an event loop with defaults from cfg. A nil cfg or a
// non-positive deadline falls back to 20 seconds.
func New(cfg *config.Config) *Loop {
	deadlineSec := 20
	if cfg != nil && cfg.OCRDeadlineSec > 0 {
		deadlineSec = cfg.OCRDeadlineSec
	}
	return &Loop{
		selector:       gui.NewSelector(),
		pool:           worker.New(0),
		results:        make(chan result, 1),
		captureCh:      make(chan struct{}, 4),
		defaultTooltip: "NeOCR",
		deadline:       time.Duration(deadlineSec) * time.Second,
		deliver:        session.ClipboardTarget{}.OnSuccess,
		notify:         notification.Show,
	}
}

// SetDefaultTooltip sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// Deadline returns the configured OCR deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }

// RequestCapture posts a capture event into the loop. Used by the tray menu;
// drops the event when the queue is saturated.
func (l *Loop) RequestCapture() {
	select {
	case l.captureCh <- struct{}{}:
	default:
	}
}

// StartHotkey registers a global hotkey that posts capture events.
func (l *Loop) StartHotkey(combo string) {
	if combo == "" {
		return
	}
	// hotkey callbacks run on the hook goroutine; RequestCapture is the
	// non-blocking handoff into this loop.
	hotkeyListen(combo, l.RequestCapture)
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("NeOCR: recognizing...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Run processes capture events and OCR results until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.startRequest(ctx)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) startRequest(ctx context.Context) {
	if l.busy {
		log.Printf("Capture request ignored: previous OCR still running")
		l.notify("NeOCR", "Busy, please retry")
		return
	}

	region, cancelled, err := l.selector.Select(ctx)
	if err != nil {
		log.Printf("Region selection failed: %v", err)
		l.notify("NeOCR", "Selection error: "+err.Error())
		return
	}
	if cancelled {
		log.Printf("Region selection cancelled")
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, region, func(text string, err error) {
		l.results <- result{text: text, err: err, cancel: cancel}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		l.notify("NeOCR", "Busy, please retry")
	}
}

func (l *Loop) handleResult(res result) {
	defer func() {
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
	}()

	if res.err != nil {
		log.Printf("OCR failed: %v", res.err)
		l.notify("NeOCR error", res.err.Error())
		return
	}

	if err := l.deliver(res.text); err != nil {
		log.Printf("Clipboard delivery failed: %v", err)
		l.notify("NeOCR error", "Clipboard error: "+err.Error())
		return
	}

	log.Printf("OCR result copied to clipboard: %s", logutil.Sanitize(res.text))
	l.notify("Copied to clipboard", res.text)
}

// Indirection over the hotkey package so tests can run without a display.
var hotkeyListen = hotkey.Listen
