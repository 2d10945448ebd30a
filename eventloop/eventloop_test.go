package eventloop

import (
	"context"
	"errors"
	"testing"

	"neocr/config"
	"neocr/screenshot"
)

type fakeSelector struct {
	region    screenshot.Region
	cancelled bool
	err       error
	calls     int
}

func (f *fakeSelector) Select(context.Context) (screenshot.Region, bool, error) {
	f.calls++
	return f.region, f.cancelled, f.err
}

type notifyRecorder struct {
	titles   []string
	messages []string
}

func (n *notifyRecorder) notify(title, message string) {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
}

func newTestLoop() (*Loop, *fakeSelector, *notifyRecorder, *[]string) {
	l := New(&config.Config{OCRDeadlineSec: 5})
	sel := &fakeSelector{}
	rec := &notifyRecorder{}
	delivered := &[]string{}
	l.selector = sel
	l.notify = rec.notify
	l.deliver = func(text string) error {
		*delivered = append(*delivered, text)
		return nil
	}
	return l, sel, rec, delivered
}

func TestNewDefaults(t *testing.T) {
	if d := New(nil).Deadline().Seconds(); d != 20 {
		t.Errorf("nil config deadline = %vs, want 20s", d)
	}
	if d := New(&config.Config{OCRDeadlineSec: 7}).Deadline().Seconds(); d != 7 {
		t.Errorf("deadline = %vs, want 7s", d)
	}
}

func TestStartRequestBusy(t *testing.T) {
	l, sel, rec, _ := newTestLoop()
	l.busy = true
	l.startRequest(context.Background())
	if sel.calls != 0 {
		t.Error("busy loop must not open the selector")
	}
	if len(rec.messages) != 1 || rec.messages[0] != "Busy, please retry" {
		t.Errorf("notify = %v", rec.messages)
	}
}

func TestStartRequestCancelled(t *testing.T) {
	l, sel, rec, _ := newTestLoop()
	sel.cancelled = true
	l.startRequest(context.Background())
	if sel.calls != 1 {
		t.Error("selector should have been opened")
	}
	if l.busy {
		t.Error("cancelled selection must not mark the loop busy")
	}
	if len(rec.messages) != 0 {
		t.Errorf("cancellation should be silent, got %v", rec.messages)
	}
}

func TestStartRequestSelectorError(t *testing.T) {
	l, _, rec, _ := newTestLoop()
	l.selector = &fakeSelector{err: errors.New("no display")}
	l.startRequest(context.Background())
	if l.busy {
		t.Error("failed selection must not mark the loop busy")
	}
	if len(rec.messages) != 1 {
		t.Fatalf("expected one error notification, got %v", rec.messages)
	}
}

func TestHandleResultSuccess(t *testing.T) {
	l, _, rec, delivered := newTestLoop()
	l.busy = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.handleResult(result{text: "some text", cancel: cancel})
	if l.busy {
		t.Error("loop should be idle after a result")
	}
	if len(*delivered) != 1 || (*delivered)[0] != "some text" {
		t.Errorf("delivered = %v", *delivered)
	}
	if len(rec.titles) != 1 || rec.titles[0] != "Copied to clipboard" {
		t.Errorf("notify titles = %v", rec.titles)
	}
	if ctx.Err() == nil {
		t.Error("result handling should release the job context")
	}
}

func TestHandleResultError(t *testing.T) {
	l, _, rec, delivered := newTestLoop()
	l.busy = true
	l.handleResult(result{err: errors.New("model not found")})
	if len(*delivered) != 0 {
		t.Error("failed OCR must not touch the clipboard")
	}
	if len(rec.titles) != 1 || rec.titles[0] != "NeOCR error" {
		t.Errorf("notify titles = %v", rec.titles)
	}
}

func TestHandleResultDeliveryError(t *testing.T) {
	l, _, rec, _ := newTestLoop()
	l.deliver = func(string) error { return errors.New("clipboard unavailable") }
	l.handleResult(result{text: "x"})
	if len(rec.titles) != 1 || rec.titles[0] != "NeOCR error" {
		t.Errorf("notify titles = %v", rec.titles)
	}
}

func TestRequestCaptureNeverBlocks(t *testing.T) {
	l, _, _, _ := newTestLoop()
	for i := 0; i < 20; i++ {
		l.RequestCapture()
	}
}
