// Package session runs one capture session: select a region, recognize its
// text under a deadline, and deliver the result to a target.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"neocr/clipboard"
	"neocr/screenshot"
	"neocr/worker"
)

// ErrSelectionCancelled reports that the user dismissed the region selector.
// Callers treat it as a no-op, not a failure.
var ErrSelectionCancelled = errors.New("selection cancelled")

type RegionSelectorFunc func(ctx context.Context) (region screenshot.Region, cancelled bool, err error)

type RecognizeFunc func(ctx context.Context, region screenshot.Region) (string, error)

// ResultTarget receives the session outcome.
type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

type Options struct {
	Deadline     time.Duration
	SelectRegion RegionSelectorFunc
	Recognize    RecognizeFunc
	Target       ResultTarget
}

type Result struct {
	Text string
}

// Execute runs the select-recognize-deliver pipeline. Selection cancellation
// is returned as ErrSelectionCancelled after notifying the target.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}

	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}
	if cancelled {
		_ = opts.Target.OnFailure(ErrSelectionCancelled)
		return Result{}, ErrSelectionCancelled
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 20 * time.Second
	}

	recognize := opts.Recognize
	if recognize == nil {
		recognize = worker.RecognizeWithContext
	}

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	text, err := recognize(jobCtx, region)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	if err := opts.Target.OnSuccess(text); err != nil {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	return Result{Text: text}, nil
}

// ClipboardTarget copies recognized text to the system clipboard.
type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(text string) error {
	return clipboard.Write(text)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

// StdoutTarget prints recognized text, for scripting pipelines.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}
