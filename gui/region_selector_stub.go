//go:build !windows

package gui

import (
	"context"
	"fmt"

	"neocr/screenshot"
)

type platformSelector struct{}

// Select fails on platforms without an overlay implementation. This is an
// initialization error, not a cancellation: callers must be able to tell
// "user declined" apart from "could not even start selecting".
func (platformSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	return screenshot.Region{}, false, fmt.Errorf("interactive region selection not implemented for this platform")
}
