// Package gui owns the full-screen selection overlay. The overlay paints the
// freshly captured screen, feeds pointer/keyboard input into a
// selector.Session and reports that session's single outcome.
package gui

import (
	"context"
	"fmt"
	"log"

	"neocr/screenshot"
)

// Selector defines a synchronous region-selection API.
// Select blocks the caller for the duration of one modal session and returns
// (region, cancelled, error). If cancelled is true, region is undefined and
// err is nil. A non-nil error means the overlay could not even start;
// callers must treat that differently from a user cancellation.
type Selector interface {
	Select(ctx context.Context) (screenshot.Region, bool, error)
}

// NewSelector returns the platform implementation. Non-Windows builds get a
// stub that fails with an initialization error.
func NewSelector() Selector {
	return platformSelector{}
}

// StartRegionSelection runs one selection session and validates the result.
func StartRegionSelection(ctx context.Context) (screenshot.Region, bool, error) {
	log.Printf("Starting interactive region selection...")

	region, cancelled, err := NewSelector().Select(ctx)
	if err != nil {
		log.Printf("Interactive region selection failed: %v", err)
		return screenshot.Region{}, false, err
	}
	if cancelled {
		log.Printf("Region selection cancelled by user")
		return screenshot.Region{}, true, nil
	}

	if region.Width <= 0 || region.Height <= 0 {
		// The selector state machine demotes zero-area drags to cancellation,
		// so reaching this is a bug in the platform overlay.
		return screenshot.Region{}, false, fmt.Errorf("selector produced invalid region %+v", region)
	}

	log.Printf("Region selected: %+v", region)
	return region, false, nil
}
