// Package tray puts the resident capture tool in the system tray with a
// Capture and a Quit entry, and exposes the tooltip for status updates.
package tray

import (
	"log"

	"github.com/getlantern/systray"
)

// Config wires tray menu actions back into the application.
type Config struct {
	Tooltip   string
	OnCapture func()
	OnExit    func()
}

var ready = make(chan struct{})

// Run blocks until Quit is called. It must run on the main goroutine on
// platforms where the tray needs the main thread.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() {
		if cfg.OnExit != nil {
			cfg.OnExit()
		}
	})
}

func onReady(cfg Config) {
	systray.SetIcon(iconBytes())
	systray.SetTitle("NeOCR")
	tooltip := cfg.Tooltip
	if tooltip == "" {
		tooltip = "NeOCR"
	}
	systray.SetTooltip(tooltip)

	mCapture := systray.AddMenuItem("Capture Region", "Select a screen region and extract its text")
	mQuit := systray.AddMenuItem("Quit", "Exit")

	close(ready)

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				log.Printf("Tray: capture requested")
				if cfg.OnCapture != nil {
					cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// UpdateTooltip changes the hover text, used to surface busy/ready state.
// Safe to call before the tray is ready; the update is then dropped.
func UpdateTooltip(text string) {
	select {
	case <-ready:
		systray.SetTooltip(text)
	default:
	}
}

// Quit asks the tray loop to exit, unblocking Run.
func Quit() {
	systray.Quit()
}
