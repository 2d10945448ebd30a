//go:build linux

package notification

import (
	"log"
	"os/exec"
	"time"
)

// notify shells out to notify-send, the same mechanism desktop OCR users
// already have running (dunst etc). Silently a no-op when it is missing.
func notify(title, body string) {
	cmd := exec.Command("notify-send", title, body)
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		log.Printf("notify-send unavailable: %v", err)
		return
	}
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			log.Printf("notify-send failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		log.Printf("notify-send timed out")
	}
}

// ShowBlockingError reports a fatal startup problem. There is no modal dialog
// on this platform; the caller also writes the error to stderr.
func ShowBlockingError(title, message string) {
	notify(title, message)
	log.Printf("%s: %s", title, message)
}
