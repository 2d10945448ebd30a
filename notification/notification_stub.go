//go:build !linux

package notification

import "log"

func notify(title, body string) {
	log.Printf("%s: %s", title, body)
}

// ShowBlockingError logs a blocking error message on platforms without a
// native notification path.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}
