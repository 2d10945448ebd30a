package notification

// Show displays a transient desktop notification. The body is truncated so
// huge captures do not flood the notification daemon.
func Show(title, body string) {
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	notify(title, body)
}

// ShowOCRResult displays the extracted text.
func ShowOCRResult(text string) {
	Show("neocr: text captured", text)
}
