package ocr

import (
	"fmt"
	"log"
	"os"

	"neocr/llm"
	"neocr/screenshot"
)

// Recognize captures a screen region and runs it through the local vision
// model.
func Recognize(region screenshot.Region) (string, error) {
	log.Printf("Capturing region: X=%d Y=%d Width=%d Height=%d", region.X, region.Y, region.Width, region.Height)

	imageData, err := screenshot.CaptureRegion(region)
	if err != nil {
		return "", err
	}

	// Keep a copy of the capture when debugging recognition quality.
	if os.Getenv("NEOCR_DEBUG_SAVE_IMAGES") == "true" {
		debugFilename := fmt.Sprintf("debug_captured_region_%dx%d.png", region.Width, region.Height)
		if err := os.WriteFile(debugFilename, imageData, 0600); err != nil {
			log.Printf("Warning: could not save debug image: %v", err)
		} else {
			log.Printf("Saved captured region to %s (%d bytes)", debugFilename, len(imageData))
		}
	}

	return llm.QueryVision(imageData)
}

// RecognizeImage runs OCR on already-captured PNG data.
func RecognizeImage(imageData []byte) (string, error) {
	return llm.QueryVision(imageData)
}
