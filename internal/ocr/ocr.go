//go:build ocr

// Package ocr provides a local transcription capability for photographed
// pages, wrapping the Tesseract engine via gosseract. It requires Tesseract
// to be installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Builds without the "ocr" tag get a stub whose constructor fails, and
// image imports report that no transcription service is configured.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract and satisfies extract.Transcriber.
type Client struct {
	client *gosseract.Client
}

// New creates a transcription client. Close it when no longer needed.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases Tesseract resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the recognition language(s), "+"-separated for multiple
// (e.g. "eng+fra"). Default is "eng".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// Transcribe runs OCR over the image bytes and returns the recognized text.
// The mimeType argument is accepted for interface compatibility; Tesseract
// detects the image codec itself.
func (c *Client) Transcribe(image []byte, mimeType string) (string, error) {
	if err := c.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
