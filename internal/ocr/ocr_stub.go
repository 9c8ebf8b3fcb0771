//go:build !ocr

// Package ocr provides a local transcription capability for photographed
// pages.
//
// This is the stub used when the "ocr" build tag is not set; New returns
// ErrOCRNotEnabled. To enable local OCR, rebuild with:
//
//	go build -tags ocr
//
// which requires Tesseract to be installed on the system.
package ocr

import "errors"

// ErrOCRNotEnabled is returned when the binary was built without the "ocr"
// build tag.
var ErrOCRNotEnabled = errors.New("ocr: built without OCR support (rebuild with -tags ocr)")

// Client is a placeholder for the Tesseract client.
type Client struct{}

// New always fails in stub builds.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op in stub builds.
func (c *Client) Close() error { return nil }

// SetLanguage always fails in stub builds.
func (c *Client) SetLanguage(lang string) error { return ErrOCRNotEnabled }

// Transcribe always fails in stub builds.
func (c *Client) Transcribe(image []byte, mimeType string) (string, error) {
	return "", ErrOCRNotEnabled
}
