package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
)

// Transcriber turns a photographed page into plain text. Implementations
// live outside the ingestion core: internal/ocr for local Tesseract, or a
// remote vision service.
type Transcriber interface {
	Transcribe(image []byte, mimeType string) (string, error)
}

// ImageFormat packages a transcribed photograph as a document, keeping the
// original image bytes for side-by-side display.
type ImageFormat struct {
	Transcriber Transcriber
}

func init() {
	Register(&ImageFormat{})
}

// UseTranscriber wires a transcription capability into the registered image
// extractor. Without one, image imports fail with a clear reason.
func UseTranscriber(t Transcriber) {
	Register(&ImageFormat{Transcriber: t})
}

func (f *ImageFormat) Tag() format.Tag { return format.Image }

func (f *ImageFormat) Extract(path string) (*document.Document, error) {
	if f.Transcriber == nil {
		return nil, &Error{Format: format.Image, Reason: "no transcription service is configured"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Format: format.Image, Reason: "could not read image", Err: err}
	}

	text, err := f.Transcriber.Transcribe(data, imageMIME(path))
	if err != nil {
		return nil, &Error{Format: format.Image, Reason: "transcription failed", Err: err}
	}
	paragraphs := document.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.Image, Reason: "no text was recognized in the image"}
	}

	doc := document.New("Photo: "+titleFromPath(path), "Transcribed", paragraphs, format.Image)
	doc.RawAsset = data
	return doc, nil
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
