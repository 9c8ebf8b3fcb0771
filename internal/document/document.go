// Package document defines the canonical in-memory representation of an
// imported book: a normalized paragraph sequence plus minimal metadata,
// independent of the source format.
package document

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dmelton/folio/internal/format"
)

// Document is the canonical form of an imported file. It is immutable once
// created; re-importing a file produces a new Document.
type Document struct {
	ID           string
	Title        string
	Author       string
	Paragraphs   []string
	SourceFormat format.Tag

	// RawAsset holds the original image bytes for photographed pages so the
	// viewer can show the photo beside the transcription. Nil otherwise.
	RawAsset []byte
}

// New builds a Document with a fresh id. Paragraphs are normalized: trimmed,
// empties dropped, order preserved.
func New(title, author string, paragraphs []string, source format.Tag) *Document {
	return &Document{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(title),
		Author:       strings.TrimSpace(author),
		Paragraphs:   Normalize(paragraphs),
		SourceFormat: source,
	}
}

// Empty reports whether the document has no readable text.
func (d *Document) Empty() bool {
	return d == nil || len(d.Paragraphs) == 0
}

// Text returns the full document text with paragraphs separated by blank
// lines.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs, "\n\n")
}

// RenderConfig holds the layout-affecting reading settings. Every mutation
// invalidates previously computed page boundaries.
type RenderConfig struct {
	FontSizePt           float64
	LineHeightMultiplier float64
	ColumnCount          int
	ViewportWidth        float64
	ViewportHeight       float64
}

// DefaultRenderConfig returns the reader's initial settings.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		FontSizePt:           19,
		LineHeightMultiplier: 1.8,
		ColumnCount:          1,
		ViewportWidth:        850,
		ViewportHeight:       1100,
	}
}

// Valid reports whether the configuration can produce a layout.
func (c RenderConfig) Valid() bool {
	return c.FontSizePt > 0 &&
		c.LineHeightMultiplier > 0 &&
		c.ColumnCount >= 1 &&
		c.ViewportWidth > 0 &&
		c.ViewportHeight > 0
}
