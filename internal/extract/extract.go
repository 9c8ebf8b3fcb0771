// Package extract converts raw files into canonical documents. One
// extractor is registered per supported format tag; extraction failures
// carry a human-readable reason that is shown to the reader as-is.
package extract

import (
	"fmt"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
)

// Error is a terminal extraction failure for a single import attempt.
// Reason is the specific, user-facing explanation.
type Error struct {
	Format format.Tag
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Extractor converts a file of one format into a Document.
type Extractor interface {
	Tag() format.Tag
	Extract(path string) (*document.Document, error)
}

var registry = map[format.Tag]Extractor{}

// Register adds an extractor to the registry. Later registrations for the
// same tag replace earlier ones.
func Register(e Extractor) {
	registry[e.Tag()] = e
}

// File extracts the document at path using the extractor registered for
// tag. The tag comes from format.Detect; passing format.Unsupported is a
// caller bug and yields an Error.
func File(path string, tag format.Tag) (*document.Document, error) {
	e, ok := registry[tag]
	if !ok {
		return nil, &Error{Format: tag, Reason: "no extractor registered for this format"}
	}
	return e.Extract(path)
}
