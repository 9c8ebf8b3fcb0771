// Package layout measures how much of a document fits on one page for a
// given render configuration. The measurement itself sits behind the
// Measurer port so the pagination controller never depends on a concrete
// text-shaping facility.
package layout

import (
	"errors"
	"math"

	"github.com/dmelton/folio/internal/document"
)

// ErrBadConfig indicates a render configuration that cannot produce a
// layout (zero viewport, no columns, and so on).
var ErrBadConfig = errors.New("layout: invalid render configuration")

// Extent reports measured sizes in abstract layout units. Only the ratio
// of Content to Page matters to the caller.
type Extent struct {
	Content float64 // total laid-out content extent
	Page    float64 // extent available on a single page
}

// Measurer lays a document into a virtual multi-column flow and reports
// its extent. Measurements must be deterministic for fixed inputs.
type Measurer interface {
	Measure(doc *document.Document, cfg document.RenderConfig) (Extent, error)
}

// PageCount derives the page count from an extent: ceil(content/page),
// never less than one.
func PageCount(e Extent) int {
	if e.Page <= 0 || e.Content <= 0 {
		return 1
	}
	n := int(math.Ceil(e.Content / e.Page))
	if n < 1 {
		return 1
	}
	return n
}
