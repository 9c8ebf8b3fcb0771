package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dmelton/folio/internal/document"
)

// cellAspect approximates the width of one character cell as a fraction of
// the font size. It only needs to be consistent, not typographically exact.
const cellAspect = 0.6

// columnGutter is the cell width reserved between adjacent columns.
const columnGutter = 2

// CellMeasurer lays text into character cells: paragraphs are word-wrapped
// to the column width and counted in display cells. It is exact for
// terminal rendering and a serviceable approximation everywhere else.
type CellMeasurer struct {
	// ParagraphGap is the number of blank lines between paragraphs.
	ParagraphGap int
}

// NewCellMeasurer returns a measurer with a one-line paragraph gap.
func NewCellMeasurer() *CellMeasurer {
	return &CellMeasurer{ParagraphGap: 1}
}

// Measure implements Measurer. The extent unit is one text line.
func (m *CellMeasurer) Measure(doc *document.Document, cfg document.RenderConfig) (Extent, error) {
	if !cfg.Valid() {
		return Extent{}, ErrBadConfig
	}

	cols := m.Columns(cfg)
	lines := m.Lines(doc, cols)

	perColumn := m.LinesPerColumn(cfg)
	return Extent{
		Content: float64(len(lines)),
		Page:    float64(perColumn * cfg.ColumnCount),
	}, nil
}

// Columns returns the usable width of one column in character cells.
func (m *CellMeasurer) Columns(cfg document.RenderConfig) int {
	cellWidth := cfg.FontSizePt * cellAspect
	colWidth := cfg.ViewportWidth/float64(cfg.ColumnCount) - float64(columnGutter)*cfg.FontSizePt*cellAspect
	cols := int(colWidth / cellWidth)
	if cols < 1 {
		cols = 1
	}
	return cols
}

// LinesPerColumn returns how many text lines fit in one column.
func (m *CellMeasurer) LinesPerColumn(cfg document.RenderConfig) int {
	lineHeight := cfg.FontSizePt * cfg.LineHeightMultiplier
	n := int(cfg.ViewportHeight / lineHeight)
	if n < 1 {
		n = 1
	}
	return n
}

// referenceFontPt anchors terminal cell geometry: the viewport implied by a
// cell grid is sized at this font, and other font sizes zoom within it.
const referenceFontPt = 10.0

// TerminalConfig maps a terminal cell grid onto a render configuration.
// The viewport is fixed by the grid; fontPt larger than the reference font
// fits fewer cells and therefore produces more pages.
func TerminalConfig(widthCells, heightCells int, fontPt float64) document.RenderConfig {
	return document.RenderConfig{
		FontSizePt:           fontPt,
		LineHeightMultiplier: 1,
		ColumnCount:          1,
		ViewportWidth:        float64(widthCells+columnGutter) * referenceFontPt * cellAspect,
		ViewportHeight:       float64(heightCells) * referenceFontPt,
	}
}

// Lines word-wraps the document to the given cell width and returns the
// resulting display lines, including paragraph gap lines. The same slice,
// cut into LinesPerColumn*ColumnCount chunks, is what a page shows.
func (m *CellMeasurer) Lines(doc *document.Document, width int) []string {
	if doc.Empty() {
		return nil
	}
	if width < 1 {
		width = 1
	}

	gap := m.ParagraphGap
	var out []string
	for i, para := range doc.Paragraphs {
		if i > 0 {
			for g := 0; g < gap; g++ {
				out = append(out, "")
			}
		}
		wrapped := wordwrap.String(para, width)
		for _, line := range strings.Split(wrapped, "\n") {
			out = append(out, line)
			// wordwrap does not break words longer than the limit; count
			// the overflow cells as extra lines so the extent stays honest.
			if over := runewidth.StringWidth(line); over > width {
				extra := (over - 1) / width
				for e := 0; e < extra; e++ {
					out = append(out, "")
				}
			}
		}
	}
	return out
}
