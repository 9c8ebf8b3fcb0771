package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
	"github.com/dmelton/folio/internal/logging"
)

// Tunable heuristics for PDF extraction. Both were tuned empirically on the
// kinds of text PDFs readers actually import and should not be treated as
// invariants across all font sizes or layouts.
const (
	// MaxPDFPages bounds worst-case extraction cost.
	MaxPDFPages = 1000

	// LineTolerance is the maximum vertical distance, in layout units,
	// between two runs still considered part of the same line.
	LineTolerance = 5.0

	// MinCharsPerPage is the average character count below which extracted
	// text is considered implausible for a text PDF.
	MinCharsPerPage = 10
)

// PDFFormat extracts text PDFs by grouping positioned text runs into lines.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Tag() format.Tag { return format.PDF }

func (f *PDFFormat) Extract(path string) (*document.Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &Error{
			Format: format.PDF,
			Reason: "could not open PDF; the file may be corrupt or password protected",
			Err:    err,
		}
	}
	defer file.Close()

	total := reader.NumPage()
	limit := total
	if limit > MaxPDFPages {
		logging.Warnf("pdf: capping extraction at %d of %d pages", MaxPDFPages, total)
		limit = MaxPDFPages
	}

	pages := make([][]string, 0, limit)
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, pageLines(page))
	}

	title := titleFromPath(path)
	return assemblePDF(title, limit, pages)
}

// assemblePDF joins per-page lines into a document, pages separated by a
// blank line. It fails when the text volume is implausibly small for the
// page count, which almost always means a scanned or encrypted source.
func assemblePDF(title string, pageCount int, pages [][]string) (*document.Document, error) {
	var sb strings.Builder
	chars := 0
	for _, lines := range pages {
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
			chars += len(line)
		}
		sb.WriteString("\n")
	}

	if pageCount > 0 && chars < pageCount*MinCharsPerPage {
		return nil, &Error{
			Format: format.PDF,
			Reason: fmt.Sprintf(
				"extracted only %d characters across %d pages; this PDF is likely scanned or encrypted. Try importing a photo of the page instead",
				chars, pageCount),
		}
	}

	paragraphs := document.SplitParagraphs(sb.String())
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.PDF, Reason: "PDF contains no extractable text"}
	}
	return document.New(title, "", paragraphs, format.PDF), nil
}

// pageLines reads a page's positioned text runs in content order and groups
// them into lines. The underlying parser panics on some malformed content
// streams; those pages yield no lines rather than aborting the import.
func pageLines(page pdf.Page) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warnf("pdf: skipping malformed page content: %v", r)
			lines = nil
		}
	}()
	content := page.Content()
	return groupLines(content.Text, LineTolerance)
}

// groupLines merges successive runs into a line while their vertical
// positions stay within tolerance; a larger delta starts a new line.
func groupLines(runs []pdf.Text, tolerance float64) []string {
	var lines []string
	var cur strings.Builder
	lastY := math.NaN()

	flush := func() {
		if line := strings.TrimSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for _, run := range runs {
		if run.S == "" {
			continue
		}
		if !math.IsNaN(lastY) && math.Abs(run.Y-lastY) > tolerance {
			flush()
		}
		cur.WriteString(run.S)
		lastY = run.Y
	}
	flush()

	return lines
}
