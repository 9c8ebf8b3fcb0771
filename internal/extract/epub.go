package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
	"github.com/dmelton/folio/internal/logging"
)

// Placeholder metadata used when an EPUB carries none.
const (
	untitledBook  = "Untitled Book"
	unknownAuthor = "Unknown Author"
)

// EPUBFormat extracts EPUB containers in spine order. A single section
// failing to extract is logged and skipped; it never aborts the document.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Tag() format.Tag { return format.EPUB }

func (f *EPUBFormat) Extract(path string) (*document.Document, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, &Error{
			Format: format.EPUB,
			Reason: "could not open EPUB; the file may be corrupt or DRM protected",
			Err:    err,
		}
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, &Error{Format: format.EPUB, Reason: "EPUB container has no rootfile"}
	}
	book := rc.Rootfiles[0]

	title := strings.TrimSpace(book.Title)
	if title == "" {
		title = untitledBook
	}
	author := strings.TrimSpace(book.Creator)
	if author == "" {
		author = unknownAuthor
	}

	var sb strings.Builder
	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			logging.Warnf("epub: skipping spine entry %d: unresolved manifest item", i+1)
			continue
		}
		text, err := sectionText(ref.Item)
		if err != nil {
			logging.Warnf("epub: skipping section %d (%s): %v", i+1, ref.Item.HREF, err)
			continue
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	paragraphs := document.SplitParagraphs(sb.String())
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.EPUB, Reason: "EPUB contains no extractable text"}
	}
	return document.New(title, author, paragraphs, format.EPUB), nil
}

// sectionText extracts one spine section's rendered text. Parser panics on
// malformed sections are converted to errors so the caller can skip them.
func sectionText(item *epub.Item) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("section panicked: %v", r)
		}
	}()

	r, err := item.Open()
	if err != nil {
		return "", fmt.Errorf("open section: %w", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return "", fmt.Errorf("read section: %w", err)
	}

	text, err = textFromHTML(data)
	if err != nil {
		return "", fmt.Errorf("parse section: %w", err)
	}
	return strings.TrimSpace(text), nil
}
