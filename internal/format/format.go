// Package format detects which of the supported document formats a file
// contains. Detection is extension-first with a declared MIME type as
// fallback; Sniff inspects magic bytes when neither is conclusive.
package format

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// Tag identifies a supported document format.
type Tag int

const (
	// Unsupported indicates an unrecognized format.
	Unsupported Tag = iota
	// Plain indicates a plain text document.
	Plain
	// Markdown indicates a Markdown document.
	Markdown
	// HTML indicates an HTML document.
	HTML
	// PDF indicates a PDF document.
	PDF
	// EPUB indicates an EPUB container.
	EPUB
	// Image indicates a raster image of a page.
	Image
)

// ErrUnsupported is returned when a file matches none of the supported
// formats. Callers must not attempt extraction after receiving it.
var ErrUnsupported = errors.New("format: unsupported file format")

// String returns the display name of the tag.
func (t Tag) String() string {
	switch t {
	case Plain:
		return "Plain"
	case Markdown:
		return "Markdown"
	case HTML:
		return "HTML"
	case PDF:
		return "PDF"
	case EPUB:
		return "EPUB"
	case Image:
		return "Image"
	default:
		return "Unsupported"
	}
}

// Detect determines the format of a file from its name, falling back to
// the declared MIME type when the extension is missing or unrecognized.
func Detect(filename, declaredMIME string) (Tag, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return Plain, nil
	case ".md", ".markdown":
		return Markdown, nil
	case ".htm", ".html":
		return HTML, nil
	case ".pdf":
		return PDF, nil
	case ".epub":
		return EPUB, nil
	case ".jpg", ".jpeg", ".png", ".webp":
		return Image, nil
	}
	if t := fromMIME(declaredMIME); t != Unsupported {
		return t, nil
	}
	return Unsupported, ErrUnsupported
}

func fromMIME(mimeType string) Tag {
	// Strip parameters such as "; charset=utf-8".
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = mimeType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "text/plain":
		return Plain
	case "text/markdown":
		return Markdown
	case "text/html", "application/xhtml+xml":
		return HTML
	case "application/pdf":
		return PDF
	case "application/epub+zip":
		return EPUB
	case "image/jpeg", "image/png", "image/webp":
		return Image
	}
	return Unsupported
}

// Sniff checks magic bytes to determine the format. It is used when the
// extension and declared MIME type disagree or are absent. Returns
// Unsupported if the content cannot be identified.
func Sniff(data []byte) Tag {
	if len(data) < 4 {
		return Unsupported
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}

	// ZIP magic. An EPUB is a ZIP whose first entry is an uncompressed
	// "mimetype" file, so the container MIME string appears near the start.
	if bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		head := data
		if len(head) > 128 {
			head = head[:128]
		}
		if bytes.Contains(head, []byte("application/epub+zip")) {
			return EPUB
		}
		return Unsupported
	}

	if bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		return Image
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return Image
	}
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return Image
	}

	if sniffHTML(data) {
		return HTML
	}

	return Unsupported
}

func sniffHTML(data []byte) bool {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	s := strings.ToLower(string(bytes.TrimLeft(head, " \t\r\n\xef\xbb\xbf")))
	return strings.HasPrefix(s, "<!doctype html") ||
		strings.HasPrefix(s, "<html") ||
		strings.HasPrefix(s, "<?xml")
}
