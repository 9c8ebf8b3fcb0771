package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
)

// PlainFormat extracts plain text files.
type PlainFormat struct{}

func init() {
	Register(&PlainFormat{})
	Register(&MarkdownFormat{})
}

func (f *PlainFormat) Tag() format.Tag { return format.Plain }

func (f *PlainFormat) Extract(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Format: format.Plain, Reason: "could not read file", Err: err}
	}
	paragraphs := document.SplitParagraphs(string(data))
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.Plain, Reason: "file contains no text"}
	}
	return document.New(titleFromPath(path), "", paragraphs, format.Plain), nil
}

// MarkdownFormat extracts Markdown files. The body text is kept verbatim;
// only whitespace is normalized. The first level-1 heading, when present,
// becomes the document title.
type MarkdownFormat struct{}

func (f *MarkdownFormat) Tag() format.Tag { return format.Markdown }

func (f *MarkdownFormat) Extract(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Format: format.Markdown, Reason: "could not read file", Err: err}
	}
	paragraphs := document.SplitParagraphs(string(data))
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.Markdown, Reason: "file contains no text"}
	}

	title := markdownTitle(data)
	if title == "" {
		title = titleFromPath(path)
	}
	return document.New(title, "", paragraphs, format.Markdown), nil
}

// markdownTitle returns the text of the first level-1 heading, or "".
func markdownTitle(src []byte) string {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		lines := h.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(src))
		}
		title = strings.TrimSpace(sb.String())
		return ast.WalkStop, nil
	})
	return title
}

// titleFromPath derives a fallback title from the file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
