package extract

import (
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
)

// HTMLFormat extracts standalone HTML files.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Tag() format.Tag { return format.HTML }

func (f *HTMLFormat) Extract(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Format: format.HTML, Reason: "could not read file", Err: err}
	}

	text, err := textFromHTML(data)
	if err != nil {
		return nil, &Error{Format: format.HTML, Reason: "could not parse HTML", Err: err}
	}
	paragraphs := document.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, &Error{Format: format.HTML, Reason: "page contains no readable text"}
	}

	title := htmlTitle(data)
	if title == "" {
		title = titleFromPath(path)
	}
	return document.New(title, "", paragraphs, format.HTML), nil
}

// skippedNodes are non-content elements removed before text extraction.
var skippedNodes = map[string]bool{
	"script":   true,
	"style":    true,
	"link":     true,
	"meta":     true,
	"noscript": true,
	"head":     true,
}

// blockNodes end the current line when closed, so that sibling block
// elements become separate paragraphs after blank-line splitting.
var blockNodes = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true, "br": true,
	"table": true, "ul": true, "ol": true, "figure": true, "figcaption": true,
}

// textFromHTML parses markup and returns its rendered text with block
// elements separated by blank lines. Scripts, styles and link/meta tags are
// stripped first.
func textFromHTML(data []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedNodes[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockNodes[n.Data] {
			sb.WriteString("\n\n")
		}
	}
	walk(doc)
	return sb.String(), nil
}

// htmlTitle returns the contents of the <title> element, or "".
func htmlTitle(data []byte) string {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
