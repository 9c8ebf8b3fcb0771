package extract

import (
	"strings"
	"testing"

	"github.com/dmelton/folio/internal/format"
)

func TestHTMLExtract(t *testing.T) {
	markup := `<!DOCTYPE html>
<html>
<head>
  <title>A Sample Page</title>
  <style>body { color: red; }</style>
  <script>console.log("ignore me");</script>
</head>
<body>
  <p>First paragraph.</p>
  <p>Second <b>bold</b> paragraph.</p>
  <div>Third block.</div>
</body>
</html>`

	path := writeFile(t, "page.html", markup)
	doc, err := File(path, format.HTML)
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	if doc.Title != "A Sample Page" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %q", len(doc.Paragraphs), doc.Paragraphs)
	}
	if doc.Paragraphs[0] != "First paragraph." {
		t.Errorf("paragraph 0 = %q", doc.Paragraphs[0])
	}
	if doc.Paragraphs[1] != "Second bold paragraph." {
		t.Errorf("paragraph 1 = %q", doc.Paragraphs[1])
	}
	for _, p := range doc.Paragraphs {
		if strings.Contains(p, "color: red") || strings.Contains(p, "ignore me") {
			t.Errorf("non-content node leaked into text: %q", p)
		}
	}
}

func TestHTMLExtractNoText(t *testing.T) {
	path := writeFile(t, "empty.html", "<html><head><script>x()</script></head><body></body></html>")
	_, err := File(path, format.HTML)
	var exErr *Error
	if !asExtractError(err, &exErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if exErr.Format != format.HTML {
		t.Errorf("Format = %v", exErr.Format)
	}
}

func TestTextFromHTMLInlineJoin(t *testing.T) {
	text, err := textFromHTML([]byte("<p>Hello <em>brave</em> new world.</p>"))
	if err != nil {
		t.Fatalf("textFromHTML: %v", err)
	}
	if got := strings.TrimSpace(text); got != "Hello brave new world." {
		t.Errorf("got %q", got)
	}
}
