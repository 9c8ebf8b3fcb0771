package extract

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmelton/folio/internal/format"
)

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildTestEPUB writes an EPUB (ZIP) archive to a temporary file and
// returns its path. The files map uses archive-internal paths as keys.
func buildTestEPUB(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	// The EPUB spec wants mimetype first and uncompressed.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("create mimetype: %v", err)
	}
	if _, err := io.WriteString(mt, "application/epub+zip"); err != nil {
		t.Fatalf("write mimetype: %v", err)
	}
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func testOPF(title, creator, manifest, spine string) string {
	return `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0" unique-identifier="uid">
  <metadata>
    ` + title + creator + `
    <dc:identifier id="uid">test-book-1</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
` + manifest + `  </manifest>
  <spine>
` + spine + `  </spine>
</package>`
}

func section(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>s</title><style>p{margin:0}</style></head>
<body>` + body + `</body>
</html>`
}

func TestEPUBExtract(t *testing.T) {
	path := buildTestEPUB(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": testOPF(
			"<dc:title>The Test Voyage</dc:title>\n", "<dc:creator>Ann Example</dc:creator>\n",
			`    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
`,
			`    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
`),
		"OEBPS/ch1.xhtml": section("<p>Chapter one text.</p>"),
		"OEBPS/ch2.xhtml": section("<p>Chapter two text.</p>"),
	})

	doc, err := File(path, format.EPUB)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if doc.Title != "The Test Voyage" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Author != "Ann Example" {
		t.Errorf("Author = %q", doc.Author)
	}

	text := doc.Text()
	first := strings.Index(text, "Chapter one text.")
	second := strings.Index(text, "Chapter two text.")
	if first == -1 || second == -1 {
		t.Fatalf("missing section text: %q", text)
	}
	if first > second {
		t.Error("sections out of spine order")
	}
	if strings.Contains(text, "margin") {
		t.Errorf("style content leaked: %q", text)
	}
}

func TestEPUBSectionFailureIsolation(t *testing.T) {
	// The middle spine entry references a manifest id that does not exist;
	// its failure must not abort the rest of the document.
	path := buildTestEPUB(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": testOPF(
			"<dc:title>Partial</dc:title>\n", "<dc:creator>A</dc:creator>\n",
			`    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch3" href="ch3.xhtml" media-type="application/xhtml+xml"/>
`,
			`    <itemref idref="ch1"/>
    <itemref idref="ch2-does-not-exist"/>
    <itemref idref="ch3"/>
`),
		"OEBPS/ch1.xhtml": section("<p>Before the gap.</p>"),
		"OEBPS/ch3.xhtml": section("<p>After the gap.</p>"),
	})

	doc, err := File(path, format.EPUB)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	text := doc.Text()
	before := strings.Index(text, "Before the gap.")
	after := strings.Index(text, "After the gap.")
	if before == -1 || after == -1 {
		t.Fatalf("surviving sections missing: %q", text)
	}
	if before > after {
		t.Error("sections out of original order")
	}
}

func TestEPUBMetadataFallback(t *testing.T) {
	path := buildTestEPUB(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": testOPF(
			"", "",
			`    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
`,
			`    <itemref idref="ch1"/>
`),
		"OEBPS/ch1.xhtml": section("<p>Anonymous text.</p>"),
	})

	doc, err := File(path, format.EPUB)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if doc.Title != untitledBook {
		t.Errorf("Title = %q, want %q", doc.Title, untitledBook)
	}
	if doc.Author != unknownAuthor {
		t.Errorf("Author = %q, want %q", doc.Author, unknownAuthor)
	}
}

func TestEPUBCorruptFile(t *testing.T) {
	path := writeFile(t, "broken.epub", "definitely not a zip archive")
	_, err := File(path, format.EPUB)
	var exErr *Error
	if !asExtractError(err, &exErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !strings.Contains(exErr.Reason, "corrupt or DRM protected") {
		t.Errorf("Reason = %q", exErr.Reason)
	}
}
