package document

import "strings"

// Normalize trims each paragraph, drops empty results and preserves the
// original reading order. It makes no attempt at language-aware hyphenation
// repair or sentence segmentation.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SplitParagraphs splits extracted text into paragraphs on blank-line
// boundaries. Any run of one or more blank lines is a single boundary, and
// mixed line-ending styles are tolerated.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			paragraphs = append(paragraphs, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if cur.Len() > 0 {
			cur.WriteString("\n")
		}
		cur.WriteString(line)
	}
	flush()

	return Normalize(paragraphs)
}
