// Package selection classifies a piece of selected text as a word or a
// sentence, deciding which kind of lookup the reader should run.
package selection

import (
	"strings"
	"unicode"
)

// Kind distinguishes the two lookup granularities.
type Kind int

const (
	Word Kind = iota
	Sentence
)

func (k Kind) String() string {
	if k == Sentence {
		return "sentence"
	}
	return "word"
}

// Span is a classified selection ready for lookup.
type Span struct {
	Text string
	Kind Kind
}

// wordTokenLimit is the largest whitespace token count still treated as a
// word lookup. Two tokens covers names and common compounds.
const wordTokenLimit = 2

// Classify turns raw selected text into a lookup span. Selections of up to
// two whitespace tokens become word lookups with surrounding punctuation
// stripped; anything longer is a sentence lookup kept verbatim. The second
// return value is false when the selection has no usable content.
func Classify(text string) (Span, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Span{}, false
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) > wordTokenLimit {
		return Span{Text: trimmed, Kind: Sentence}, true
	}

	word := strings.TrimFunc(trimmed, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	if word == "" {
		return Span{}, false
	}
	return Span{Text: word, Kind: Word}, true
}
