// Package phrase splits display names and free text into normalised tokens.
package phrase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Splitter is the default tokenizer. The zero value is ready to use.
type Splitter struct{}

// Split returns the normalised tokens of text.
func (Splitter) Split(text string) []string { return Split(text) }

// Normalize folds text to lower case and strips diacritics ("Canción" -> "cancion").
// Transformers and casers are stateful, so both are built per call.
func Normalize(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return cases.Lower(language.Und).String(out)
}

// Split normalises text and splits it on every rune that is not a letter or digit.
func Split(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// LongestToken returns the longest token of name, the first one winning ties.
// It returns "" when name has no tokens.
func LongestToken(name string) string {
	best, bestLen := "", 0
	for _, tok := range Split(name) {
		if n := utf8.RuneCountInString(tok); n > bestLen {
			best, bestLen = tok, n
		}
	}
	return best
}
