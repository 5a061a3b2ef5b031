// Package query parses free-text queries into a primary predicate and source-scoped hints.
package query

import (
	"slices"
	"strings"
)

const sitePrefix = "site:"

// Aliases maps a lower-cased source alias to the source ids it names.
type Aliases map[string][]uint32

// Hint is a narrower fallback predicate restricted to the sources a query mentioned.
type Hint struct {
	Text    string
	Sources []uint32
}

// Parsed is the outcome of parsing one query.
type Parsed struct {
	// Text is the primary predicate in extended syntax.
	Text string
	// Excluded lists sources the query asked to leave out.
	Excluded []uint32
	// Hints are fallback predicates in query order.
	Hints []Hint
}

// Parser is the default query parser. The zero value is ready to use.
type Parser struct{}

// Parse implements the default parser, see Parse.
func (Parser) Parse(text string, aliases Aliases) Parsed { return Parse(text, aliases) }

type token struct {
	raw  string
	kept string // escaped form for the primary text, "" when dropped
	hint []uint32
	// hintDrop marks a bare alias: its fallback omits the token itself.
	hintDrop bool
}

// Parse splits text on whitespace and classifies every token:
//
//	-alias, -site:alias  exclude the source; dropped from the text
//	site:alias           dropped from the text; adds a fallback on the source
//	alias                kept; adds a fallback on the source without the token
//	-word                kept as a negated term
//
// Everything else is kept escaped.
func Parse(text string, aliases Aliases) Parsed {
	var (
		p      Parsed
		tokens []token
	)
	for _, raw := range strings.Fields(text) {
		lower := strings.ToLower(raw)
		switch {
		case strings.HasPrefix(lower, "-") && len(lower) > 1:
			name := strings.TrimPrefix(strings.TrimPrefix(lower, "-"), sitePrefix)
			if ids, ok := aliases[name]; ok {
				p.Excluded = appendUnique(p.Excluded, ids...)
				continue
			}
			tokens = append(tokens, token{raw: raw, kept: "-" + Escape(raw[1:])})
		case strings.HasPrefix(lower, sitePrefix):
			if ids, ok := aliases[strings.TrimPrefix(lower, sitePrefix)]; ok {
				tokens = append(tokens, token{raw: raw, hint: ids})
				continue
			}
			tokens = append(tokens, token{raw: raw, kept: Escape(raw)})
		default:
			t := token{raw: raw, kept: Escape(raw)}
			if ids, ok := aliases[lower]; ok {
				t.hint, t.hintDrop = ids, true
			}
			tokens = append(tokens, t)
		}
	}

	p.Text = render(tokens, -1)
	for i, t := range tokens {
		if len(t.hint) == 0 {
			continue
		}
		h := Hint{Text: p.Text, Sources: slices.Clone(t.hint)}
		if t.hintDrop {
			h.Text = render(tokens, i)
		}
		p.Hints = append(p.Hints, h)
	}
	return p
}

// render joins the kept tokens, leaving out the token at skip.
func render(tokens []token, skip int) string {
	parts := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if i == skip || t.kept == "" {
			continue
		}
		parts = append(parts, t.kept)
	}
	return strings.Join(parts, " ")
}

func appendUnique(dst []uint32, ids ...uint32) []uint32 {
	for _, id := range ids {
		if !slices.Contains(dst, id) {
			dst = append(dst, id)
		}
	}
	return dst
}

var escaper = strings.NewReplacer(
	`\`, `\\`, `(`, `\(`, `)`, `\)`, `|`, `\|`, `-`, `\-`, `!`, `\!`, `@`, `\@`,
	`~`, `\~`, `"`, `\"`, `&`, `\&`, `/`, `\/`, `^`, `\^`, `$`, `\$`, `=`, `\=`, `<`, `\<`,
	`'`, `\'`,
)

// Escape backslash-escapes the operators of the daemon's extended query syntax.
func Escape(s string) string { return escaper.Replace(s) }
