package editor

import (
	"strings"
	"unicode"
)

// ADQL 2.1 reserved words and functions, uppercased by Ctrl+L.
var adqlKeywords = keywordSet(
	"select top distinct all from where and or not in is null like ilike",
	"between exists join inner outer left right full natural cross using on as",
	"order by group having asc desc offset union intersect except",
	"case when then else end with",
	"count sum avg min max",
	"abs ceiling degrees exp floor log log10 mod pi power radians sqrt rand round truncate",
	"sin cos tan asin acos atan atan2 lower upper",
	"area box centroid circle contains coord1 coord2 coordsys distance intersects point polygon region",
)

func keywordSet(groups ...string) map[string]bool {
	set := make(map[string]bool)
	for _, g := range groups {
		for _, w := range strings.Fields(g) {
			set[w] = true
		}
	}
	return set
}

// FormatKeywords uppercases ADQL keywords outside string literals and
// delimited identifiers.
func FormatKeywords(query string) string {
	var out, word strings.Builder
	var quote rune

	endWord := func() {
		if w := word.String(); adqlKeywords[strings.ToLower(w)] {
			out.WriteString(strings.ToUpper(w))
		} else {
			out.WriteString(w)
		}
		word.Reset()
	}

	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			out.WriteRune(r)
		case r == '\'' || r == '"':
			endWord()
			quote = r
			out.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word.WriteRune(r)
		default:
			endWord()
			out.WriteRune(r)
		}
	}
	endWord()
	return out.String()
}
