package editor

import (
	"strings"

	"github.com/mclrc/vizier/internal/catalog"
)

// completion cycles through the table names matching the word at the end
// of the query.
type completion struct {
	tables     []string // table names loaded in the explorer
	candidates []string
	index      int
}

func (c *completion) active() bool { return len(c.candidates) > 0 }

func (c *completion) reset() {
	c.candidates = nil
	c.index = 0
}

// complete returns query with its last word replaced by the next candidate.
// It reports false when there is nothing to complete.
func (c *completion) complete(query string) (string, bool) {
	if c.active() {
		c.index = (c.index + 1) % len(c.candidates)
	} else {
		c.candidates = c.match(query)
		c.index = 0
		if !c.active() {
			return query, false
		}
	}
	base := strings.TrimSuffix(query, lastWord(query))
	return base + catalog.QuoteIdent(c.candidates[c.index]), true
}

// match lists the candidates for the last word of query. Table names are
// only offered once the query has a FROM or JOIN.
func (c *completion) match(query string) []string {
	word := lastWord(query)
	if len(c.tables) == 0 || word == "" {
		return nil
	}
	upper := strings.ToUpper(query)
	if !strings.Contains(upper, "FROM") && !strings.Contains(upper, "JOIN") {
		return nil
	}
	return matchTables(c.tables, word)
}

// matchTables returns the table names starting with partial, ignoring case
// and an opening identifier quote.
func matchTables(names []string, partial string) []string {
	prefix := strings.ToLower(strings.Trim(partial, `"`))
	var out []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
		}
	}
	return out
}

// lastWord returns the trailing table-name-like token of s. VizieR names
// contain slashes, dots and plus signs.
func lastWord(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	start := len(s)
	for start > 0 && isNameByte(s[start-1]) {
		start--
	}
	return s[start:]
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(`_./+"`, c) >= 0
}
