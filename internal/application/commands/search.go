package commands

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pdflens/internal/application"
)

// DefaultSnippetRadius is the number of bytes of context kept on each side of a match
const DefaultSnippetRadius = 80

// Matcher finds case-insensitive occurrences of a query in page text
type Matcher struct {
	Query string
	re    *regexp.Regexp
}

// NewMatcher compiles a query. Plain queries match literally; regex queries use RE2 syntax.
func NewMatcher(query string, regex bool) (*Matcher, error) {
	if query == "" {
		return nil, application.ErrEmptyQuery
	}

	pattern := regexp.QuoteMeta(query)
	if regex {
		pattern = query
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &application.ValidationError{
			Field:   "query",
			Message: err.Error(),
		}
	}
	return &Matcher{Query: query, re: re}, nil
}

// FindAll returns the byte ranges of non-overlapping, non-empty matches in text
func (m *Matcher) FindAll(text string) [][2]int {
	var ranges [][2]int
	for _, loc := range m.re.FindAllStringIndex(text, -1) {
		if loc[1] == loc[0] {
			continue // empty regex matches carry no location worth showing
		}
		ranges = append(ranges, [2]int{loc[0], loc[1]})
	}
	return ranges
}

// Snippet returns the context around text[start:end] on a single line
func Snippet(text string, start, end, radius int) string {
	left := max(start-radius, 0)
	right := min(end+radius, len(text))

	for left > 0 && !utf8.RuneStart(text[left]) {
		left--
	}
	for right < len(text) && !utf8.RuneStart(text[right]) {
		right++
	}

	return strings.Join(strings.Fields(text[left:right]), " ")
}
