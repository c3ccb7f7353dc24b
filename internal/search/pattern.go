// Package search derives filtered views of the transaction collection.
package search

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"fintrack/internal/core"
)

// MatchTimeout bounds a single match so a pathological pattern cannot stall
// a request.
const MatchTimeout = 100 * time.Millisecond

// PatternError reports a pattern that does not compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

func (e *PatternError) Is(target error) bool { return target == core.ErrPattern }

// Pattern is a compiled ECMAScript-flavoured regular expression.
type Pattern struct {
	re *regexp2.Regexp
}

// Compile builds a pattern from user input. Blank input means "no filter"
// and yields a nil pattern with a nil error.
func Compile(input string, caseSensitive bool) (*Pattern, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(input, opts)
	if err != nil {
		return nil, &PatternError{Pattern: input, Err: err}
	}
	re.MatchTimeout = MatchTimeout
	return &Pattern{re: re}, nil
}

func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.re.String()
}

// MatchString reports whether s contains a match. A timed out match counts
// as no match.
func (p *Pattern) MatchString(s string) bool {
	if p == nil {
		return true
	}
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// Highlight wraps each non-empty match in <mark> tags and escapes the rest
// of the text for HTML. A nil pattern returns text unchanged.
func Highlight(text string, p *Pattern) string {
	if p == nil || text == "" {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	last := 0

	m, err := p.re.FindStringMatch(text)
	for m != nil && err == nil {
		// regexp2 reports rune offsets
		if m.Length > 0 {
			b.WriteString(html.EscapeString(string(runes[last:m.Index])))
			b.WriteString("<mark>")
			b.WriteString(html.EscapeString(m.String()))
			b.WriteString("</mark>")
			last = m.Index + m.Length
		}
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		// a timeout mid-scan leaves partial marks; drop them all
		return html.EscapeString(text)
	}
	b.WriteString(html.EscapeString(string(runes[last:])))
	return b.String()
}
