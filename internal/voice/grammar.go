// Package voice matches recognized utterances against registered phrase
// patterns and runs the handler bound to the first match.
//
// Pattern syntax:
//   - `word` - literal, matched case-insensitively at its position
//   - `*name` - named wildcard, captures every remaining word (one or more);
//     only allowed as the last token
package voice

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid pattern")

// Pattern is a compiled phrase pattern.
type Pattern struct {
	source   string
	literals []string
	wildcard string // capture name, empty when the pattern is literal-only
}

// Compile parses a phrase pattern. Malformed patterns wrap ErrInvalidPattern.
func Compile(pattern string) (*Pattern, error) {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	p := &Pattern{source: strings.Join(fields, " ")}
	for i, field := range fields {
		name, isWildcard := strings.CutPrefix(field, "*")
		if !isWildcard {
			p.literals = append(p.literals, lower(field))
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("%w: %q: wildcard without a name", ErrInvalidPattern, pattern)
		}
		if i != len(fields)-1 {
			return nil, fmt.Errorf("%w: %q: wildcard *%s must be the last token", ErrInvalidPattern, pattern, name)
		}
		p.wildcard = name
	}

	return p, nil
}

func (p *Pattern) String() string {
	return p.source
}

// Wildcard returns the capture name, or "" for literal-only patterns.
func (p *Pattern) Wildcard() string {
	return p.wildcard
}

// Literals returns the lower-cased literal words in order.
func (p *Pattern) Literals() []string {
	out := make([]string, len(p.literals))
	copy(out, p.literals)
	return out
}

// Match reports whether utterance matches the pattern and returns the
// wildcard capture. Captured text is normalized (lower-cased, single spaced).
func (p *Pattern) Match(utterance string) (Binding, bool) {
	words := strings.Fields(lower(utterance))

	if len(words) < len(p.literals) {
		return Binding{}, false
	}
	for i, lit := range p.literals {
		if words[i] != lit {
			return Binding{}, false
		}
	}

	rest := words[len(p.literals):]
	if p.wildcard == "" {
		if len(rest) != 0 {
			return Binding{}, false
		}
		return Binding{}, true
	}
	if len(rest) == 0 {
		return Binding{}, false
	}

	return Binding{
		names:  []string{p.wildcard},
		values: []string{strings.Join(rest, " ")},
	}, true
}

// Normalize trims, lower-cases and collapses whitespace in an utterance.
func Normalize(utterance string) string {
	return strings.Join(strings.Fields(lower(utterance)), " ")
}

// A Caser is stateful, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Binding maps wildcard names to captured text, in pattern order.
type Binding struct {
	names  []string
	values []string
}

// Get returns the text captured by the named wildcard.
func (b Binding) Get(name string) string {
	for i, n := range b.names {
		if n == name {
			return b.values[i]
		}
	}
	return ""
}

func (b Binding) Names() []string {
	return append([]string(nil), b.names...)
}

// Values returns the captures in the order the pattern declares them.
func (b Binding) Values() []string {
	return append([]string(nil), b.values...)
}

func (b Binding) Len() int {
	return len(b.values)
}
