package feature

import (
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Lowercase lower-cases every value of the wrapped extractor.
type Lowercase struct {
	inner Extractor
}

// NewLowercase wraps inner.
func NewLowercase(inner Extractor) *Lowercase {
	return &Lowercase{inner: inner}
}

// ID implements Extractor.
func (l *Lowercase) ID() string {
	return "Lower(" + l.inner.ID() + ")"
}

// Extract implements Extractor.
func (l *Lowercase) Extract(t *nlp.Token) []string {
	values := l.inner.Extract(t)
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// Joined reads one value per context token and joins them in context order,
// e.g. the dependency labels along a root path. Tokens without a value are
// skipped.
type Joined struct {
	inner Extractor
}

// NewJoined wraps a token extractor into a context extractor.
func NewJoined(inner Extractor) *Joined {
	return &Joined{inner: inner}
}

// ID implements ContextExtractor.
func (j *Joined) ID() string {
	return "Join(" + j.inner.ID() + ")"
}

// ExtractContext implements ContextExtractor.
func (j *Joined) ExtractContext(c contexts.Context) []string {
	parts := make([]string, 0, len(c.Tokens))
	for _, tok := range c.Tokens {
		if v, ok := first(j.inner, tok); ok {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{strings.Join(parts, PathDelim)}
}
