package feature

import (
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Lookup returns the value of the first listed key present on a token.
// When none is present it defers to an optional fallback.
type Lookup struct {
	keys     []string
	fallback Extractor
	id       string
}

// NewLookup creates a lookup over keys, tried in order.
func NewLookup(keys ...string) *Lookup {
	return NewLookupWithFallback(keys, nil)
}

// NewLookupWithFallback creates a lookup that defers to fallback when no key is present.
func NewLookupWithFallback(keys []string, fallback Extractor) *Lookup {
	id := "Lookup(" + strings.Join(keys, KeyDelim) + ")"
	if fallback != nil {
		id += "|" + fallback.ID()
	}
	return &Lookup{keys: keys, fallback: fallback, id: id}
}

// ID implements Extractor.
func (l *Lookup) ID() string {
	return l.id
}

// Extract implements Extractor.
func (l *Lookup) Extract(t *nlp.Token) []string {
	for _, key := range l.keys {
		if v, ok := t.StringFeature(key); ok {
			return []string{v}
		}
	}
	if l.fallback != nil {
		return l.fallback.Extract(t)
	}
	return nil
}
