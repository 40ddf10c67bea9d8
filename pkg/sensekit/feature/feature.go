// Package feature turns tokens and contexts into symbolic feature values.
//
// A missing or empty annotation is never an error: the extractor simply
// produces no value.
package feature

import (
	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Delimiters used when building extractor IDs and combined values.
const (
	KeyDelim    = "&"
	ConcatDelim = "_"
	PathDelim   = ">"
)

// Extractor produces zero or more values for a single token.
// ID is derived from the configuration only, so equally configured
// extractors share an ID.
type Extractor interface {
	ID() string
	Extract(t *nlp.Token) []string
}

// ContextExtractor produces zero or more values for a whole context.
type ContextExtractor interface {
	ID() string
	ExtractContext(c contexts.Context) []string
}

func first(e Extractor, t *nlp.Token) (string, bool) {
	for _, v := range e.Extract(t) {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
