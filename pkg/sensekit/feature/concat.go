package feature

import (
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Concat joins the values of its children, in order, into a single value.
// If any child produces nothing the combination is absent.
type Concat struct {
	children []Extractor
	id       string
}

// NewConcat combines children; order matters for both value and ID.
func NewConcat(children ...Extractor) *Concat {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.ID()
	}
	return &Concat{children: children, id: strings.Join(ids, KeyDelim)}
}

// ID implements Extractor.
func (c *Concat) ID() string {
	return c.id
}

// Extract implements Extractor.
func (c *Concat) Extract(t *nlp.Token) []string {
	if len(c.children) == 0 {
		return nil
	}
	parts := make([]string, 0, len(c.children))
	for _, child := range c.children {
		v, ok := first(child, t)
		if !ok {
			return nil
		}
		parts = append(parts, v)
	}
	return []string{strings.Join(parts, ConcatDelim)}
}
