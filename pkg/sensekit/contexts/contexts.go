// Package contexts selects groups of tokens relative to a focus token.
package contexts

import (
	"fmt"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Context is a named, ordered group of tokens derived from a focus instance.
// The ID describes how the tokens were selected, e.g. "PATH" or "OFFSET[-1,1]".
type Context struct {
	ID     string
	Tokens []*nlp.Token
}

// Factory produces contexts for a focus instance. Output order depends only
// on the input.
type Factory interface {
	Contexts(f *nlp.Focus) ([]Context, error)

	// Identifiers lists every context ID the factory can emit, so that
	// feature key collisions can be detected before extraction.
	Identifiers() []string
}

func focusToken(f *nlp.Focus) (*nlp.Token, error) {
	if f == nil || f.Tree == nil {
		return nil, fmt.Errorf("%w: focus has no tree", internalerr.ErrInvalidInput)
	}
	tok := f.Token()
	if tok == nil {
		return nil, fmt.Errorf("%w: focus index %d outside tree of %d tokens", internalerr.ErrInvalidInput, f.Index, f.Tree.Len())
	}
	return tok, nil
}
