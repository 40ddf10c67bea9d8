package contexts

import (
	"fmt"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// RootPathKey is the ID of the root path context.
const RootPathKey = "PATH"

// RootPath produces the chain of tokens from the focus up to the tree root.
type RootPath struct{}

// NewRootPath creates a root path factory.
func NewRootPath() *RootPath {
	return &RootPath{}
}

// Contexts implements Factory. A head chain that revisits a token is
// reported as ErrMalformedTree.
func (RootPath) Contexts(f *nlp.Focus) ([]Context, error) {
	tok, err := focusToken(f)
	if err != nil {
		return nil, err
	}

	path := []*nlp.Token{tok}
	visited := map[int]struct{}{f.Index: {}}
	for cur := f.Index; ; {
		head, ok := f.Tree.Head(cur)
		if !ok {
			break
		}
		if _, seen := visited[head]; seen {
			return nil, fmt.Errorf("%w: head cycle at token %d", internalerr.ErrMalformedTree, head)
		}
		next := f.Tree.Token(head)
		if next == nil {
			return nil, fmt.Errorf("%w: token %d has head %d outside tree", internalerr.ErrMalformedTree, cur, head)
		}
		visited[head] = struct{}{}
		path = append(path, next)
		cur = head
	}
	return []Context{{ID: RootPathKey, Tokens: path}}, nil
}

// Identifiers implements Factory.
func (RootPath) Identifiers() []string {
	return []string{RootPathKey}
}
