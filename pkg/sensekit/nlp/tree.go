package nlp

import (
	"fmt"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
)

// NoHead marks the root token of a tree.
const NoHead = -1

// Tree is a dependency parse stored as an arena of tokens.
// Heads are token indices; children are derived once at construction.
type Tree struct {
	tokens   []*Token
	heads    []int
	children [][]int
	root     int
}

// FromHeads assembles a tree from tokens and their head indices without
// validating the structure. Parsers that already guarantee a single root and
// no cycles can use it directly; everyone else should use a TreeBuilder.
func FromHeads(tokens []*Token, heads []int) *Tree {
	t := &Tree{
		tokens:   tokens,
		heads:    heads,
		children: make([][]int, len(tokens)),
		root:     NoHead,
	}
	for i, h := range heads {
		if h == NoHead {
			if t.root == NoHead {
				t.root = i
			}
			continue
		}
		if h >= 0 && h < len(tokens) {
			t.children[h] = append(t.children[h], i)
		}
	}
	return t
}

// Validate checks that the tree has exactly one root, in-range heads and no cycles.
func (t *Tree) Validate() error {
	if len(t.tokens) != len(t.heads) {
		return fmt.Errorf("%w: %d tokens but %d heads", internalerr.ErrMalformedTree, len(t.tokens), len(t.heads))
	}
	if len(t.tokens) == 0 {
		return fmt.Errorf("%w: empty tree", internalerr.ErrMalformedTree)
	}

	roots := 0
	for i, h := range t.heads {
		if h == NoHead {
			roots++
			continue
		}
		if h < 0 || h >= len(t.tokens) || h == i {
			return fmt.Errorf("%w: token %d has invalid head %d", internalerr.ErrMalformedTree, i, h)
		}
	}
	if roots != 1 {
		return fmt.Errorf("%w: expected exactly one root, found %d", internalerr.ErrMalformedTree, roots)
	}

	for i := range t.tokens {
		steps := 0
		for cur := i; t.heads[cur] != NoHead; cur = t.heads[cur] {
			steps++
			if steps > len(t.tokens) {
				return fmt.Errorf("%w: cycle through token %d", internalerr.ErrMalformedTree, i)
			}
		}
	}
	return nil
}

// Len returns the number of tokens.
func (t *Tree) Len() int {
	return len(t.tokens)
}

// Token returns the token at index i, or nil when i is out of range.
func (t *Tree) Token(i int) *Token {
	if i < 0 || i >= len(t.tokens) {
		return nil
	}
	return t.tokens[i]
}

// Tokens returns the tokens in sentence order.
func (t *Tree) Tokens() []*Token {
	out := make([]*Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Head returns the head index of token i; ok is false for the root.
func (t *Tree) Head(i int) (head int, ok bool) {
	if i < 0 || i >= len(t.heads) || t.heads[i] == NoHead {
		return NoHead, false
	}
	return t.heads[i], true
}

// Children returns the dependents of token i in sentence order.
func (t *Tree) Children(i int) []int {
	if i < 0 || i >= len(t.children) {
		return nil
	}
	out := make([]int, len(t.children[i]))
	copy(out, t.children[i])
	return out
}

// Root returns the index of the root token.
func (t *Tree) Root() int {
	return t.root
}

// TreeBuilder collects tokens and head relations and produces a validated Tree.
type TreeBuilder struct {
	tokens []*Token
	heads  []int
}

// NewTreeBuilder creates an empty builder.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

// Add appends a token with the given features and returns it.
// New tokens start as roots until SetHead is called.
func (b *TreeBuilder) Add(features map[string]any) *Token {
	tok := NewToken(len(b.tokens))
	for k, v := range features {
		tok.SetFeature(k, v)
	}
	b.tokens = append(b.tokens, tok)
	b.heads = append(b.heads, NoHead)
	return tok
}

// SetHead makes head the parent of child. Use NoHead to mark the root.
func (b *TreeBuilder) SetHead(child, head int) {
	if child < 0 || child >= len(b.heads) {
		return
	}
	b.heads[child] = head
}

// Build validates the structure and returns the tree.
func (b *TreeBuilder) Build() (*Tree, error) {
	tokens := make([]*Token, len(b.tokens))
	copy(tokens, b.tokens)
	heads := make([]int, len(b.heads))
	copy(heads, b.heads)

	t := FromHeads(tokens, heads)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewSequence builds a flat tree from words: token 0 is the root and every
// other token attaches to it. Useful when no parse is available.
func NewSequence(words ...string) *Tree {
	b := NewTreeBuilder()
	for i, w := range words {
		b.Add(map[string]any{Text: w})
		if i > 0 {
			b.SetHead(i, 0)
		}
	}
	tokens := b.tokens
	return FromHeads(tokens, b.heads)
}
