package contexts

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// OffsetKey prefixes the IDs of offset contexts.
const OffsetKey = "OFFSET"

// Offset selects tokens at fixed distances from the focus.
// Offsets falling outside the sentence are skipped.
type Offset struct {
	offsets []int
	concat  bool
}

// NewOffset emits one context per offset, in the given order.
func NewOffset(offsets ...int) *Offset {
	return &Offset{offsets: uniqueInts(offsets)}
}

// NewConcatOffset emits a single context holding all offset tokens in
// ascending offset order.
func NewConcatOffset(offsets ...int) *Offset {
	sorted := uniqueInts(offsets)
	sort.Ints(sorted)
	return &Offset{offsets: sorted, concat: true}
}

// Contexts implements Factory.
func (o *Offset) Contexts(f *nlp.Focus) ([]Context, error) {
	if _, err := focusToken(f); err != nil {
		return nil, err
	}

	if o.concat {
		var tokens []*nlp.Token
		for _, off := range o.offsets {
			if tok := f.Tree.Token(f.Index + off); tok != nil {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			return nil, nil
		}
		return []Context{{ID: offsetID(o.offsets), Tokens: tokens}}, nil
	}

	var out []Context
	for _, off := range o.offsets {
		tok := f.Tree.Token(f.Index + off)
		if tok == nil {
			continue
		}
		out = append(out, Context{ID: offsetID([]int{off}), Tokens: []*nlp.Token{tok}})
	}
	return out, nil
}

// Identifiers implements Factory.
func (o *Offset) Identifiers() []string {
	if o.concat {
		if len(o.offsets) == 0 {
			return nil
		}
		return []string{offsetID(o.offsets)}
	}
	ids := make([]string, len(o.offsets))
	for i, off := range o.offsets {
		ids[i] = offsetID([]int{off})
	}
	return ids
}

func offsetID(offsets []int) string {
	parts := make([]string, len(offsets))
	for i, off := range offsets {
		parts[i] = strconv.Itoa(off)
	}
	return OffsetKey + "[" + strings.Join(parts, ",") + "]"
}

func uniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
