package nlp

// Focus is a tree with one designated token that a classification decision is
// about, usually a predicate whose sense is to be resolved.
type Focus struct {
	ID       int
	Tree     *Tree
	Index    int
	features map[string]any
}

// NewFocus creates a focus instance on token index of tree.
func NewFocus(id int, tree *Tree, index int) *Focus {
	return &Focus{ID: id, Tree: tree, Index: index, features: make(map[string]any)}
}

// Token returns the focus token.
func (f *Focus) Token() *Token {
	return f.Tree.Token(f.Index)
}

// Feature returns an instance-level feature, or nil.
func (f *Focus) Feature(key string) any {
	return f.features[key]
}

// SetFeature stores an instance-level feature.
func (f *Focus) SetFeature(key string, value any) {
	f.features[key] = value
}

// Label returns the gold label of the instance, or "" when unlabelled.
func (f *Focus) Label() string {
	s, _ := f.features[Gold].(string)
	return s
}

// SetLabel stores the gold label on the instance and on its focus token.
func (f *Focus) SetLabel(label string) {
	f.features[Gold] = label
	if tok := f.Token(); tok != nil {
		tok.SetFeature(Gold, label)
	}
}

// PredicateFoci returns one focus per token carrying a Predicate feature,
// numbered sequentially across all trees.
func PredicateFoci(trees []*Tree) []*Focus {
	var foci []*Focus
	for _, tree := range trees {
		for _, tok := range tree.tokens {
			if _, ok := tok.StringFeature(Predicate); !ok {
				continue
			}
			f := NewFocus(len(foci), tree, tok.Index())
			if gold, ok := tok.StringFeature(Gold); ok {
				f.features[Gold] = gold
			}
			foci = append(foci, f)
		}
	}
	return foci
}
