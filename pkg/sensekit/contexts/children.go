package contexts

import "github.com/cognicore/sensekit/pkg/sensekit/nlp"

// ChildrenKey prefixes the IDs of dependent contexts.
const ChildrenKey = "DEP"

// AnyRelation closes the identifier of a by-relation children factory with
// no relation filter: "DEP[*]" stands for every "DEP[<relation>]" id the
// factory can emit.
const AnyRelation = "[*]"

// Children selects the syntactic dependents of the focus, one context per
// dependent, optionally restricted to a set of dependency relations.
type Children struct {
	relations  []string
	include    map[string]struct{}
	byRelation bool
}

// NewChildren emits every dependent (or only those with one of relations)
// under the single ID "DEP".
func NewChildren(relations ...string) *Children {
	return newChildren(relations, false)
}

// NewChildrenByRelation emits dependents with one of relations under
// "DEP[<relation>]", so each relation gets its own feature keys. With no
// relations every labelled dependent is emitted.
func NewChildrenByRelation(relations ...string) *Children {
	return newChildren(relations, true)
}

func newChildren(relations []string, byRelation bool) *Children {
	c := &Children{byRelation: byRelation}
	if len(relations) > 0 {
		c.include = make(map[string]struct{}, len(relations))
		for _, r := range relations {
			if _, ok := c.include[r]; ok {
				continue
			}
			c.include[r] = struct{}{}
			c.relations = append(c.relations, r)
		}
	}
	return c
}

// Contexts implements Factory.
func (c *Children) Contexts(f *nlp.Focus) ([]Context, error) {
	if _, err := focusToken(f); err != nil {
		return nil, err
	}

	var out []Context
	for _, idx := range f.Tree.Children(f.Index) {
		tok := f.Tree.Token(idx)
		rel, _ := tok.StringFeature(nlp.Dep)
		if c.include != nil {
			if _, ok := c.include[rel]; !ok {
				continue
			}
		}
		id := ChildrenKey
		if c.byRelation {
			if rel == "" {
				continue
			}
			id = ChildrenKey + "[" + rel + "]"
		}
		out = append(out, Context{ID: id, Tokens: []*nlp.Token{tok}})
	}
	return out, nil
}

// Identifiers implements Factory.
func (c *Children) Identifiers() []string {
	if !c.byRelation {
		return []string{ChildrenKey}
	}
	if len(c.relations) == 0 {
		return []string{ChildrenKey + AnyRelation}
	}
	ids := make([]string, len(c.relations))
	for i, r := range c.relations {
		ids[i] = ChildrenKey + "[" + r + "]"
	}
	return ids
}
