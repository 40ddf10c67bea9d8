package nlp

import (
	"errors"
	"testing"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
)

func TestTreeBuilderHeadsAndChildren(t *testing.T) {
	b := NewTreeBuilder()
	b.Add(map[string]any{Text: "The"})
	b.Add(map[string]any{Text: "cat"})
	b.Add(map[string]any{Text: "ran"})
	b.SetHead(0, 1)
	b.SetHead(1, 2)

	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if tree.Root() != 2 {
		t.Errorf("Root = %d, want 2", tree.Root())
	}
	if h, ok := tree.Head(0); !ok || h != 1 {
		t.Errorf("Head(0) = %d,%v, want 1,true", h, ok)
	}
	if _, ok := tree.Head(2); ok {
		t.Error("root should have no head")
	}

	children := tree.Children(2)
	if len(children) != 1 || children[0] != 1 {
		t.Errorf("Children(2) = %v, want [1]", children)
	}
	if got := tree.Children(0); len(got) != 0 {
		t.Errorf("Children(0) = %v, want empty", got)
	}
}

func TestTreeBuilderRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		heads map[int]int
	}{
		{name: "two roots", n: 3, heads: map[int]int{1: 0}},
		{name: "no root", n: 2, heads: map[int]int{0: 1, 1: 0}},
		{name: "cycle", n: 4, heads: map[int]int{1: 2, 2: 1, 3: 0}},
		{name: "self head", n: 2, heads: map[int]int{1: 1}},
		{name: "out of range", n: 2, heads: map[int]int{1: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTreeBuilder()
			for i := 0; i < tt.n; i++ {
				b.Add(nil)
			}
			for child, head := range tt.heads {
				b.SetHead(child, head)
			}
			_, err := b.Build()
			if !errors.Is(err, internalerr.ErrMalformedTree) {
				t.Fatalf("Build err = %v, want ErrMalformedTree", err)
			}
		})
	}
}

func TestTokenFeatures(t *testing.T) {
	tok := NewToken(4)
	if tok.Index() != 4 {
		t.Fatalf("Index = %d, want 4", tok.Index())
	}

	if _, ok := tok.StringFeature(Lemma); ok {
		t.Error("missing feature should not be present")
	}

	tok.SetFeature(Lemma, "")
	if _, ok := tok.StringFeature(Lemma); ok {
		t.Error("empty string should count as absent")
	}

	tok.SetFeature(Lemma, "cat")
	if v, ok := tok.StringFeature(Lemma); !ok || v != "cat" {
		t.Errorf("StringFeature = %q,%v, want cat,true", v, ok)
	}

	tok.SetFeature("Syn", []string{"cat", "feline"})
	if got := tok.ListFeature("Syn"); len(got) != 2 {
		t.Errorf("ListFeature = %v, want 2 values", got)
	}
	if got := tok.ListFeature(Lemma); len(got) != 1 || got[0] != "cat" {
		t.Errorf("ListFeature on string = %v, want [cat]", got)
	}
}

func TestNewSequence(t *testing.T) {
	tree := NewSequence("0", "1", "2")
	if err := tree.Validate(); err != nil {
		t.Fatalf("sequence should be a valid tree: %v", err)
	}
	if tree.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tree.Len())
	}
	if tree.Token(5) != nil {
		t.Error("out-of-range Token should be nil")
	}
	if v, _ := tree.Token(2).StringFeature(Text); v != "2" {
		t.Errorf("Token(2) text = %q, want 2", v)
	}
}

func TestPredicateFoci(t *testing.T) {
	b := NewTreeBuilder()
	b.Add(map[string]any{Text: "dogs"})
	b.Add(map[string]any{Text: "bark", Predicate: "bark", Gold: "bark.01"})
	b.SetHead(0, 1)
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	foci := PredicateFoci([]*Tree{tree, NewSequence("no", "predicate")})
	if len(foci) != 1 {
		t.Fatalf("expected 1 focus, got %d", len(foci))
	}
	if foci[0].Index != 1 || foci[0].Label() != "bark.01" {
		t.Errorf("focus = %d/%q, want 1/bark.01", foci[0].Index, foci[0].Label())
	}
}
