package contexts

import (
	"errors"
	"testing"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp/nlptest"
)

func testInstance() *nlp.Focus {
	return nlptest.Sequence("0 1 2 3 4 5 6", 3)
}

func indices(tokens []*nlp.Token) []int {
	out := make([]int, len(tokens))
	for i, t := range tokens {
		out[i] = t.Index()
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOffsetFocus(t *testing.T) {
	ctxs, err := NewOffset(0).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 1 {
		t.Fatalf("expected 1 context, got %d", len(ctxs))
	}
	if ctxs[0].ID != "OFFSET[0]" {
		t.Errorf("ID = %q, want OFFSET[0]", ctxs[0].ID)
	}
	if got := indices(ctxs[0].Tokens); !equalInts(got, []int{3}) {
		t.Errorf("tokens = %v, want [3]", got)
	}
}

func TestOffsetSeparate(t *testing.T) {
	ctxs, err := NewOffset(-1, 1).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(ctxs))
	}
	if ctxs[0].ID != "OFFSET[-1]" || ctxs[1].ID != "OFFSET[1]" {
		t.Errorf("IDs = %q,%q", ctxs[0].ID, ctxs[1].ID)
	}
	if ctxs[0].Tokens[0].Index() != 2 || ctxs[1].Tokens[0].Index() != 4 {
		t.Errorf("tokens = %d,%d, want 2,4", ctxs[0].Tokens[0].Index(), ctxs[1].Tokens[0].Index())
	}
}

func TestOffsetConcatenatedAscending(t *testing.T) {
	f := NewConcatOffset(1, -1)
	ctxs, err := f.Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 1 {
		t.Fatalf("expected 1 context, got %d", len(ctxs))
	}
	if ctxs[0].ID != "OFFSET[-1,1]" {
		t.Errorf("ID = %q, want OFFSET[-1,1]", ctxs[0].ID)
	}
	if got := indices(ctxs[0].Tokens); !equalInts(got, []int{2, 4}) {
		t.Errorf("tokens = %v, want [2 4]", got)
	}
	if ids := f.Identifiers(); len(ids) != 1 || ids[0] != "OFFSET[-1,1]" {
		t.Errorf("Identifiers = %v", ids)
	}
}

func TestOffsetOutOfBoundsSkipped(t *testing.T) {
	ctxs, err := NewOffset(-100).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 0 {
		t.Errorf("expected no context for offset -100, got %d", len(ctxs))
	}

	ctxs, err = NewOffset(-100, 2, 3).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 2 || ctxs[0].ID != "OFFSET[2]" || ctxs[1].ID != "OFFSET[3]" {
		t.Errorf("unexpected contexts %+v", ctxs)
	}

	ctxs, err = NewConcatOffset(-100, 100).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 0 {
		t.Errorf("concatenated context with no valid tokens should be omitted, got %d", len(ctxs))
	}

	ctxs, err = NewConcatOffset(-100, 1).Contexts(testInstance())
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 1 || len(ctxs[0].Tokens) != 1 || ctxs[0].ID != "OFFSET[-100,1]" {
		t.Errorf("partial concatenated context = %+v", ctxs)
	}
}

func TestOffsetInvalidFocus(t *testing.T) {
	f := nlp.NewFocus(0, nlp.NewSequence("a", "b"), 9)
	if _, err := NewOffset(0).Contexts(f); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRootPathChain(t *testing.T) {
	f := nlp.NewFocus(0, nlptest.Chain(4), 3)
	ctxs, err := NewRootPath().Contexts(f)
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 1 || ctxs[0].ID != RootPathKey {
		t.Fatalf("unexpected contexts %+v", ctxs)
	}
	if got := indices(ctxs[0].Tokens); !equalInts(got, []int{3, 2, 1, 0}) {
		t.Errorf("path = %v, want [3 2 1 0]", got)
	}
}

func TestRootPathAtRoot(t *testing.T) {
	f := nlp.NewFocus(0, nlptest.Chain(4), 0)
	ctxs, err := NewRootPath().Contexts(f)
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if got := indices(ctxs[0].Tokens); !equalInts(got, []int{0}) {
		t.Errorf("path = %v, want [0]", got)
	}
}

func TestRootPathCycle(t *testing.T) {
	tokens := []*nlp.Token{nlp.NewToken(0), nlp.NewToken(1), nlp.NewToken(2)}
	tree := nlp.FromHeads(tokens, []int{nlp.NoHead, 2, 1})
	f := nlp.NewFocus(0, tree, 1)

	_, err := NewRootPath().Contexts(f)
	if !errors.Is(err, internalerr.ErrMalformedTree) {
		t.Fatalf("err = %v, want ErrMalformedTree", err)
	}
}

func TestChildren(t *testing.T) {
	tree := nlptest.Sentence()
	f := nlp.NewFocus(0, tree, 2)

	ctxs, err := NewChildren().Contexts(f)
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 2 {
		t.Fatalf("expected 2 dependents, got %d", len(ctxs))
	}
	if ctxs[0].ID != "DEP" || ctxs[0].Tokens[0].Index() != 1 || ctxs[1].Tokens[0].Index() != 3 {
		t.Errorf("unexpected contexts %+v", ctxs)
	}

	ctxs, err = NewChildrenByRelation("nsubj", "dobj").Contexts(f)
	if err != nil {
		t.Fatalf("Contexts: %v", err)
	}
	if len(ctxs) != 1 || ctxs[0].ID != "DEP[nsubj]" {
		t.Errorf("by relation contexts = %+v", ctxs)
	}

	ids := NewChildrenByRelation("nsubj", "dobj").Identifiers()
	if len(ids) != 2 || ids[0] != "DEP[nsubj]" || ids[1] != "DEP[dobj]" {
		t.Errorf("Identifiers = %v", ids)
	}
}
