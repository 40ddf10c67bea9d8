// Package nlptest builds small trees and focus instances for tests.
package nlptest

import (
	"strconv"
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Sequence splits text on whitespace into a flat tree and focuses token focus.
func Sequence(text string, focus int) *nlp.Focus {
	return nlp.NewFocus(0, nlp.NewSequence(strings.Fields(text)...), focus)
}

// Chain builds a tree of n tokens where token i attaches to token i-1,
// so token 0 is the root. Token texts are their indices.
func Chain(n int) *nlp.Tree {
	b := nlp.NewTreeBuilder()
	for i := 0; i < n; i++ {
		b.Add(map[string]any{nlp.Text: strconv.Itoa(i)})
		if i > 0 {
			b.SetHead(i, i-1)
		}
	}
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Sentence is a hand-written parse: "the cat ran home" with ran as root.
func Sentence() *nlp.Tree {
	b := nlp.NewTreeBuilder()
	b.Add(map[string]any{nlp.Text: "The", nlp.Lemma: "the", nlp.Pos: "DT", nlp.Dep: "det"})
	b.Add(map[string]any{nlp.Text: "cat", nlp.Lemma: "cat", nlp.Pos: "NN", nlp.Dep: "nsubj"})
	b.Add(map[string]any{nlp.Text: "ran", nlp.Lemma: "run", nlp.Pos: "VBD", nlp.Dep: "root", nlp.Predicate: "run"})
	b.Add(map[string]any{nlp.Text: "home", nlp.Lemma: "home", nlp.Pos: "NN", nlp.Dep: "advmod"})
	b.SetHead(0, 1)
	b.SetHead(1, 2)
	b.SetHead(3, 2)
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
