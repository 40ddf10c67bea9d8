package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/sensekit/pkg/sensekit/classifier"
	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/feature"
	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/metrics"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp/nlptest"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

func standardBindings() []Binding {
	return []Binding{
		Bind(contexts.NewOffset(-1, 0, 1), feature.NewLookup(nlp.Text)),
		Bind(contexts.NewConcatOffset(-1, 1), feature.NewLookup(nlp.Pos)),
		Bind(contexts.NewChildren(), feature.NewLookupWithFallback([]string{nlp.Lemma}, feature.NewLookup(nlp.Text))),
		BindContext(contexts.NewRootPath(), feature.NewJoined(feature.NewLookup(nlp.Dep))),
	}
}

// corpus builds labelled instances over small parsed sentences.
func corpus() []*nlp.Focus {
	var foci []*nlp.Focus
	sentences := []struct {
		words []string
		pos   []string
		heads []int
		focus int
		label string
	}{
		{[]string{"dogs", "run", "fast"}, []string{"NNS", "VBP", "RB"}, []int{1, -1, 1}, 1, "run.01"},
		{[]string{"she", "runs", "a", "company"}, []string{"PRP", "VBZ", "DT", "NN"}, []int{1, -1, 3, 1}, 1, "run.02"},
		{[]string{"cats", "run", "home"}, []string{"NNS", "VBP", "NN"}, []int{1, -1, 1}, 1, "run.01"},
		{[]string{"he", "ran", "the", "shop"}, []string{"PRP", "VBD", "DT", "NN"}, []int{1, -1, 3, 1}, 1, "run.02"},
	}
	for i, s := range sentences {
		b := nlp.NewTreeBuilder()
		for j, w := range s.words {
			b.Add(map[string]any{nlp.Text: w, nlp.Pos: s.pos[j], nlp.Dep: "dep"})
			b.SetHead(j, s.heads[j])
		}
		tree, err := b.Build()
		if err != nil {
			panic(err)
		}
		f := nlp.NewFocus(i, tree, s.focus)
		f.SetLabel(s.label)
		foci = append(foci, f)
	}
	return foci
}

func TestEndToEndSingleOffsetLookup(t *testing.T) {
	model := vocab.NewModel()
	p, err := New(model, []Binding{Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Text))})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f := nlptest.Sequence("0 1 2 3 4 5 6", 3)
	feats, err := p.Extract(f)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []Feature{{Key: "Lookup(Text)OFFSET[0]", Value: "3"}}
	if !reflect.DeepEqual(feats, want) {
		t.Fatalf("Extract = %+v, want %+v", feats, want)
	}

	xs, err := p.Train(context.Background(), []*nlp.Focus{f})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	idx, ok := model.Features.Lookup(want[0].Symbol())
	if !ok {
		t.Fatalf("symbol %q missing from model", want[0].Symbol())
	}
	entries := xs[0].Entries()
	if len(entries) != 1 || entries[0].Index != idx || entries[0].Value != 1 {
		t.Errorf("entries = %+v, want single entry at %d", entries, idx)
	}
}

func TestNewRejectsCollisions(t *testing.T) {
	tests := []struct {
		name     string
		bindings []Binding
	}{
		{
			name: "same binding twice",
			bindings: []Binding{
				Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Text)),
				Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Text)),
			},
		},
		{
			name: "separate and concatenated single offset",
			bindings: []Binding{
				Bind(contexts.NewOffset(-1, 0), feature.NewLookup(nlp.Text)),
				Bind(contexts.NewConcatOffset(0), feature.NewLookup(nlp.Text)),
			},
		},
		{
			name: "any relation against one relation",
			bindings: []Binding{
				Bind(contexts.NewChildrenByRelation(), feature.NewLookup(nlp.Text)),
				Bind(contexts.NewChildrenByRelation("nsubj"), feature.NewLookup(nlp.Text)),
			},
		},
		{
			name: "one relation against any relation",
			bindings: []Binding{
				Bind(contexts.NewChildrenByRelation("obj", "nsubj"), feature.NewLookup(nlp.Text)),
				Bind(contexts.NewChildrenByRelation(), feature.NewLookup(nlp.Text)),
			},
		},
		{
			name:     "no bindings",
			bindings: nil,
		},
		{
			name:     "missing extractor",
			bindings: []Binding{Bind(contexts.NewOffset(0), nil)},
		},
		{
			name:     "no contexts",
			bindings: []Binding{Bind(contexts.NewConcatOffset(), feature.NewLookup(nlp.Text))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(vocab.NewModel(), tt.bindings)
			if !errors.Is(err, internalerr.ErrPipelineConfig) {
				t.Errorf("err = %v, want ErrPipelineConfig", err)
			}
		})
	}

	ok := []Binding{
		Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Text)),
		Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Lemma)),
		Bind(contexts.NewChildrenByRelation(), feature.NewLookup(nlp.Lemma)),
		Bind(contexts.NewChildrenByRelation("nsubj"), feature.NewLookup(nlp.Pos)),
		Bind(contexts.NewChildren(), feature.NewLookup(nlp.Text)),
	}
	if _, err := New(vocab.NewModel(), ok); err != nil {
		t.Errorf("distinct extractors on the same context should be accepted: %v", err)
	}
}

func TestProcessAllNilFocus(t *testing.T) {
	p, err := New(vocab.NewModel(), standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	foci := append(corpus(), nil)
	if _, err := p.ProcessAll(context.Background(), foci); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTrainDeterministic(t *testing.T) {
	run := func() (*vocab.Model, []classifier.SparseInstance) {
		model := vocab.NewModel()
		p, err := New(model, standardBindings(), WithWorkers(4))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		xs, err := p.Train(context.Background(), corpus())
		if err != nil {
			t.Fatalf("Train: %v", err)
		}
		return model, xs
	}

	m1, xs1 := run()
	m2, xs2 := run()

	if !reflect.DeepEqual(m1.Features.Keys(), m2.Features.Keys()) {
		t.Error("feature vocabularies differ between runs")
	}
	if !reflect.DeepEqual(m1.Labels.Keys(), m2.Labels.Keys()) {
		t.Error("label vocabularies differ between runs")
	}
	if !reflect.DeepEqual(xs1, xs2) {
		t.Error("sparse instances differ between runs")
	}

	for i, x := range xs1 {
		if x.ID() != i {
			t.Errorf("instance %d has id %d", i, x.ID())
		}
	}
	if xs1[0].Target() != 0 || xs1[1].Target() != 1 || xs1[2].Target() != 0 {
		t.Errorf("targets = %d,%d,%d", xs1[0].Target(), xs1[1].Target(), xs1[2].Target())
	}
	if !m1.Frozen() {
		t.Error("model should be frozen after training")
	}
}

func TestFreezeMonotonicAcrossRoundTrip(t *testing.T) {
	model := vocab.NewModel()
	p, err := New(model, standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	train, err := p.Train(context.Background(), corpus())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	data, err := model.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	loaded, err := vocab.FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	for _, k := range model.Features.Keys() {
		want, _ := model.Features.Lookup(k)
		got, ok := loaded.Features.Lookup(k)
		if !ok || got != want {
			t.Fatalf("Lookup(%q) = %d,%v after round trip, want %d", k, got, ok, want)
		}
	}

	reloaded, err := New(loaded, standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, f := range corpus() {
		x, err := reloaded.Process(f)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if !reflect.DeepEqual(x.Entries(), train[i].Entries()) {
			t.Errorf("instance %d vectorised differently after reload", i)
		}
	}
}

func TestProcessSkipsUnseenFeatures(t *testing.T) {
	model := vocab.NewModel()
	bindings := []Binding{Bind(contexts.NewOffset(0), feature.NewLookup(nlp.Text))}
	p, err := New(model, bindings, WithMetrics(metrics.New()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Train(context.Background(), []*nlp.Focus{nlptest.Sequence("a b c", 1)}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	size := model.Features.Len()

	x, err := p.Process(nlptest.Sequence("a z c", 1))
	if err != nil {
		t.Fatalf("Process should not fail on unseen features: %v", err)
	}
	if x.Len() != 0 {
		t.Errorf("unseen feature produced entries %+v", x.Entries())
	}
	if x.Target() != classifier.NoTarget {
		t.Errorf("unlabelled instance target = %d", x.Target())
	}
	if model.Features.Len() != size {
		t.Error("Process must not grow the model")
	}
}

func TestProcessDoesNotAllocateBeforeTraining(t *testing.T) {
	model := vocab.NewModel()
	p, err := New(model, standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Process(corpus()[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if model.Features.Len() != 0 || model.Frozen() {
		t.Error("Process must leave an untrained model untouched")
	}
}

func TestTrainOnFrozenModel(t *testing.T) {
	model := vocab.NewModel()
	model.Freeze()
	p, err := New(model, standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Train(context.Background(), corpus())
	if !errors.Is(err, internalerr.ErrFrozenVocabulary) {
		t.Errorf("err = %v, want ErrFrozenVocabulary", err)
	}
}

func TestTrainFailureLeavesModelUntouched(t *testing.T) {
	tokens := []*nlp.Token{nlp.NewToken(0), nlp.NewToken(1), nlp.NewToken(2)}
	cyclic := nlp.NewFocus(99, nlp.FromHeads(tokens, []int{nlp.NoHead, 2, 1}), 1)

	model := vocab.NewModel()
	p, err := New(model, standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	foci := append(corpus(), cyclic)
	_, err = p.Train(context.Background(), foci)
	if !errors.Is(err, internalerr.ErrMalformedTree) {
		t.Fatalf("err = %v, want ErrMalformedTree", err)
	}
	if model.Frozen() {
		t.Error("failed training must not freeze the model")
	}
	if model.Features.Len() != 0 || model.Labels.Len() != 0 {
		t.Error("failed training must not allocate")
	}

	if _, err := p.Train(context.Background(), corpus()); err != nil {
		t.Errorf("training should succeed after a failed attempt: %v", err)
	}
}

func TestProcessAllPreservesOrder(t *testing.T) {
	model := vocab.NewModel()
	var calls []int
	p, err := New(model, standardBindings(), WithWorkers(3), WithProgress(func(done, total int) {
		calls = append(calls, done)
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	train, err := p.Train(context.Background(), corpus())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(calls) != len(train) || calls[len(calls)-1] != len(train) {
		t.Errorf("progress calls = %v", calls)
	}

	foci := corpus()
	xs, err := p.ProcessAll(context.Background(), foci)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	for i, x := range xs {
		if x.ID() != foci[i].ID {
			t.Errorf("position %d holds instance %d", i, x.ID())
		}
		if !reflect.DeepEqual(x.Entries(), train[i].Entries()) {
			t.Errorf("instance %d differs between Train and ProcessAll", i)
		}
		if x.Target() != train[i].Target() {
			t.Errorf("instance %d target %d, want %d", i, x.Target(), train[i].Target())
		}
	}
}

func TestProcessAllCancelled(t *testing.T) {
	p, err := New(vocab.NewModel(), standardBindings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.ProcessAll(ctx, corpus()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
