package sensekit

import (
	"context"
	"encoding"
	"fmt"

	"github.com/cognicore/sensekit/pkg/sensekit/classifier"
	"github.com/cognicore/sensekit/pkg/sensekit/classifier/perceptron"
	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
	"github.com/cognicore/sensekit/pkg/sensekit/pipeline"
	"github.com/cognicore/sensekit/pkg/sensekit/resource"
	"github.com/cognicore/sensekit/pkg/sensekit/store"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

// Annotator is the main sense annotation facade: it ties resource lookups,
// the feature pipeline and a classifier together.
type Annotator struct {
	model      *vocab.Model
	pipeline   *pipeline.Pipeline
	classifier classifier.Classifier
	resources  []*resource.Annotator
	store      store.ModelStore

	bindings        []pipeline.Binding
	pipelineOptions []pipeline.Option
}

// Options configures an Annotator
type Options struct {
	// Model defaults to a new empty model.
	Model    *vocab.Model
	Bindings []pipeline.Binding
	// Classifier defaults to an averaged perceptron.
	Classifier      classifier.Classifier
	Resources       []*resource.Annotator
	Store           store.ModelStore
	PipelineOptions []pipeline.Option
}

// New creates an Annotator with the given dependencies
func New(opts Options) (*Annotator, error) {
	model := opts.Model
	if model == nil {
		model = vocab.NewModel()
	}
	p, err := pipeline.New(model, opts.Bindings, opts.PipelineOptions...)
	if err != nil {
		return nil, err
	}
	clf := opts.Classifier
	if clf == nil {
		clf = perceptron.New(perceptron.DefaultEpochs)
	}
	return &Annotator{
		model:      model,
		pipeline:   p,
		classifier: clf,
		resources:  opts.Resources,
		store:      opts.Store,

		bindings:        append([]pipeline.Binding(nil), opts.Bindings...),
		pipelineOptions: opts.PipelineOptions,
	}, nil
}

// Load restores a model and perceptron weights saved under name and
// rebuilds the pipeline over them.
func Load(ctx context.Context, st store.ModelStore, name string, opts Options) (*Annotator, error) {
	model, blob, err := st.LoadModel(ctx, name)
	if err != nil {
		return nil, err
	}
	clf, err := perceptron.FromBytes(blob)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}
	opts.Model = model
	opts.Classifier = clf
	opts.Store = st
	return New(opts)
}

// Close releases the store, if any
func (a *Annotator) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Model returns the feature model
func (a *Annotator) Model() *vocab.Model {
	return a.model
}

// Pipeline returns the feature pipeline
func (a *Annotator) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Train builds the feature model from labelled foci and trains the
// classifier on the resulting instances, which are returned.
//
// The model is grown on a copy that replaces the current one only once the
// classifier has trained, so a failed call can be retried on the same
// Annotator.
func (a *Annotator) Train(ctx context.Context, foci []*nlp.Focus) ([]classifier.SparseInstance, error) {
	if a.model.Frozen() {
		return nil, fmt.Errorf("extract features: %w: model %s was already trained", internalerr.ErrFrozenVocabulary, a.model.ID)
	}
	a.annotate(treesOf(foci))

	model := a.model.Clone()
	p, err := pipeline.New(model, a.bindings, a.pipelineOptions...)
	if err != nil {
		return nil, err
	}
	instances, err := p.Train(ctx, foci)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}
	if err := a.classifier.Train(ctx, instances); err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}

	a.model = model
	a.pipeline = p
	return instances, nil
}

// Predict returns the predicted label for a single focus
func (a *Annotator) Predict(f *nlp.Focus) (string, error) {
	a.annotate(treesOf([]*nlp.Focus{f}))

	x, err := a.pipeline.Process(f)
	if err != nil {
		return "", err
	}
	return a.label(a.classifier.Classify(x))
}

// Annotate predicts a sense for every token with a Predicate feature and
// stores it under the Sense feature. It returns the number of tokens labelled.
func (a *Annotator) Annotate(ctx context.Context, trees ...*nlp.Tree) (int, error) {
	a.annotate(trees)

	foci := nlp.PredicateFoci(trees)
	instances, err := a.pipeline.ProcessAll(ctx, foci)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, x := range instances {
		label, err := a.label(a.classifier.Classify(x))
		if err != nil {
			continue
		}
		foci[i].Token().SetFeature(nlp.Sense, label)
		n++
	}
	return n, nil
}

// Save stores the model and classifier under name
func (a *Annotator) Save(ctx context.Context, name string) error {
	if a.store == nil {
		return fmt.Errorf("%w: no model store configured", internalerr.ErrInvalidInput)
	}
	m, ok := a.classifier.(encoding.BinaryMarshaler)
	if !ok {
		return fmt.Errorf("%w: classifier %T cannot be serialised", internalerr.ErrInvalidInput, a.classifier)
	}
	blob, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return a.store.SaveModel(ctx, name, a.model, blob)
}

func (a *Annotator) label(class int) (string, error) {
	label, ok := a.model.Label(class)
	if !ok {
		return "", fmt.Errorf("class %d: %w", class, internalerr.ErrNotFound)
	}
	return label, nil
}

// annotate applies resource lookups to trees in place.
func (a *Annotator) annotate(trees []*nlp.Tree) {
	if len(a.resources) == 0 {
		return
	}
	for _, t := range trees {
		for _, r := range a.resources {
			r.Annotate(t)
		}
	}
}

func treesOf(foci []*nlp.Focus) []*nlp.Tree {
	seen := make(map[*nlp.Tree]struct{})
	var trees []*nlp.Tree
	for _, f := range foci {
		if _, ok := seen[f.Tree]; ok {
			continue
		}
		seen[f.Tree] = struct{}{}
		trees = append(trees, f.Tree)
	}
	return trees
}
