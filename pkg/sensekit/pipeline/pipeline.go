// Package pipeline runs configured (context factory × extractor) bindings
// over focus instances and encodes the result as sparse instances through
// the feature model.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/sensekit/pkg/sensekit/classifier"
	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/metrics"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

// Pipeline extracts features for focus instances and maps them to vectors.
// Training is the only operation that writes to the model; Process never does.
type Pipeline struct {
	model    *vocab.Model
	bindings []Binding
	workers  int
	metrics  *metrics.Metrics
	progress func(done, total int)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of instances extracted concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMetrics records extraction metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress reports batch progress after each extracted instance.
// Calls are serialised.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New validates bindings and creates a pipeline over model. Bindings that
// could produce the same feature key are rejected with ErrPipelineConfig.
func New(model *vocab.Model, bindings []Binding, opts ...Option) (*Pipeline, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", internalerr.ErrPipelineConfig)
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("%w: no bindings", internalerr.ErrPipelineConfig)
	}

	owner := make(map[string]int)
	var declared []declaredKey
	for i, b := range bindings {
		if !b.valid() {
			return nil, fmt.Errorf("%w: binding %d needs a context factory and exactly one extractor", internalerr.ErrPipelineConfig, i)
		}
		keys := b.Keys()
		if len(keys) == 0 {
			return nil, fmt.Errorf("%w: binding %d (%s) produces no contexts", internalerr.ErrPipelineConfig, i, b.ExtractorID())
		}
		for _, key := range keys {
			if prev, dup := owner[key]; dup {
				return nil, fmt.Errorf("%w: bindings %d and %d both produce feature key %q", internalerr.ErrPipelineConfig, prev, i, key)
			}
			owner[key] = i
			declared = append(declared, declaredKey{key: key, binding: i})
		}
	}

	// A wildcard key covers every concrete relation key under its prefix.
	for _, w := range declared {
		prefix, ok := wildcardPrefix(w.key)
		if !ok {
			continue
		}
		for _, d := range declared {
			if d.binding != w.binding && strings.HasPrefix(d.key, prefix) && strings.HasSuffix(d.key, "]") {
				return nil, fmt.Errorf("%w: bindings %d and %d both produce feature keys matching %q", internalerr.ErrPipelineConfig, w.binding, d.binding, w.key)
			}
		}
	}

	p := &Pipeline{
		model:    model,
		bindings: append([]Binding(nil), bindings...),
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type declaredKey struct {
	key     string
	binding int
}

// wildcardPrefix returns "X[" for a key of the form "X[*]".
func wildcardPrefix(key string) (string, bool) {
	if !strings.HasSuffix(key, contexts.AnyRelation) {
		return "", false
	}
	return strings.TrimSuffix(key, contexts.AnyRelation) + "[", true
}

// Model returns the feature model used by the pipeline.
func (p *Pipeline) Model() *vocab.Model {
	return p.model
}

// Extract returns the symbolic features of f in binding order.
func (p *Pipeline) Extract(f *nlp.Focus) ([]Feature, error) {
	var out []Feature
	emit := func(ft Feature) { out = append(out, ft) }
	for _, b := range p.bindings {
		ctxs, err := b.factory.Contexts(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.ExtractorID(), err)
		}
		for _, c := range ctxs {
			b.extract(c, emit)
		}
	}
	return out, nil
}

// Process vectorises a single instance for inference. It never allocates:
// features unknown to the model are skipped.
func (p *Pipeline) Process(f *nlp.Focus) (classifier.SparseInstance, error) {
	feats, err := p.Extract(f)
	if err != nil {
		p.metrics.ObserveError(metrics.ModeProcess)
		return classifier.SparseInstance{}, err
	}

	values := make(map[int]float64, len(feats))
	unseen := 0
	for _, ft := range feats {
		idx, ok := p.model.Features.Lookup(ft.Symbol())
		if !ok {
			unseen++
			continue
		}
		values[idx] = 1
	}

	target := classifier.NoTarget
	if label := f.Label(); label != "" {
		if idx, ok := p.model.Labels.Lookup(label); ok {
			target = idx
		}
	}

	p.metrics.ObserveInstance(metrics.ModeProcess, len(feats))
	p.metrics.ObserveUnseen(unseen)
	return classifier.NewSparseInstance(f.ID, target, values), nil
}

// ProcessAll vectorises instances concurrently. Output order matches input order.
func (p *Pipeline) ProcessAll(ctx context.Context, foci []*nlp.Focus) ([]classifier.SparseInstance, error) {
	out := make([]classifier.SparseInstance, len(foci))
	err := p.forEach(ctx, len(foci), func(i int) error {
		x, err := p.Process(foci[i])
		if err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		out[i] = x
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Train extracts features for every instance, grows the model in input
// order and freezes it. Instances get sequential ids starting at 0.
//
// Extraction runs concurrently and touches no shared state; allocation is a
// single sequential pass afterwards, so the resulting model depends only on
// the input order. If extraction fails the model is left unchanged.
func (p *Pipeline) Train(ctx context.Context, foci []*nlp.Focus) ([]classifier.SparseInstance, error) {
	if p.model.Frozen() {
		return nil, fmt.Errorf("%w: model %s was already trained", internalerr.ErrFrozenVocabulary, p.model.ID)
	}
	start := time.Now()

	extracted := make([][]Feature, len(foci))
	err := p.forEach(ctx, len(foci), func(i int) error {
		feats, err := p.Extract(foci[i])
		if err != nil {
			p.metrics.ObserveError(metrics.ModeTrain)
			return fmt.Errorf("instance %d: %w", i, err)
		}
		extracted[i] = feats
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]classifier.SparseInstance, len(foci))
	for i, feats := range extracted {
		values := make(map[int]float64, len(feats))
		for _, ft := range feats {
			idx, err := p.model.Features.Index(ft.Symbol())
			if err != nil {
				return nil, err
			}
			values[idx] = 1
		}

		target := classifier.NoTarget
		if label := foci[i].Label(); label != "" {
			idx, err := p.model.Labels.Index(label)
			if err != nil {
				return nil, err
			}
			target = idx
		}

		p.metrics.ObserveInstance(metrics.ModeTrain, len(feats))
		out[i] = classifier.NewSparseInstance(i, target, values)
	}

	p.model.Freeze()
	p.metrics.ObserveTraining(time.Since(start), p.model.Features.Len(), p.model.Labels.Len())
	return out, nil
}

// forEach runs fn for 0..n-1 on a bounded set of goroutines and stops at
// the first error or when ctx is cancelled.
func (p *Pipeline) forEach(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var mu sync.Mutex
	done := 0

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
			if p.progress != nil {
				mu.Lock()
				done++
				p.progress(done, n)
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}
