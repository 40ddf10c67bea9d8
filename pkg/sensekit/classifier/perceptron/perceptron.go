// Package perceptron implements an averaged multiclass perceptron over
// sparse instances.
package perceptron

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sort"

	"github.com/cognicore/sensekit/pkg/sensekit/classifier"
	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
)

// DefaultEpochs is used when Epochs is not positive.
const DefaultEpochs = 10

var _ classifier.Classifier = (*Perceptron)(nil)

// Perceptron keeps one sparse weight vector per class. After training the
// weights hold the average over all updates.
type Perceptron struct {
	Epochs int

	classes []int
	weights map[int]map[int]float64
}

// New returns an untrained perceptron.
func New(epochs int) *Perceptron {
	return &Perceptron{Epochs: epochs}
}

// Train runs Epochs passes over the instances in the given order. Instances
// without a target are ignored. Previously learned weights are discarded.
func (p *Perceptron) Train(ctx context.Context, instances []classifier.SparseInstance) error {
	epochs := p.Epochs
	if epochs <= 0 {
		epochs = DefaultEpochs
	}

	seen := make(map[int]struct{})
	var classes []int
	for _, x := range instances {
		if x.Target() == classifier.NoTarget {
			continue
		}
		if _, ok := seen[x.Target()]; !ok {
			seen[x.Target()] = struct{}{}
			classes = append(classes, x.Target())
		}
	}
	if len(classes) == 0 {
		return fmt.Errorf("%w: no labelled instances", internalerr.ErrInvalidInput)
	}
	sort.Ints(classes)

	// w holds the current weights, u the update-time weighted sum used for
	// averaging: avg = w - u/c.
	w := make(map[int]map[int]float64, len(classes))
	u := make(map[int]map[int]float64, len(classes))
	for _, c := range classes {
		w[c] = make(map[int]float64)
		u[c] = make(map[int]float64)
	}
	// Training runs on a scratch perceptron so a cancelled run keeps the
	// previous weights.
	work := &Perceptron{classes: classes, weights: w}

	c := 1.0
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, x := range instances {
			gold := x.Target()
			if gold == classifier.NoTarget {
				continue
			}
			if guess := work.Classify(x); guess != gold {
				x.Each(func(i int, v float64) {
					w[gold][i] += v
					u[gold][i] += c * v
					if guess != classifier.NoTarget {
						w[guess][i] -= v
						u[guess][i] -= c * v
					}
				})
			}
			c++
		}
	}

	avg := make(map[int]map[int]float64, len(classes))
	for _, cl := range classes {
		avg[cl] = make(map[int]float64, len(w[cl]))
		for i, v := range w[cl] {
			if a := v - u[cl][i]/c; a != 0 {
				avg[cl][i] = a
			}
		}
	}
	p.classes = classes
	p.weights = avg
	return nil
}

// Score returns the activation of every known class.
func (p *Perceptron) Score(x classifier.SparseInstance) map[int]float64 {
	scores := make(map[int]float64, len(p.classes))
	for _, c := range p.classes {
		wc := p.weights[c]
		s := 0.0
		x.Each(func(i int, v float64) {
			s += wc[i] * v
		})
		scores[c] = s
	}
	return scores
}

// Classify returns the highest scoring class, preferring the lowest class
// index on ties. An untrained perceptron returns NoTarget.
func (p *Perceptron) Classify(x classifier.SparseInstance) int {
	if len(p.classes) == 0 {
		return classifier.NoTarget
	}
	scores := p.Score(x)
	best := p.classes[0]
	for _, c := range p.classes[1:] {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}

// Classes returns the class indices seen during training.
func (p *Perceptron) Classes() []int {
	return append([]int(nil), p.classes...)
}

type snapshot struct {
	Epochs  int
	Classes []int
	Weights map[int]map[int]float64
}

// MarshalBinary encodes the trained weights with encoding/gob.
func (p *Perceptron) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	s := snapshot{Epochs: p.Epochs, Classes: p.classes, Weights: p.weights}
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode perceptron: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores weights written by MarshalBinary.
func (p *Perceptron) UnmarshalBinary(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("%w: perceptron: %v", internalerr.ErrArtifactFormat, err)
	}
	p.Epochs = s.Epochs
	p.classes = s.Classes
	p.weights = s.Weights
	if p.weights == nil {
		p.weights = make(map[int]map[int]float64)
	}
	return nil
}

// FromBytes decodes a perceptron written by MarshalBinary.
func FromBytes(data []byte) (*Perceptron, error) {
	p := &Perceptron{}
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}
