// Package vocab holds the feature model: the stable mapping from symbolic
// feature keys and labels to vector indices, and its persisted artifact form.
package vocab

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Model bundles the feature and label vocabularies shared by training and
// inference.
type Model struct {
	ID       string
	Created  time.Time
	Features *Vocabulary
	Labels   *Vocabulary
}

// NewModel creates an empty, mutable model with a fresh ID.
func NewModel() *Model {
	return &Model{
		ID:       ulid.Make().String(),
		Created:  time.Now().UTC(),
		Features: NewVocabulary(),
		Labels:   NewVocabulary(),
	}
}

// Freeze makes both vocabularies read-only.
func (m *Model) Freeze() {
	m.Features.Freeze()
	m.Labels.Freeze()
}

// Frozen reports whether the model has been frozen.
func (m *Model) Frozen() bool {
	return m.Features.Frozen() && m.Labels.Frozen()
}

// Clone returns a mutable copy of m with the same ID and indices. Growing
// the copy leaves m unchanged.
func (m *Model) Clone() *Model {
	return &Model{
		ID:       m.ID,
		Created:  m.Created,
		Features: m.Features.clone(),
		Labels:   m.Labels.clone(),
	}
}

// Label returns the label stored at class index i.
func (m *Model) Label(i int) (string, bool) {
	return m.Labels.Key(i)
}
