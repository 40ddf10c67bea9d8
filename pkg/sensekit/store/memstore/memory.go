package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/store"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

type entry struct {
	info       store.ModelInfo
	artifact   []byte
	classifier []byte
}

// Store is an in-memory implementation of store.ModelStore for tests.
// Models are kept in encoded form so loads never share state with saves.
type Store struct {
	mu     sync.RWMutex
	models map[string]entry
}

var _ store.ModelStore = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{models: make(map[string]entry)}
}

// Close implements store.ModelStore.
func (s *Store) Close() error { return nil }

// SaveModel implements store.ModelStore.
func (s *Store) SaveModel(ctx context.Context, name string, m *vocab.Model, classifier []byte) error {
	if name == "" || m == nil {
		return fmt.Errorf("%w: model name and model are required", internalerr.ErrInvalidInput)
	}
	artifact, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[name] = entry{
		info:       store.Info(name, m, time.Now().UTC()),
		artifact:   artifact,
		classifier: append([]byte(nil), classifier...),
	}
	return nil
}

// LoadModel implements store.ModelStore.
func (s *Store) LoadModel(ctx context.Context, name string) (*vocab.Model, []byte, error) {
	s.mu.RLock()
	e, ok := s.models[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}

	m, err := vocab.FromBytes(e.artifact)
	if err != nil {
		return nil, nil, err
	}
	return m, append([]byte(nil), e.classifier...), nil
}

// ListModels implements store.ModelStore. Models are sorted by name.
func (s *Store) ListModels(ctx context.Context) ([]store.ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ModelInfo, 0, len(s.models))
	for _, e := range s.models {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteModel implements store.ModelStore.
func (s *Store) DeleteModel(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[name]; !ok {
		return fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}
	delete(s.models, name)
	return nil
}
