package store

import (
	"context"
	"time"

	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

// ModelStore persists trained feature models next to their classifier weights
type ModelStore interface {
	Close() error

	// SaveModel stores m and the encoded classifier under name, replacing any previous entry
	SaveModel(ctx context.Context, name string, m *vocab.Model, classifier []byte) error
	// LoadModel returns the frozen model and classifier bytes saved under name
	LoadModel(ctx context.Context, name string) (*vocab.Model, []byte, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	DeleteModel(ctx context.Context, name string) error
}

// ModelInfo summarises a stored model
type ModelInfo struct {
	Name     string
	ModelID  string
	Created  time.Time
	Saved    time.Time
	Features int
	Labels   int
}

// Info describes m as it would be listed under name.
func Info(name string, m *vocab.Model, saved time.Time) ModelInfo {
	return ModelInfo{
		Name:     name,
		ModelID:  m.ID,
		Created:  m.Created,
		Saved:    saved,
		Features: m.Features.Len(),
		Labels:   m.Labels.Len(),
	}
}
