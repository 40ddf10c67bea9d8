package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
)

// Artifact format identifiers. Decode rejects anything else.
const (
	ArtifactFormat  = "sensekit.model"
	ArtifactVersion = 1
)

type artifact struct {
	Format   string    `json:"format"`
	Version  int       `json:"version"`
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	Features []string  `json:"features"`
	Labels   []string  `json:"labels"`
}

// Encode writes the model as a versioned JSON artifact. Keys are listed in
// index order so decoding reproduces every index exactly.
func (m *Model) Encode(w io.Writer) error {
	a := artifact{
		Format:   ArtifactFormat,
		Version:  ArtifactVersion,
		ID:       m.ID,
		Created:  m.Created,
		Features: m.Features.Keys(),
		Labels:   m.Labels.Keys(),
	}
	return json.NewEncoder(w).Encode(a)
}

// MarshalBinary returns the encoded artifact.
func (m *Model) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an artifact written by Encode. The returned model is frozen.
func Decode(r io.Reader) (*Model, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrArtifactFormat, err)
	}
	if a.Format != ArtifactFormat {
		return nil, fmt.Errorf("%w: format %q", internalerr.ErrArtifactFormat, a.Format)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", internalerr.ErrArtifactFormat, a.Version)
	}
	if _, err := ulid.ParseStrict(a.ID); err != nil {
		return nil, fmt.Errorf("%w: model id: %v", internalerr.ErrArtifactFormat, err)
	}

	features, err := fromKeys(a.Features)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	labels, err := fromKeys(a.Labels)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}

	return &Model{
		ID:       a.ID,
		Created:  a.Created,
		Features: features,
		Labels:   labels,
	}, nil
}

// FromBytes decodes an artifact held in memory.
func FromBytes(data []byte) (*Model, error) {
	return Decode(bytes.NewReader(data))
}
