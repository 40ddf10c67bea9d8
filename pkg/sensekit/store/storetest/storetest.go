// Package storetest holds behaviour checks shared by store.ModelStore
// implementations.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/store"
	"github.com/cognicore/sensekit/pkg/sensekit/vocab"
)

// TrainedModel returns a small frozen model.
func TrainedModel(t *testing.T, features ...string) *vocab.Model {
	t.Helper()
	m := vocab.NewModel()
	for _, f := range features {
		if _, err := m.Features.Index(f); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []string{"run.01", "run.02"} {
		if _, err := m.Labels.Index(l); err != nil {
			t.Fatal(err)
		}
	}
	m.Freeze()
	return m
}

// Run exercises the ModelStore contract against s.
func Run(t *testing.T, s store.ModelStore) {
	t.Helper()
	ctx := context.Background()

	m := TrainedModel(t, "Lookup(Text)OFFSET[0]=run", "Lookup(Text)OFFSET[1]=home")
	weights := []byte{1, 2, 3, 4}

	if err := s.SaveModel(ctx, "verbs", m, weights); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	loaded, blob, err := s.LoadModel(ctx, "verbs")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if loaded.ID != m.ID {
		t.Errorf("ID = %s, want %s", loaded.ID, m.ID)
	}
	if !loaded.Frozen() {
		t.Error("loaded model should be frozen")
	}
	if !reflect.DeepEqual(loaded.Features.Keys(), m.Features.Keys()) {
		t.Errorf("features = %v, want %v", loaded.Features.Keys(), m.Features.Keys())
	}
	if !reflect.DeepEqual(loaded.Labels.Keys(), m.Labels.Keys()) {
		t.Errorf("labels = %v, want %v", loaded.Labels.Keys(), m.Labels.Keys())
	}
	if !reflect.DeepEqual(blob, weights) {
		t.Errorf("classifier = %v, want %v", blob, weights)
	}

	// Replacing keeps a single entry under the name
	replacement := TrainedModel(t, "x=1")
	if err := s.SaveModel(ctx, "verbs", replacement, nil); err != nil {
		t.Fatalf("SaveModel replace: %v", err)
	}
	if err := s.SaveModel(ctx, "nouns", m, weights); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	infos, err := s.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 models, got %d", len(infos))
	}
	if infos[0].Name != "nouns" || infos[1].Name != "verbs" {
		t.Errorf("models not sorted by name: %s, %s", infos[0].Name, infos[1].Name)
	}
	if infos[1].ModelID != replacement.ID || infos[1].Features != 1 || infos[1].Labels != 2 {
		t.Errorf("verbs info = %+v", infos[1])
	}
	if !infos[0].Created.Equal(m.Created) {
		t.Errorf("Created = %v, want %v", infos[0].Created, m.Created)
	}

	if err := s.DeleteModel(ctx, "nouns"); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}
	if _, _, err := s.LoadModel(ctx, "nouns"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("LoadModel after delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteModel(ctx, "nouns"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("DeleteModel twice err = %v, want ErrNotFound", err)
	}
	if err := s.SaveModel(ctx, "", m, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("SaveModel without name err = %v, want ErrInvalidInput", err)
	}
}
