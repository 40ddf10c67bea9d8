package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/sensekit/pkg/sensekit/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, New())
}

func TestLoadDoesNotShareClassifierBytes(t *testing.T) {
	ctx := context.Background()
	s := New()
	weights := []byte{9, 9}
	if err := s.SaveModel(ctx, "m", storetest.TrainedModel(t, "a=b"), weights); err != nil {
		t.Fatal(err)
	}
	weights[0] = 0

	_, blob, err := s.LoadModel(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if blob[0] != 9 {
		t.Error("saved classifier bytes were modified through the caller's slice")
	}
	blob[1] = 0
	_, again, _ := s.LoadModel(ctx, "m")
	if again[1] != 9 {
		t.Error("loaded classifier bytes alias the stored copy")
	}
}
