package service

import (
	"context"
	"testing"

	"github.com/mmynk/settleup/internal/storage/memory"
)

// newTestStore loads testdata/groups.json: a three person ski trip with
// expenses in January and February, and a two person flat with none.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()

	store, err := memory.LoadFile(context.Background(), "testdata/groups.json")
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
