// Package testutil provides shared test helpers for tag indexes and
// deterministic image factories.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/index"
)

// TestIndex opens an in-memory tag index that is closed with the test.
func TestIndex(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var idSeq atomic.Int64

// Factory returns a seeded factory over the default pool whose ids are
// readable and unique across the test binary.
func Factory(seed uint64) *generator.Factory {
	f := generator.NewFactory(generator.NewSource(seed), generator.StaticPool(generator.DefaultTagPool))
	f.NewID = func() string { return fmt.Sprintf("img-%d", idSeq.Add(1)) }
	return f
}
