package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutLastWriteWins(t *testing.T) {
	s := NewStore("turn-1")
	s.Put("linkedin", Artifact{Data: "old", MimeType: "image/png"})
	s.Put("linkedin", Artifact{Data: "new", MimeType: "image/png"})

	drained := s.Drain()
	assert.Len(t, drained, 1)
	assert.Equal(t, "new", drained["linkedin"].Data)
}

func TestDrainIdempotence(t *testing.T) {
	s := NewStore("turn-2")
	s.Put("linkedin", Artifact{Data: "a"})
	s.Put("instagram", Artifact{Data: "b"})

	first := s.Drain()
	assert.Len(t, first, 2)

	second := s.Drain()
	assert.Empty(t, second)
}

func TestFallbackMergedOnDrain(t *testing.T) {
	s := NewStore("turn-3")
	s.Put("linkedin", Artifact{Data: "from-store"})
	PutFallback("turn-3", "linkedin", Artifact{Data: "from-fallback"})
	PutFallback("turn-3", "x", Artifact{Data: "only-fallback"})

	drained := s.Drain()
	assert.Equal(t, "from-fallback", drained["linkedin"].Data)
	assert.Equal(t, "only-fallback", drained["x"].Data)

	// Fallback cleared by the drain.
	assert.Empty(t, s.Drain())
}

func TestNewStoreClearsStaleFallback(t *testing.T) {
	PutFallback("turn-4", "linkedin", Artifact{Data: "stale"})
	s := NewStore("turn-4")
	assert.Empty(t, s.Drain())
}

func TestFallbackIsolatedPerTurn(t *testing.T) {
	a := NewStore("turn-5a")
	b := NewStore("turn-5b")
	PutFallback("turn-5a", "linkedin", Artifact{Data: "a"})

	assert.Empty(t, b.Drain())
	assert.Len(t, a.Drain(), 1)
}

func TestSaveWritesStoreAndFallback(t *testing.T) {
	s := NewStore("turn-6")
	ctx := ContextWithStore(context.Background(), s)
	Save(ctx, "turn-6", "instagram", Artifact{Data: "img", MimeType: "image/png"})

	drained := s.Drain()
	assert.Equal(t, "img", drained["instagram"].Data)
}

func TestSaveWithoutContextStore(t *testing.T) {
	s := NewStore("turn-7")
	// Context without the store value, as seen from a detached tool runtime.
	Save(context.Background(), "turn-7", "x", Artifact{Data: "img"})

	drained := s.Drain()
	assert.Equal(t, "img", drained["x"].Data)
}

func TestStoreFromContextMissing(t *testing.T) {
	_, ok := StoreFromContext(context.Background())
	assert.False(t, ok)
}
