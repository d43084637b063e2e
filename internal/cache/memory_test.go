package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-analyzer/backend/internal/nlu"
)

func annotationFor(label string) *nlu.Annotation {
	return &nlu.Annotation{Sentiment: nlu.Sentiment{Label: label, Score: 0.5}}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, 100)
	ctx := context.Background()

	_, found := c.Get(ctx, "some text")
	assert.False(t, found)

	c.Set(ctx, "some text", annotationFor("positive"))

	got, found := c.Get(ctx, "some text")
	require.True(t, found)
	assert.Equal(t, "positive", got.Sentiment.Label)

	// Different text, different entry
	_, found = c.Get(ctx, "other text")
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, 100)
	ctx := context.Background()

	c.Set(ctx, "some text", annotationFor("positive"))
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get(ctx, "some text")
	assert.False(t, found, "expired entries must read as misses")
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(time.Minute, 2)
	ctx := context.Background()

	c.Set(ctx, "first", annotationFor("positive"))
	time.Sleep(time.Millisecond)
	c.Set(ctx, "second", annotationFor("negative"))
	time.Sleep(time.Millisecond)
	c.Set(ctx, "third", annotationFor("neutral"))

	_, found := c.Get(ctx, "first")
	assert.False(t, found, "oldest entry is evicted at capacity")

	_, found = c.Get(ctx, "third")
	assert.True(t, found)
}

func TestKeyIsStableAndPrefixed(t *testing.T) {
	assert.Equal(t, Key("some text"), Key("some text"))
	assert.NotEqual(t, Key("some text"), Key("other text"))
	assert.Contains(t, Key("some text"), "annotation:")
}
