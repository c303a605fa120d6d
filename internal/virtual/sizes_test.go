package virtual_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/virtuallist/internal/virtual"
)

func TestSizeCache_Estimate(t *testing.T) {
	cache := virtual.NewSizeCache[string](50)

	assert.Equal(t, 0, cache.Count())
	assert.Equal(t, 50.0, cache.SizeOf("anything"))
	_, ok := cache.Average()
	assert.False(t, ok)

	cache.Record("a", 80)
	assert.Equal(t, 80.0, cache.SizeOf("a"))
	assert.Equal(t, 80.0, cache.SizeOf("unmeasured"), "one sample becomes the estimate")

	cache.Record("b", 40)
	assert.Equal(t, 60.0, cache.SizeOf("unmeasured"))
	assert.Equal(t, 2, cache.Count())
}

func TestSizeCache_Record(t *testing.T) {
	cache := virtual.NewSizeCache[int](20)

	prev, had, changed := cache.Record(1, 30)
	assert.Equal(t, 0.0, prev)
	assert.False(t, had)
	assert.True(t, changed)

	_, had, changed = cache.Record(1, 30)
	assert.True(t, had)
	assert.False(t, changed, "identical reports are idempotent")

	prev, _, changed = cache.Record(1, 50)
	assert.Equal(t, 30.0, prev)
	assert.True(t, changed)
	avg, ok := cache.Average()
	assert.True(t, ok)
	assert.Equal(t, 50.0, avg, "overwrite replaces the sample in the average")

	cache.Record(2, -10)
	size, ok := cache.Measured(2)
	assert.True(t, ok)
	assert.Equal(t, 0.0, size, "negative sizes clamp to zero")
}

func TestSizeCache_Reset(t *testing.T) {
	cache := virtual.NewSizeCache[string](10)
	cache.Record("a", 100)
	cache.SetEstimateSize(25)

	cache.Reset()
	assert.Equal(t, 0, cache.Count())
	assert.Equal(t, 25.0, cache.Estimate())
}
