package virtual

import "math"

// SizeCache stores the last real measurement reported for every unique key.
//
// Entries are never evicted: a key that leaves the list keeps its size so it is estimated
// correctly if it comes back (for example after a reorder). The running average of all
// measurements replaces the static estimate once at least one size is known.
type SizeCache[K comparable] struct {
	sizes        map[K]float64
	total        float64
	estimateSize float64
}

// NewSizeCache creates an empty cache that falls back to estimateSize.
func NewSizeCache[K comparable](estimateSize float64) *SizeCache[K] {
	return &SizeCache[K]{
		sizes:        make(map[K]float64),
		estimateSize: clampSize(estimateSize),
	}
}

// Record stores size for key. It returns the previous measurement (if any) and whether the stored
// value changed; repeating an identical report is a no-op.
func (c *SizeCache[K]) Record(key K, size float64) (prev float64, had, changed bool) {
	size = clampSize(size)
	prev, had = c.sizes[key]
	if had && prev == size {
		return prev, true, false
	}

	c.sizes[key] = size
	c.total += size - prev
	return prev, had, true
}

// Measured returns the real size recorded for key.
func (c *SizeCache[K]) Measured(key K) (float64, bool) {
	size, ok := c.sizes[key]
	return size, ok
}

// SizeOf returns the measured size of key, or the current estimate when it was never measured.
func (c *SizeCache[K]) SizeOf(key K) float64 {
	if size, ok := c.sizes[key]; ok {
		return size
	}
	return c.Estimate()
}

// Estimate returns the size assumed for unmeasured items.
func (c *SizeCache[K]) Estimate() float64 {
	if avg, ok := c.Average(); ok {
		return avg
	}
	return c.estimateSize
}

// Average returns the mean of all measurements, false when nothing was measured yet.
func (c *SizeCache[K]) Average() (float64, bool) {
	if len(c.sizes) == 0 {
		return 0, false
	}
	return c.total / float64(len(c.sizes)), true
}

// SetEstimateSize changes the static fallback used before the first measurement.
func (c *SizeCache[K]) SetEstimateSize(size float64) {
	c.estimateSize = clampSize(size)
}

// Count returns the number of keys with a real measurement.
func (c *SizeCache[K]) Count() int {
	return len(c.sizes)
}

// Reset drops every measurement.
func (c *SizeCache[K]) Reset() {
	c.sizes = make(map[K]float64)
	c.total = 0
}

func clampSize(size float64) float64 {
	if size < 0 || math.IsNaN(size) {
		return 0
	}
	return size
}
