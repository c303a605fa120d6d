package virtual

// prefixIndex answers "how much space do the first i items take" and its inverse in O(log n).
//
// Measured sizes and the number of measured positions live in two parallel Fenwick trees.
// Unmeasured positions are charged the current estimate at query time, so a moving average never
// forces a rebuild.
type prefixIndex struct {
	// sums holds measured sizes (1-based Fenwick layout).
	sums []float64

	// counts holds 1 for every measured position (1-based Fenwick layout).
	counts []int

	// n is the number of positions.
	n int

	// top is the highest power of two <= n, the first descent step.
	top int
}

// build resets the index for n positions in O(n). measuredAt reports the real size of a position.
func (p *prefixIndex) build(n int, measuredAt func(i int) (float64, bool)) {
	p.n = n
	p.sums = make([]float64, n+1)
	p.counts = make([]int, n+1)
	p.top = 0
	if n == 0 {
		return
	}

	for i := range n {
		if size, ok := measuredAt(i); ok {
			p.sums[i+1] = size
			p.counts[i+1] = 1
		}
	}
	for i := 1; i <= n; i++ {
		parent := i + (i & -i)
		if parent <= n {
			p.sums[parent] += p.sums[i]
			p.counts[parent] += p.counts[i]
		}
	}

	p.top = 1
	for p.top<<1 <= n {
		p.top <<= 1
	}
}

// add applies a size delta (and a measured-count delta) at position i.
func (p *prefixIndex) add(i int, delta float64, countDelta int) {
	if i < 0 || i >= p.n {
		return
	}
	for j := i + 1; j <= p.n; j += j & -j {
		p.sums[j] += delta
		p.counts[j] += countDelta
	}
}

// prefix returns the total size of the first i items.
func (p *prefixIndex) prefix(i int, estimate float64) float64 {
	if i <= 0 {
		return 0
	}
	if i > p.n {
		i = p.n
	}

	sum, measured := 0.0, 0
	for j := i; j > 0; j -= j & -j {
		sum += p.sums[j]
		measured += p.counts[j]
	}
	return sum + float64(i-measured)*estimate
}

// total returns the size of every item.
func (p *prefixIndex) total(estimate float64) float64 {
	return p.prefix(p.n, estimate)
}

// search returns the largest i in [0, n] such that prefix(i) <= offset, i.e. the number of items
// that end at or before offset.
func (p *prefixIndex) search(offset, estimate float64) int {
	return p.descend(offset, estimate, false)
}

// searchBefore returns the largest i in [0, n] such that prefix(i) < offset.
func (p *prefixIndex) searchBefore(offset, estimate float64) int {
	return p.descend(offset, estimate, true)
}

func (p *prefixIndex) descend(offset, estimate float64, strict bool) int {
	if offset < 0 || p.n == 0 {
		return 0
	}

	pos := 0
	remaining := offset
	for step := p.top; step > 0; step >>= 1 {
		next := pos + step
		if next > p.n {
			continue
		}
		// Node next covers exactly step positions ending at next.
		weight := p.sums[next] + float64(step-p.counts[next])*estimate
		if weight < remaining || (!strict && weight == remaining) {
			pos = next
			remaining -= weight
		}
	}
	return pos
}
