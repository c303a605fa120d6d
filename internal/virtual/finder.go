package virtual

// overs returns the index of the item under offset (header included), clamped into the list.
// An offset on an item boundary resolves to the first item starting there, zero-size items
// included.
func (v *Virtual[K]) overs(offset float64) int {
	n := len(v.param.UniqueIDs)
	rel := offset - v.param.SlotHeaderSize
	if rel <= 0 || n == 0 {
		return 0
	}

	estimate := v.sizes.Estimate()
	idx := v.index.search(rel, estimate)
	if idx > 0 && v.index.prefix(idx, estimate) == rel {
		idx = v.index.searchBefore(rel, estimate) + 1
	}
	return min(idx, n-1)
}

// follow moves the window to the current offset unless it already covers the keeps items
// starting at the item under it. A scroll after UniqueIDs was replaced always recomputes: the
// offset is already in terms of the new list, so the pending anchor is dropped.
func (v *Virtual[K]) follow() {
	n := len(v.param.UniqueIDs)
	keeps, buffer := v.param.Keeps, v.param.Buffer

	stale := v.pending != nil || v.rng.End < v.rng.Start || v.rng.End >= n
	v.pending = nil

	overs := v.overs(v.offset)
	strictEnd := min(overs+keeps-1, n-1)
	if !stale && overs >= v.rng.Start && strictEnd <= v.rng.End {
		return
	}

	var start, end int
	if v.direction == DirectionBackward {
		start = max(overs-buffer, 0)
		end = strictEnd
	} else {
		start = overs
		end = min(overs+keeps-1+buffer, n-1)
	}
	start, end = v.fitWindow(start, end)
	v.updateRange(start, end)
}

// relayout rebuilds the window around a, or from the top when a is nil.
func (v *Virtual[K]) relayout(a *anchor[K]) {
	n := len(v.param.UniqueIDs)
	if n == 0 {
		v.updateRange(0, -1)
		return
	}

	start := 0
	if a != nil {
		start = clampIndex(a.start, n)
		if idx, ok := v.positions[a.key]; ok {
			start = idx
			// Keep the anchor where it was on screen by moving the offset with it.
			lead := v.index.prefix(idx, v.sizes.Estimate())
			v.offset = clampSize(v.offset + lead - a.lead)
		}
	}

	end := min(start+v.param.Keeps-1+v.param.Buffer, n-1)
	start, end = v.fitWindow(start, end)
	v.updateRange(start, end)
}

// fitWindow clamps [start, end] into the list and widens it to at least keeps items.
func (v *Virtual[K]) fitWindow(start, end int) (int, int) {
	n := len(v.param.UniqueIDs)
	keeps := v.param.Keeps
	if n <= keeps {
		return 0, n - 1
	}

	start = clampIndex(start, n)
	end = clampIndex(end, n)
	if end < start {
		end = start
	}
	if end-start+1 < keeps {
		start = max(end-keeps+1, 0)
		end = min(start+keeps-1, n-1)
	}
	return start, end
}

// rangeFor computes the pads for [start, end].
func (v *Virtual[K]) rangeFor(start, end int) Range {
	n := len(v.param.UniqueIDs)
	if n == 0 || end < start {
		return emptyRange()
	}
	start, end = clampIndex(start, n), clampIndex(end, n)

	estimate := v.sizes.Estimate()
	total := v.index.total(estimate)
	return Range{
		Start:     start,
		End:       end,
		PadFront:  v.index.prefix(start, estimate),
		PadBehind: total - v.index.prefix(end+1, estimate),
	}
}

// currentAnchor describes the item at the start of the window.
func (v *Virtual[K]) currentAnchor() *anchor[K] {
	ids := v.param.UniqueIDs
	if v.rng.End < v.rng.Start || v.rng.Start >= len(ids) || v.index.n != len(ids) {
		return nil
	}
	return &anchor[K]{
		key:   ids[v.rng.Start],
		start: v.rng.Start,
		lead:  v.index.prefix(v.rng.Start, v.sizes.Estimate()),
	}
}

// windowLead returns the space before the window start, false while the range does not match the
// current list.
func (v *Virtual[K]) windowLead() (float64, bool) {
	n := len(v.param.UniqueIDs)
	if v.pending != nil || v.rng.End < v.rng.Start || v.rng.End >= n || v.index.n != n {
		return 0, false
	}
	return v.index.prefix(v.rng.Start, v.sizes.Estimate()), true
}
