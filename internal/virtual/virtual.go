package virtual

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Option configures a Virtual.
type Option[K comparable] func(*Virtual[K])

// WithLogger sets the logger used for range change diagnostics.
func WithLogger[K comparable](logger zerolog.Logger) Option[K] {
	return func(v *Virtual[K]) {
		v.logger = logger
	}
}

// anchor remembers which item sat at the start of the window before the list changed.
type anchor[K comparable] struct {
	key   K
	start int
	lead  float64
}

// Virtual computes which slice of a long list has to be materialized for a scroll offset.
//
// All calls are synchronous and must come from a single goroutine. The change callback runs inside
// the call that changed the range. After Destroy every call is a no-op.
type Virtual[K comparable] struct {
	param     *Config[K]
	sizes     *SizeCache[K]
	index     prefixIndex
	positions map[K]int

	rng       Range
	offset    float64
	direction Direction

	// pending is captured when UniqueIDs is replaced and consumed by HandleDataSourcesChange.
	pending *anchor[K]

	onChange func(Range)
	logger   zerolog.Logger
}

// New creates a Virtual for cfg. onChange is invoked with every new range and may be nil.
func New[K comparable](cfg Config[K], onChange func(Range), opts ...Option[K]) *Virtual[K] {
	cfg.normalize()
	cfg.UniqueIDs = append([]K(nil), cfg.UniqueIDs...)

	v := &Virtual[K]{
		param:    &cfg,
		sizes:    NewSizeCache[K](cfg.EstimateSize),
		onChange: onChange,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.reindex()
	v.rng = emptyRange()
	if n := len(cfg.UniqueIDs); n > 0 {
		start, end := v.fitWindow(0, min(cfg.Keeps-1, n-1))
		v.rng = v.rangeFor(start, end)
	}
	return v
}

// Destroy releases the callback and all state. Later calls do nothing.
func (v *Virtual[K]) Destroy() {
	if v.param == nil {
		return
	}
	v.logger.Debug().Str("component", "virtual").Int("measured", v.sizes.Count()).Msg("destroyed")

	v.param = nil
	v.onChange = nil
	v.pending = nil
	v.positions = nil
	v.sizes.Reset()
	v.index = prefixIndex{}
	v.rng = emptyRange()
	v.offset = 0
	v.direction = DirectionNone
}

// Destroyed reports whether Destroy was called.
func (v *Virtual[K]) Destroyed() bool {
	return v.param == nil
}

// UpdateParam changes one configuration field in place. Changing keeps recomputes the window
// immediately; other fields take effect on the next Handle call. The size cache is kept.
func (v *Virtual[K]) UpdateParam(name Param, value any) error {
	if v.param == nil {
		return nil
	}

	switch name {
	case ParamKeeps, ParamBuffer:
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParamValue, name, value)
		}
		if name == ParamBuffer {
			v.param.Buffer = max(n, 0)
			return nil
		}
		v.param.Keeps = max(n, 1)
		v.relayout(v.currentAnchor())

	case ParamEstimateSize, ParamSlotHeaderSize, ParamSlotFooterSize:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParamValue, name, value)
		}
		switch name {
		case ParamEstimateSize:
			v.param.EstimateSize = clampSize(f)
			v.sizes.SetEstimateSize(f)
		case ParamSlotHeaderSize:
			v.param.SlotHeaderSize = clampSize(f)
		default:
			v.param.SlotFooterSize = clampSize(f)
		}

	case ParamUniqueIDs:
		ids, ok := value.([]K)
		if !ok {
			return fmt.Errorf("%w: %s has type %T", ErrInvalidParamValue, name, value)
		}
		if v.pending == nil {
			v.pending = v.currentAnchor()
		}
		v.param.UniqueIDs = append([]K(nil), ids...)
		v.reindex()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// HandleDataSourcesChange recomputes the range after UniqueIDs changed, keeping the item that was
// at the start of the window in place when it still exists.
func (v *Virtual[K]) HandleDataSourcesChange() {
	if v.param == nil {
		return
	}
	a := v.pending
	v.pending = nil
	if a == nil {
		a = v.currentAnchor()
	}
	v.relayout(a)
}

// HandleSlotSizeChange recomputes the range after the header or footer size changed.
func (v *Virtual[K]) HandleSlotSizeChange() {
	v.HandleDataSourcesChange()
}

// HandleScroll moves the window for a new scroll offset (header included).
func (v *Virtual[K]) HandleScroll(offset float64) {
	if v.param == nil {
		return
	}
	offset = clampSize(offset)

	if offset < v.offset || offset == 0 {
		v.direction = DirectionBackward
	} else {
		v.direction = DirectionForward
	}
	v.offset = offset

	if len(v.param.UniqueIDs) == 0 {
		v.pending = nil
		v.updateRange(0, -1)
		return
	}
	v.follow()
}

// SaveSize records the real size of the item identified by key.
//
// The item at the start of the window keeps its on-screen position: the stored offset moves by
// however much the space before it changed (see Offset), then the window is re-checked.
func (v *Virtual[K]) SaveSize(key K, size float64) {
	if v.param == nil {
		return
	}

	leadBefore, anchored := v.windowLead()
	prev, had, changed := v.sizes.Record(key, size)
	if !changed {
		return
	}

	if pos, ok := v.positions[key]; ok {
		stored, _ := v.sizes.Measured(key)
		if had {
			v.index.add(pos, stored-prev, 0)
		} else {
			v.index.add(pos, stored, 1)
		}
	}

	if anchored {
		leadAfter, _ := v.windowLead()
		v.offset = clampSize(v.offset + leadAfter - leadBefore)
		v.follow()
	}
	// The estimate may have moved as well, so the pads are stale even for keys outside the list.
	v.updateRange(v.rng.Start, v.rng.End)
}

// GetRange returns the current range.
func (v *Virtual[K]) GetRange() Range {
	return v.rng
}

// GetOffset returns the scroll offset at which the item at index starts, header included.
// index is clamped into the list.
func (v *Virtual[K]) GetOffset(index int) float64 {
	if v.param == nil {
		return 0
	}
	n := len(v.param.UniqueIDs)
	if n == 0 {
		return v.param.SlotHeaderSize
	}
	index = clampIndex(index, n)
	return v.index.prefix(index, v.sizes.Estimate()) + v.param.SlotHeaderSize
}

// IsFront reports whether nothing is hidden before the window.
func (v *Virtual[K]) IsFront() bool {
	return v.rng.Start == 0
}

// IsBehind reports whether nothing is hidden after the window.
func (v *Virtual[K]) IsBehind() bool {
	if v.param == nil {
		return true
	}
	return v.rng.End == len(v.param.UniqueIDs)-1
}

// SizeOf returns the measured or estimated size of key.
func (v *Virtual[K]) SizeOf(key K) float64 {
	if v.param == nil {
		return 0
	}
	return v.sizes.SizeOf(key)
}

// SizeCount returns the number of measured keys.
func (v *Virtual[K]) SizeCount() int {
	return v.sizes.Count()
}

// TotalSize returns the size of all items, header and footer excluded.
func (v *Virtual[K]) TotalSize() float64 {
	if v.param == nil {
		return 0
	}
	return v.index.total(v.sizes.Estimate())
}

// Offset returns the last scroll offset seen, adjusted for anchored list changes.
func (v *Virtual[K]) Offset() float64 {
	return v.offset
}

// Direction returns the direction of the last scroll.
func (v *Virtual[K]) Direction() Direction {
	return v.direction
}

// Len returns the number of items.
func (v *Virtual[K]) Len() int {
	if v.param == nil {
		return 0
	}
	return len(v.param.UniqueIDs)
}

// Config returns a copy of the current configuration.
func (v *Virtual[K]) Config() Config[K] {
	if v.param == nil {
		return Config[K]{}
	}
	cfg := *v.param
	cfg.UniqueIDs = append([]K(nil), cfg.UniqueIDs...)
	return cfg
}

// reindex rebuilds the key positions and the prefix index for the current UniqueIDs.
func (v *Virtual[K]) reindex() {
	ids := v.param.UniqueIDs
	v.positions = make(map[K]int, len(ids))
	for i, id := range ids {
		v.positions[id] = i
	}
	v.index.build(len(ids), func(i int) (float64, bool) {
		return v.sizes.Measured(ids[i])
	})
}

// updateRange stores the range for [start, end] and notifies when it changed.
func (v *Virtual[K]) updateRange(start, end int) {
	next := v.rangeFor(start, end)
	if next == v.rng {
		return
	}
	v.rng = next

	v.logger.Debug().
		Str("component", "virtual").
		Int("start", next.Start).
		Int("end", next.End).
		Float64("pad_front", next.PadFront).
		Float64("pad_behind", next.PadBehind).
		Stringer("direction", v.direction).
		Msg("range changed")

	if v.onChange != nil {
		v.onChange(next)
	}
}

func clampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}
