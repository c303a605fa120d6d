package virtual

import (
	"errors"
	"fmt"
	"math"
)

// Param names a mutable configuration field for UpdateParam.
type Param string

// Configuration fields accepted by UpdateParam.
const (
	ParamKeeps          Param = "keeps"
	ParamBuffer         Param = "buffer"
	ParamEstimateSize   Param = "estimateSize"
	ParamSlotHeaderSize Param = "slotHeaderSize"
	ParamSlotFooterSize Param = "slotFooterSize"
	ParamUniqueIDs      Param = "uniqueIds"
)

// bufferDivisor derives the default buffer as a third of keeps.
const bufferDivisor = 3

// Parameter update errors.
var (
	ErrUnknownParam      = errors.New("unknown virtual list parameter")
	ErrInvalidParamValue = errors.New("invalid virtual list parameter value")
)

// Config is the caller-supplied configuration of a Virtual.
type Config[K comparable] struct {
	// SlotHeaderSize is the extent of fixed content placed before the list.
	SlotHeaderSize float64

	// SlotFooterSize is the extent of fixed content placed after the list.
	SlotFooterSize float64

	// Keeps is the number of items kept materialized.
	Keeps int

	// Buffer is the number of extra items materialized beyond the window.
	Buffer int

	// EstimateSize is the size assumed for an item before it is measured.
	EstimateSize float64

	// UniqueIDs holds one unique key per item, in list order.
	UniqueIDs []K
}

// DefaultBuffer returns the recommended buffer for keeps: a third of it, rounded.
func DefaultBuffer(keeps int) int {
	return int(math.Round(float64(keeps) / bufferDivisor))
}

// normalize clamps values that would break the range math.
func (c *Config[K]) normalize() {
	if c.Keeps < 1 {
		c.Keeps = 1
	}
	if c.Buffer < 0 {
		c.Buffer = 0
	}
	c.EstimateSize = clampSize(c.EstimateSize)
	c.SlotHeaderSize = clampSize(c.SlotHeaderSize)
	c.SlotFooterSize = clampSize(c.SlotFooterSize)
}

// Range is the materialized window and the space standing in for everything outside it.
type Range struct {
	// Start is the first materialized index (inclusive).
	Start int `json:"start"`

	// End is the last materialized index (inclusive); -1 for an empty list.
	End int `json:"end"`

	// PadFront is the size of all items before Start.
	PadFront float64 `json:"padFront"`

	// PadBehind is the size of all items after End.
	PadBehind float64 `json:"padBehind"`
}

// emptyRange is the range of a list with no items.
func emptyRange() Range {
	return Range{Start: 0, End: -1}
}

// Len returns the number of materialized items.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether index is materialized.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%d..%d] front=%g behind=%g", r.Start, r.End, r.PadFront, r.PadBehind)
}

// Direction is the direction of the last scroll.
type Direction int

// Scroll directions.
const (
	DirectionNone Direction = iota
	// DirectionForward means the offset grew (towards the end of the list).
	DirectionForward
	// DirectionBackward means the offset shrank or returned to zero.
	DirectionBackward
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	case DirectionNone:
		return "none"
	default:
		return "unknown"
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(math.Round(v)), true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
