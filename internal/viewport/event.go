package viewport

import "github.com/rshade/virtuallist/internal/virtual"

// EventType identifies what a Controller is reporting.
type EventType int

// Events emitted by a Controller.
const (
	// EventScroll follows every accepted scroll.
	EventScroll EventType = iota
	// EventToTop fires after a scroll that reached the top threshold.
	EventToTop
	// EventToBottom fires after a scroll that reached the bottom threshold.
	EventToBottom
	// EventRangeChanged fires whenever the materialized range changes.
	EventRangeChanged
	// EventItemResized fires after an item reported a new size.
	EventItemResized
)

// String implements fmt.Stringer.
func (t EventType) String() string {
	switch t {
	case EventScroll:
		return "scroll"
	case EventToTop:
		return "totop"
	case EventToBottom:
		return "tobottom"
	case EventRangeChanged:
		return "range"
	case EventItemResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event is delivered to the Listener synchronously, in the order things happened.
type Event[K comparable] struct {
	Type       EventType
	Offset     float64
	ClientSize float64
	ScrollSize float64
	Range      virtual.Range

	// Key and Size are set for EventItemResized.
	Key  K
	Size float64
}

// Listener receives controller events.
type Listener[K comparable] func(Event[K])
