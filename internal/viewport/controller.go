// Package viewport drives a virtual.Virtual the way a scrolling container would: it owns the
// scroll offset and the client size, filters out-of-bounds scroll events, forwards data, slot
// and item size changes, and reports scroll edges through a Listener.
package viewport

import (
	"github.com/rs/zerolog"

	"github.com/rshade/virtuallist/internal/virtual"
)

// bottomRetries bounds how often ScrollToBottom re-aims when measurements grow the content.
const bottomRetries = 3

// KeyFunc returns the unique key of an item.
type KeyFunc[T any, K comparable] func(T) K

// Options configures a Controller.
type Options struct {
	// Keeps is the number of items kept materialized.
	Keeps int
	// EstimateSize is the size assumed for unmeasured items.
	EstimateSize float64
	// TopThreshold is the distance from the top that triggers EventToTop.
	TopThreshold float64
	// BottomThreshold is the distance from the bottom that triggers EventToBottom.
	BottomThreshold float64
	// ClientSize is the visible extent of the container.
	ClientSize float64
	// Logger receives debug output. Nil disables logging.
	Logger *zerolog.Logger
}

// Controller is a headless scroll container around a virtual.Virtual. It is not safe for
// concurrent use.
type Controller[T any, K comparable] struct {
	opts     Options
	keyOf    KeyFunc[T, K]
	listener Listener[K]
	logger   zerolog.Logger

	items  []T
	header float64
	footer float64
	offset float64

	vl  *virtual.Virtual[K]
	rng virtual.Range
}

// New creates a Controller over items. listener may be nil.
func New[T any, K comparable](opts Options, keyOf KeyFunc[T, K], items []T, listener Listener[K]) *Controller[T, K] {
	c := &Controller[T, K]{
		opts:     opts,
		keyOf:    keyOf,
		listener: listener,
		logger:   zerolog.Nop(),
		items:    items,
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "viewport").Logger()
	}
	c.install()
	return c
}

func (c *Controller[T, K]) install() {
	c.vl = virtual.New(virtual.Config[K]{
		SlotHeaderSize: c.header,
		SlotFooterSize: c.footer,
		Keeps:          c.opts.Keeps,
		Buffer:         virtual.DefaultBuffer(c.opts.Keeps),
		EstimateSize:   c.opts.EstimateSize,
		UniqueIDs:      c.ids(),
	}, c.onRangeChanged, virtual.WithLogger[K](c.logger))
	c.rng = c.vl.GetRange()
}

func (c *Controller[T, K]) ids() []K {
	ids := make([]K, len(c.items))
	for i, item := range c.items {
		ids[i] = c.keyOf(item)
	}
	return ids
}

func (c *Controller[T, K]) onRangeChanged(r virtual.Range) {
	c.rng = r
	c.emit(EventRangeChanged)
}

// SetDataSources replaces the items. The first materialized item keeps its position when it is
// still in the list.
func (c *Controller[T, K]) SetDataSources(items []T) {
	c.items = items
	// UpdateParam only fails for unknown names or mistyped values.
	_ = c.vl.UpdateParam(virtual.ParamUniqueIDs, c.ids())
	c.vl.HandleDataSourcesChange()
	c.syncOffset()
}

// SetKeeps changes the number of materialized items and the derived buffer.
func (c *Controller[T, K]) SetKeeps(keeps int) {
	c.opts.Keeps = keeps
	_ = c.vl.UpdateParam(virtual.ParamBuffer, virtual.DefaultBuffer(keeps))
	_ = c.vl.UpdateParam(virtual.ParamKeeps, keeps)
	c.vl.HandleSlotSizeChange()
	c.syncOffset()
}

// SetClientSize changes the visible extent of the container.
func (c *Controller[T, K]) SetClientSize(size float64) {
	c.opts.ClientSize = max(size, 0)
}

// HeaderResized records the size of the header slot. The range is recomputed only once the
// header has been rendered (hasInit).
func (c *Controller[T, K]) HeaderResized(size float64, hasInit bool) {
	c.header = size
	_ = c.vl.UpdateParam(virtual.ParamSlotHeaderSize, size)
	if hasInit {
		c.vl.HandleSlotSizeChange()
		c.syncOffset()
	}
}

// FooterResized records the size of the footer slot.
func (c *Controller[T, K]) FooterResized(size float64, hasInit bool) {
	c.footer = size
	_ = c.vl.UpdateParam(virtual.ParamSlotFooterSize, size)
	if hasInit {
		c.vl.HandleSlotSizeChange()
		c.syncOffset()
	}
}

// ItemResized records the measured size of the item identified by key.
func (c *Controller[T, K]) ItemResized(key K, size float64) {
	c.vl.SaveSize(key, size)
	c.syncOffset()

	ev := c.event(EventItemResized)
	ev.Key = key
	ev.Size = size
	c.deliver(ev)
}

// Scroll handles a scroll event reported by the container. Events outside the scrollable area
// (overscroll spring-back) are ignored and reported as not accepted.
func (c *Controller[T, K]) Scroll(offset float64) bool {
	scrollSize := c.ScrollSize()
	if offset < 0 || offset+c.opts.ClientSize > scrollSize+1 || scrollSize == 0 {
		c.logger.Debug().Float64("offset", offset).Float64("scroll_size", scrollSize).Msg("scroll ignored")
		return false
	}
	c.scrollTo(offset)
	return true
}

// ScrollToOffset moves to offset, clamped into the scrollable area.
func (c *Controller[T, K]) ScrollToOffset(offset float64) {
	limit := max(c.ScrollSize()-c.opts.ClientSize, 0)
	c.scrollTo(min(max(offset, 0), limit))
}

// ScrollToIndex moves so that the item at index starts at the top of the container. The last
// item scrolls to the bottom instead.
func (c *Controller[T, K]) ScrollToIndex(index int) {
	if index >= len(c.items)-1 {
		c.ScrollToBottom()
		return
	}
	c.ScrollToOffset(c.vl.GetOffset(index))
}

// ScrollToBottom moves to the end of the content. Items measured while getting there can grow
// the content, so it re-aims until the bottom is reached.
func (c *Controller[T, K]) ScrollToBottom() {
	for range bottomRetries {
		c.ScrollToOffset(c.ScrollSize())
		if c.offset+c.opts.ClientSize >= c.ScrollSize() {
			return
		}
	}
}

// Reset drops every measurement and starts over at offset 0.
func (c *Controller[T, K]) Reset() {
	c.vl.Destroy()
	c.offset = 0
	c.install()
	c.emit(EventRangeChanged)
}

// Close releases the engine. The controller must not be used afterwards.
func (c *Controller[T, K]) Close() {
	c.vl.Destroy()
}

func (c *Controller[T, K]) scrollTo(offset float64) {
	c.offset = offset
	c.vl.HandleScroll(offset)
	c.emit(EventScroll)
	c.emitEdge()
}

// emitEdge reports reaching the top or the bottom of the list after a scroll.
func (c *Controller[T, K]) emitEdge() {
	scrollSize := c.ScrollSize()
	switch {
	case c.vl.IsFront() && len(c.items) > 0 && c.offset-c.opts.TopThreshold <= 0:
		c.emit(EventToTop)
	case c.vl.IsBehind() && c.offset+c.opts.ClientSize+c.opts.BottomThreshold >= scrollSize:
		c.emit(EventToBottom)
	}
}

// syncOffset adopts the offset the engine moved to keep the first visible item in place.
func (c *Controller[T, K]) syncOffset() {
	if !c.vl.Destroyed() {
		c.offset = c.vl.Offset()
	}
}

func (c *Controller[T, K]) event(t EventType) Event[K] {
	return Event[K]{
		Type:       t,
		Offset:     c.offset,
		ClientSize: c.opts.ClientSize,
		ScrollSize: c.ScrollSize(),
		Range:      c.rng,
	}
}

func (c *Controller[T, K]) emit(t EventType) {
	c.deliver(c.event(t))
}

func (c *Controller[T, K]) deliver(ev Event[K]) {
	if c.listener != nil {
		c.listener(ev)
	}
}

// Items returns the current items.
func (c *Controller[T, K]) Items() []T {
	return c.items
}

// Visible returns the materialized items.
func (c *Controller[T, K]) Visible() []T {
	if c.rng.Len() == 0 || c.rng.End >= len(c.items) {
		return nil
	}
	return c.items[c.rng.Start : c.rng.End+1]
}

// Range returns the materialized range.
func (c *Controller[T, K]) Range() virtual.Range {
	return c.rng
}

// Offset returns the scroll offset.
func (c *Controller[T, K]) Offset() float64 {
	return c.offset
}

// ClientSize returns the visible extent of the container.
func (c *Controller[T, K]) ClientSize() float64 {
	return c.opts.ClientSize
}

// ScrollSize returns the full content size: header, items and footer.
func (c *Controller[T, K]) ScrollSize() float64 {
	return c.header + c.vl.TotalSize() + c.footer
}

// OffsetOf returns the offset at which the item at index starts.
func (c *Controller[T, K]) OffsetOf(index int) float64 {
	return c.vl.GetOffset(index)
}

// SizeOf returns the measured or estimated size of the item with key.
func (c *Controller[T, K]) SizeOf(key K) float64 {
	return c.vl.SizeOf(key)
}

// SizeCount returns the number of measured items.
func (c *Controller[T, K]) SizeCount() int {
	return c.vl.SizeCount()
}

// Len returns the number of items.
func (c *Controller[T, K]) Len() int {
	return len(c.items)
}

// IsFront reports whether the first item is materialized.
func (c *Controller[T, K]) IsFront() bool {
	return c.vl.IsFront()
}

// IsBehind reports whether the last item is materialized.
func (c *Controller[T, K]) IsBehind() bool {
	return c.vl.IsBehind()
}
