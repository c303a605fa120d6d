// Package virtual computes the materialized window of a virtualized list.
//
// A Virtual maps a scroll offset to the contiguous range of items that has to be rendered, plus
// the padding that stands in for the items outside it. Key properties:
//   - Items are identified by caller-supplied unique keys, never by position, so splices and
//     reorders keep their measurements.
//   - Unmeasured items are estimated with the running average of measured ones.
//   - Offset to index lookups and pad sums run in O(log n) over a Fenwick index; the index is
//     rebuilt in O(n) only when the key sequence is replaced.
//   - Everything is synchronous and single-threaded; a callback reports each new range.
package virtual
