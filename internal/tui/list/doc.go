// Package list provides a virtual scrolling list for Bubble Tea applications.
//
// Items may span several terminal rows. Only the items in the range computed by
// internal/virtual are rendered; each rendered item is measured with lipgloss and
// its height fed back so the scroll math converges on the real layout. Key features:
//   - Variable-height items, wrapped to the view width
//   - Keyboard navigation (up/down, j/k, pgup/pgdn, home/end) and mouse wheel
//   - Optional loading of more items when the bottom is reached
package list
