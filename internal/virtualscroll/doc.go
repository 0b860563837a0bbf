// Package virtualscroll computes which slice of a long list is worth
// rendering for a given scroll position.
//
// Window is a pure function over the scroll geometry. Engine wraps it with
// a live item count, a frame-rate throttle on scroll updates, and a
// Scroller port for programmatic jumps.
package virtualscroll
