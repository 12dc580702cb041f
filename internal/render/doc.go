// Package render provides the drawing backend for live time-series charts.
//
// The central abstraction is [Surface]: a drawing target that stages
// labeled series between Clear and Flush and renders them all at once.
// [TermSurface] implements it on a Braille pixel canvas, redrawing the
// terminal in place on every Flush:
//
//   - [Canvas]: Braille-based pixel canvas with per-cell color
//   - [TermSurface]: in-place ANSI chart with title, legend, and axes
//   - [OpenCount]: enumerate currently open surfaces
//
// # Frame Export
//
// TermSurface.SaveFrame writes the last flushed chart as a PNG or SVG
// image, selected by file extension. Exported frames can be assembled
// into an animation afterwards:
//
//	simplot animate ./frames --out run.gif
//
// Interrupting the process marks a stdout surface closed; observers treat
// that as a request to stop, the terminal analogue of closing a plot
// window.
package render
