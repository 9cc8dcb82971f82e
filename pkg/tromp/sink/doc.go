// Package sink serializes Tromp diagrams to output formats.
//
// Every sink takes a finished [tromp.Diagram] and never changes it:
//
//   - [RenderText]: the character grid, '.' or block glyphs
//   - [RenderSVG]: one rect per horizontal run of filled cells
//   - [RenderPNG], [RenderPDF]: the SVG converted with rsvg-convert
//   - [RenderJSON]: rows plus stats, readable again with [ReadJSON]
//
// JSON is also the cache format for layouts, so [ReadJSON] of [RenderJSON]
// yields a diagram with identical cells and stats.
package sink
