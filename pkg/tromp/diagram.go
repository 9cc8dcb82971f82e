package tromp

import "strings"

// Glyphs used by the two text serializations.
const (
	DotGlyph   = '.'
	BlockGlyph = '█'
	BlankGlyph = ' '
)

// Diagram is a rectangular grid of filled and blank cells, stored as rows
// from top to bottom. Diagrams returned by [Render] are never mutated and
// are safe for concurrent reads.
type Diagram struct {
	cells [][]bool

	// maxDepth and leaves describe the term the diagram was rendered from;
	// both are zero for diagrams built by hand.
	maxDepth int
	leaves   int
}

// NewDiagram returns a blank diagram of the given size.
func NewDiagram(width, height int) *Diagram {
	cells := make([][]bool, height)
	for y := range cells {
		cells[y] = make([]bool, width)
	}
	return &Diagram{cells: cells}
}

// FromRows builds a diagram from text rows, treating every rune other than
// a space as filled. Rows may have different lengths.
func FromRows(rows []string) *Diagram {
	cells := make([][]bool, len(rows))
	for y, row := range rows {
		runes := []rune(row)
		cells[y] = make([]bool, len(runes))
		for x, r := range runes {
			cells[y][x] = r != BlankGlyph
		}
	}
	return &Diagram{cells: cells}
}

// Restore rebuilds a rendered diagram from its text rows and the term
// information recorded alongside it.
func Restore(rows []string, maxDepth, leaves int) *Diagram {
	d := FromRows(rows)
	d.maxDepth = maxDepth
	d.leaves = leaves
	return d
}

// Width returns the length of the longest row.
func (d *Diagram) Width() int {
	w := 0
	for _, row := range d.cells {
		w = max(w, len(row))
	}
	return w
}

// Height returns the number of rows.
func (d *Diagram) Height() int { return len(d.cells) }

// Filled reports whether the cell at column x, row y is filled. Cells
// outside the grid are blank.
func (d *Diagram) Filled(x, y int) bool {
	if y < 0 || y >= len(d.cells) || x < 0 || x >= len(d.cells[y]) {
		return false
	}
	return d.cells[y][x]
}

// Row returns a copy of row y padded to the diagram width.
func (d *Diagram) Row(y int) []bool {
	row := make([]bool, d.Width())
	copy(row, d.cells[y])
	return row
}

// MaxDepth returns the abstraction depth of the rendered term.
func (d *Diagram) MaxDepth() int { return d.maxDepth }

func (d *Diagram) set(x, y int) { d.cells[y][x] = true }

// blit copies src into d with its top-left corner at (x0, y0).
func (d *Diagram) blit(src *Diagram, x0, y0 int) {
	for y, row := range src.cells {
		copy(d.cells[y0+y][x0:], row)
	}
}

// Lines renders each row with the given glyph for filled cells. Rows
// narrower than the diagram are padded with blanks.
func (d *Diagram) Lines(filled rune) []string {
	width := d.Width()
	lines := make([]string, len(d.cells))
	var b strings.Builder
	for y, row := range d.cells {
		b.Reset()
		for x := 0; x < width; x++ {
			if x < len(row) && row[x] {
				b.WriteRune(filled)
			} else {
				b.WriteRune(BlankGlyph)
			}
		}
		lines[y] = b.String()
	}
	return lines
}

func (d *Diagram) text(filled rune) string {
	var b strings.Builder
	for _, line := range d.Lines(filled) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Cells serializes the diagram with '.' for filled cells and ' ' for blank
// ones, one newline-terminated line per row.
func (d *Diagram) Cells() string { return d.text(DotGlyph) }

// String serializes the diagram like [Diagram.Cells] but with a full-block
// glyph for filled cells.
func (d *Diagram) String() string { return d.text(BlockGlyph) }

// CellsOfDiagram is the package-level form of [Diagram.Cells].
func CellsOfDiagram(d *Diagram) string { return d.Cells() }

// Stats summarizes a diagram.
type Stats struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Filled   int `json:"filled"`
	MaxDepth int `json:"max_depth"`
	Leaves   int `json:"leaves"`
}

// Stats returns size and fill information for d.
func (d *Diagram) Stats() Stats {
	s := Stats{Width: d.Width(), Height: d.Height(), MaxDepth: d.maxDepth, Leaves: d.leaves}
	for _, row := range d.cells {
		for _, c := range row {
			if c {
				s.Filled++
			}
		}
	}
	return s
}
