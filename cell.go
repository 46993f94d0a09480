package celcore

// CellContent discriminates what a grid cell holds.
type CellContent uint8

const (
	// CellEmpty is a cell with no content. Reads past the end of a line and
	// erased cells yield the empty cell.
	CellEmpty CellContent = iota
	// CellChar is a cell holding a single character.
	CellChar
	// CellGrapheme is a cell holding a multi-rune grapheme cluster.
	CellGrapheme
	// CellContinuation marks a column covered by a wide glyph that starts
	// earlier on the same line.
	CellContinuation
)

// Cell stores the content and style snapshot for one grid position.
// Wide glyphs occupy one primary cell followed by Width-1 continuation cells.
type Cell struct {
	Content CellContent
	Char    rune   // set when Content == CellChar
	Cluster string // set when Content == CellGrapheme
	Width   int    // display width of the glyph; 0 for empty and continuation cells
	Offset  int    // columns back to the primary cell; set when Content == CellContinuation
	Style   Style
}

// EmptyCell returns a cell with no content and the default style.
func EmptyCell() Cell {
	return Cell{Content: CellEmpty}
}

// NewCharCell creates a cell holding a single character.
func NewCharCell(r rune, width int, style Style) Cell {
	return Cell{Content: CellChar, Char: r, Width: width, Style: style}
}

// NewGraphemeCell creates a cell holding a grapheme cluster.
func NewGraphemeCell(cluster string, width int, style Style) Cell {
	return Cell{Content: CellGrapheme, Cluster: cluster, Width: width, Style: style}
}

// NewContinuationCell creates a continuation cell pointing back at its
// primary cell, offset columns to the left.
func NewContinuationCell(offset int, style Style) Cell {
	return Cell{Content: CellContinuation, Offset: offset, Style: style}
}

// Reset clears the cell back to empty with the default style.
func (c *Cell) Reset() {
	*c = Cell{Content: CellEmpty}
}

// IsEmpty returns true if the cell has no content.
func (c Cell) IsEmpty() bool {
	return c.Content == CellEmpty
}

// IsContinuation returns true if the cell is covered by a wide glyph that
// starts earlier on the line. Renderers skip continuation cells.
func (c Cell) IsContinuation() bool {
	return c.Content == CellContinuation
}

// IsWide returns true if the cell holds a glyph wider than one column.
func (c Cell) IsWide() bool {
	return (c.Content == CellChar || c.Content == CellGrapheme) && c.Width > 1
}

// Text returns the cell's content as a string. Empty and continuation cells
// yield the empty string.
func (c Cell) Text() string {
	switch c.Content {
	case CellChar:
		return string(c.Char)
	case CellGrapheme:
		return c.Cluster
	default:
		return ""
	}
}
