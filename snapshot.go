package celcore

import (
	"fmt"
	"image/color"
)

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot represents a complete capture of the visible screen.
type Snapshot struct {
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Lines  []SnapshotLine `json:"lines"`
}

// SnapshotSize holds terminal dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Shape   string `json:"shape"`
}

// SnapshotLine represents a single screen row in the snapshot.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment represents a styled text run within a line.
type SnapshotSegment struct {
	Text       string        `json:"text"`
	Fg         string        `json:"fg,omitempty"`
	Bg         string        `json:"bg,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
}

// SnapshotCell represents a single cell with full attributes.
type SnapshotCell struct {
	Char         string        `json:"char"`
	Fg           string        `json:"fg,omitempty"`
	Bg           string        `json:"bg,omitempty"`
	Attributes   SnapshotAttrs `json:"attrs,omitempty"`
	Wide         bool          `json:"wide,omitempty"`
	Continuation bool          `json:"continuation,omitempty"`
}

// SnapshotAttrs holds text formatting attributes.
type SnapshotAttrs struct {
	Bold          bool `json:"bold,omitempty"`
	Faint         bool `json:"faint,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Blink         bool `json:"blink,omitempty"`
	Invisible     bool `json:"invisible,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
}

// Snapshot creates a snapshot of the visible screen.
// The detail parameter controls how much information is included.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	g := t.performer.state.Grid
	cur := g.ScreenCursor()
	cursor := t.performer.state.Cursor

	snap := &Snapshot{
		Size: SnapshotSize{
			Rows: t.rows,
			Cols: t.cols,
		},
		Cursor: SnapshotCursor{
			Row:     cur.Row,
			Col:     cur.Col,
			Visible: cursor.Visible,
			Shape:   cursorShapeToString(cursor.Shape),
		},
		Lines: make([]SnapshotLine, t.rows),
	}

	for row := 0; row < t.rows; row++ {
		snap.Lines[row] = t.snapshotLine(row, detail)
	}

	return snap
}

// snapshotLine creates a snapshot of a single screen row.
func (t *Terminal) snapshotLine(row int, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{
		Text: t.LineContent(row),
	}

	switch detail {
	case SnapshotDetailText:
		// Just text, already set

	case SnapshotDetailStyled:
		line.Segments = t.lineToSegments(row)

	case SnapshotDetailFull:
		line.Cells = t.lineToCells(row)
	}

	return line
}

// lineToSegments converts a screen row to styled segments (runs of the same
// style).
func (t *Terminal) lineToSegments(row int) []SnapshotSegment {
	g := t.performer.state.Grid

	var segments []SnapshotSegment
	var current *SnapshotSegment
	var text []byte

	for col := 0; col < t.cols; col++ {
		cell := g.VisibleCell(row, col)
		if cell.IsContinuation() {
			continue
		}

		fg := colorToHex(cell.Style.Fg)
		bg := colorToHex(cell.Style.Bg)
		attrs := styleAttrsToSnapshot(cell.Style.Flags)

		if current == nil || current.Fg != fg || current.Bg != bg || current.Attributes != attrs {
			if current != nil && len(text) > 0 {
				current.Text = string(text)
				segments = append(segments, *current)
			}
			current = &SnapshotSegment{
				Fg:         fg,
				Bg:         bg,
				Attributes: attrs,
			}
			text = nil
		}

		if s := cell.Text(); s != "" {
			text = append(text, s...)
		} else {
			text = append(text, ' ')
		}
	}

	if current != nil && len(text) > 0 {
		current.Text = string(text)
		segments = append(segments, *current)
	}

	return segments
}

// lineToCells converts a screen row to full cell data.
func (t *Terminal) lineToCells(row int) []SnapshotCell {
	g := t.performer.state.Grid

	cells := make([]SnapshotCell, 0, t.cols)
	for col := 0; col < t.cols; col++ {
		cell := g.VisibleCell(row, col)

		char := cell.Text()
		if char == "" && !cell.IsContinuation() {
			char = " "
		}

		cells = append(cells, SnapshotCell{
			Char:         char,
			Fg:           colorToHex(cell.Style.Fg),
			Bg:           colorToHex(cell.Style.Bg),
			Attributes:   styleAttrsToSnapshot(cell.Style.Flags),
			Wide:         cell.IsWide(),
			Continuation: cell.IsContinuation(),
		})
	}

	return cells
}

// colorToHex converts a resolved color to a hex string; nil (default color)
// yields the empty string.
func colorToHex(c *color.RGBA) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// styleAttrsToSnapshot extracts the style flags.
func styleAttrsToSnapshot(flags StyleFlags) SnapshotAttrs {
	return SnapshotAttrs{
		Bold:          flags.Has(FlagBold),
		Faint:         flags.Has(FlagFaint),
		Italic:        flags.Has(FlagItalic),
		Underline:     flags.Has(FlagUnderline),
		Blink:         flags.Has(FlagBlink),
		Invisible:     flags.Has(FlagInvisible),
		Strikethrough: flags.Has(FlagCrossedOut),
	}
}

// cursorShapeToString converts a cursor shape to its snapshot string.
func cursorShapeToString(shape CursorShape) string {
	switch shape {
	case CursorShapeUnderline:
		return "underline"
	case CursorShapeBar:
		return "bar"
	default:
		return "block"
	}
}
