package celcore

// CursorShape determines how the cursor is rendered.
type CursorShape uint8

const (
	CursorShapeBlock CursorShape = iota
	CursorShapeUnderline
	CursorShapeBar
)

// CursorState holds the rendering state of the cursor. Its position lives on
// the grid.
type CursorState struct {
	Shape    CursorShape
	Visible  bool
	Blinking bool
}

// NewCursorState returns the default cursor: a visible blinking block.
func NewCursorState() CursorState {
	return CursorState{
		Shape:    CursorShapeBlock,
		Visible:  true,
		Blinking: true,
	}
}

// SavedCursor stores the position and style captured by ESC 7 for a later
// ESC 8 restore.
type SavedCursor struct {
	Position Position
	Style    Style
}
