package celcore

import (
	"log/slog"
	"strings"
)

// Position is a grid coordinate. Depending on context it is either a screen
// position (Row < height, Col < width) or a buffer position (Row indexes a
// line, Col indexes a cell within it).
type Position struct {
	Row int
	Col int
}

// Before returns true if p precedes o in row-major order.
func (p Position) Before(o Position) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Col < o.Col)
}

// WrapState tracks the deferred autowrap state machine. Filling the last
// column of a row does not wrap immediately; the wrap is applied right
// before the next character is printed.
type WrapState uint8

const (
	NotWrapping WrapState = iota
	PendingWrap
)

// Margin is an inclusive scroll region rectangle in screen coordinates.
type Margin struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Line is one buffer line. Cells grow on demand and may exceed the viewport
// width; printing never splits a line. Wrapped marks a physical continuation
// chunk produced by reflow, merged back into its logical line on the next
// reflow.
type Line struct {
	Cells   []Cell
	Wrapped bool
}

// Grid is the screen buffer: scrollback and viewport share one line slice.
// The viewport is the window of height rows starting at the home buffer
// coordinate; home.Col is always a multiple of the width, so a line longer
// than the width spans several screen rows.
//
// Grid is not safe for concurrent use. Callers drive it from a single
// goroutine, typically through Terminal.
type Grid struct {
	lines  []Line
	width  int
	height int

	cursor Position // screen coordinates
	home   Position // buffer coordinates of screen (0,0)

	// buffer coordinates of the cursor, kept in sync with the screen
	// cursor except while printing grows the current line
	curLine int
	curCol  int

	margin        Margin
	autowrap      bool
	wrap          WrapState
	maxScrollback int

	logger *slog.Logger
}

// NewGrid creates a grid with the given viewport size. maxScrollback caps the
// total number of retained buffer lines and is raised to at least height.
func NewGrid(width, height, maxScrollback int, logger *slog.Logger) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if maxScrollback < height {
		maxScrollback = height
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Grid{
		lines:         []Line{{}},
		width:         width,
		height:        height,
		margin:        Margin{Top: 0, Bottom: height - 1, Left: 0, Right: width - 1},
		autowrap:      true,
		maxScrollback: maxScrollback,
		logger:        logger,
	}
}

// Width returns the viewport width in columns.
func (g *Grid) Width() int { return g.width }

// Height returns the viewport height in rows.
func (g *Grid) Height() int { return g.height }

// Len returns the total number of buffer lines (scrollback included).
func (g *Grid) Len() int { return len(g.lines) }

// MaxScrollback returns the cap on retained buffer lines.
func (g *Grid) MaxScrollback() int { return g.maxScrollback }

// ScreenCursor returns the cursor position in screen coordinates.
func (g *Grid) ScreenCursor() Position { return g.cursor }

// BufferCursor returns the cursor position in buffer coordinates.
func (g *Grid) BufferCursor() Position { return Position{Row: g.curLine, Col: g.curCol} }

// GlobalCursorHome returns the buffer coordinate of screen position (0,0).
func (g *Grid) GlobalCursorHome() Position { return g.home }

// WantsWrap returns true if the last print filled the row and the wrap is
// still pending.
func (g *Grid) WantsWrap() bool { return g.wrap == PendingWrap }

// Autowrap returns the autowrap mode (DECAWM).
func (g *Grid) Autowrap() bool { return g.autowrap }

// SetAutowrap sets the autowrap mode. Disabling it cancels a pending wrap.
func (g *Grid) SetAutowrap(on bool) {
	g.autowrap = on
	if !on {
		g.wrap = NotWrapping
	}
}

// MarginRect returns the active scroll region.
func (g *Grid) MarginRect() Margin { return g.margin }

// LineCells returns the cells of buffer line i, or nil when out of range.
func (g *Grid) LineCells(i int) []Cell {
	if i < 0 || i >= len(g.lines) {
		return nil
	}
	return g.lines[i].Cells
}

// LineWrapped returns true if buffer line i is a reflow continuation chunk.
func (g *Grid) LineWrapped(i int) bool {
	if i < 0 || i >= len(g.lines) {
		return false
	}
	return g.lines[i].Wrapped
}

// segments returns the number of screen rows buffer line i occupies. An
// exactly full line still counts as one segment; the extra row appears only
// once the pending wrap is applied by the next print.
func (g *Grid) segments(i int) int {
	if i < 0 || i >= len(g.lines) {
		return 1
	}
	n := len(g.lines[i].Cells)
	if n <= g.width {
		return 1
	}
	return (n + g.width - 1) / g.width
}

// segSpan returns the cell span covered by line i's segments.
func (g *Grid) segSpan(i int) int {
	return g.segments(i) * g.width
}

// rowStart maps a screen row to the buffer line it falls on and the cell
// column its first screen column maps to. Missing lines behave as single
// empty segments; with create set, the target line (and any line before it)
// is materialized.
func (g *Grid) rowStart(row int, create bool) (lineIdx, segStart int, ok bool) {
	lineIdx = g.home.Row
	segStart = g.home.Col
	for r := 0; r < row; r++ {
		segStart += g.width
		if segStart >= g.segSpan(lineIdx) {
			lineIdx++
			segStart = 0
		}
	}
	if lineIdx >= len(g.lines) {
		if !create {
			return lineIdx, segStart, false
		}
		g.growTo(lineIdx)
	}
	return lineIdx, segStart, true
}

// growTo appends empty lines until index i exists, then trims scrollback.
func (g *Grid) growTo(i int) {
	for len(g.lines) <= i {
		g.lines = append(g.lines, Line{})
	}
	g.evict()
}

// evict drops lines from the front while the buffer exceeds maxScrollback.
// Lines inside the viewport are never evicted.
func (g *Grid) evict() {
	for len(g.lines) > g.maxScrollback && g.home.Row > 0 {
		g.lines = g.lines[1:]
		g.home.Row--
		if g.curLine > 0 {
			g.curLine--
		}
	}
}

// syncCursor recomputes the buffer cursor from the screen cursor.
func (g *Grid) syncCursor() {
	lineIdx, segStart, _ := g.rowStart(g.cursor.Row, true)
	g.curLine = lineIdx
	g.curCol = segStart + g.cursor.Col
}

// MoveCursorTo moves the cursor to a screen position, clamping to the grid
// bounds. Any pending wrap is cancelled.
func (g *Grid) MoveCursorTo(col, row int) {
	if col < 0 {
		col = 0
	}
	if col > g.width-1 {
		col = g.width - 1
	}
	if row < 0 {
		row = 0
	}
	if row > g.height-1 {
		row = g.height - 1
	}
	g.cursor = Position{Row: row, Col: col}
	g.wrap = NotWrapping
	g.syncCursor()
}

// MoveCursorRelative moves the cursor by a screen-space delta, clamping to
// the grid bounds.
func (g *Grid) MoveCursorRelative(dx, dy int) {
	g.MoveCursorTo(g.cursor.Col+dx, g.cursor.Row+dy)
}

// CarriageReturn moves the cursor to column 0 of the current row.
func (g *Grid) CarriageReturn() {
	g.MoveCursorTo(0, g.cursor.Row)
}

// Tab moves the cursor to the next multiple-of-8 column, clamped to the last
// column.
func (g *Grid) Tab() {
	col := (g.cursor.Col/8 + 1) * 8
	if col > g.width-1 {
		col = g.width - 1
	}
	g.MoveCursorTo(col, g.cursor.Row)
}

// FeedLine moves the cursor down one row, scrolling the region up when the
// cursor sits on the bottom margin.
func (g *Grid) FeedLine() {
	g.wrap = NotWrapping
	if g.cursor.Row == g.margin.Bottom {
		g.scrollUpOne()
	} else if g.cursor.Row < g.height-1 {
		g.cursor.Row++
	}
	g.syncCursor()
}

// ReverseIndex moves the cursor up one row, scrolling the region down when
// the cursor sits on the top margin.
func (g *Grid) ReverseIndex() {
	g.wrap = NotWrapping
	if g.cursor.Row == g.margin.Top {
		g.scrollDownOne()
	} else if g.cursor.Row > 0 {
		g.cursor.Row--
	}
	g.syncCursor()
}

// SetVerticalMargin sets the top/bottom scroll margin (inclusive screen
// rows) and homes the cursor. Invalid bounds are logged and ignored.
func (g *Grid) SetVerticalMargin(top, bottom int) {
	if top < 0 || bottom > g.height-1 || top >= bottom {
		g.logger.Debug("ignoring invalid vertical margin", "top", top, "bottom", bottom)
		return
	}
	g.margin.Top = top
	g.margin.Bottom = bottom
	g.MoveCursorTo(0, 0)
}

// SetHorizontalMargin sets the left/right scroll margin (inclusive screen
// columns) and homes the cursor. Invalid bounds are logged and ignored.
func (g *Grid) SetHorizontalMargin(left, right int) {
	if left < 0 || right > g.width-1 || left >= right {
		g.logger.Debug("ignoring invalid horizontal margin", "left", left, "right", right)
		return
	}
	g.margin.Left = left
	g.margin.Right = right
	g.MoveCursorTo(0, 0)
}

// ResetMargins restores the full-screen scroll region.
func (g *Grid) ResetMargins() {
	g.margin = Margin{Top: 0, Bottom: g.height - 1, Left: 0, Right: g.width - 1}
}

func (g *Grid) fullMargin() bool {
	return g.margin.Top == 0 && g.margin.Bottom == g.height-1 &&
		g.margin.Left == 0 && g.margin.Right == g.width-1
}

func (g *Grid) horizontallyBound() bool {
	return g.margin.Left > 0 || g.margin.Right < g.width-1
}

func (g *Grid) cursorInMargin() bool {
	return g.cursor.Row >= g.margin.Top && g.cursor.Row <= g.margin.Bottom &&
		g.cursor.Col >= g.margin.Left && g.cursor.Col <= g.margin.Right
}

// scrollUpOne scrolls the active region up one row. The full-screen region
// advances the viewport home instead of moving lines, which is what feeds
// the scrollback; a vertical sub-region removes its top line and inserts an
// empty one at the bottom, keeping the buffer length fixed.
func (g *Grid) scrollUpOne() {
	if g.horizontallyBound() {
		g.logger.Debug("scroll inside a horizontal margin is not supported",
			"left", g.margin.Left, "right", g.margin.Right)
		return
	}

	if g.fullMargin() {
		g.home.Col += g.width
		if g.home.Col >= g.segSpan(g.home.Row) {
			g.home.Row++
			g.home.Col = 0
			g.growTo(g.home.Row)
		}
		g.evict()
		return
	}

	top, _, _ := g.rowStart(g.margin.Top, true)
	bot, _, _ := g.rowStart(g.margin.Bottom, true)
	if top >= bot {
		g.Erase(Position{Row: g.margin.Top, Col: 0}, Position{Row: g.margin.Bottom, Col: g.width - 1})
		return
	}
	g.lines = append(g.lines[:top], g.lines[top+1:]...)
	g.insertLineAt(bot)
}

// scrollDownOne scrolls the active region down one row: the bottom line of
// the region is discarded and an empty line takes the top slot.
func (g *Grid) scrollDownOne() {
	if g.horizontallyBound() {
		g.logger.Debug("scroll inside a horizontal margin is not supported",
			"left", g.margin.Left, "right", g.margin.Right)
		return
	}

	top, _, _ := g.rowStart(g.margin.Top, true)
	bot, _, _ := g.rowStart(g.margin.Bottom, true)
	if top >= bot {
		g.Erase(Position{Row: g.margin.Top, Col: 0}, Position{Row: g.margin.Bottom, Col: g.width - 1})
		return
	}
	g.lines = append(g.lines[:bot], g.lines[bot+1:]...)
	g.insertLineAt(top)
}

func (g *Grid) insertLineAt(idx int) {
	g.lines = append(g.lines, Line{})
	copy(g.lines[idx+1:], g.lines[idx:])
	g.lines[idx] = Line{}
}

// ScrollUp scrolls the active region up n rows.
func (g *Grid) ScrollUp(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		g.scrollUpOne()
	}
	g.syncCursor()
}

// ScrollDown scrolls the active region down n rows.
func (g *Grid) ScrollDown(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		g.scrollDownOne()
	}
	g.syncCursor()
}

// InsertLines inserts n empty lines at the cursor row, pushing the rows
// below it toward the bottom margin. No-op when the cursor is outside the
// margin rectangle.
func (g *Grid) InsertLines(n int) {
	if n < 1 {
		n = 1
	}
	if !g.cursorInMargin() {
		return
	}
	top := g.margin.Top
	g.margin.Top = g.cursor.Row
	for i := 0; i < n; i++ {
		g.scrollDownOne()
	}
	g.margin.Top = top
	g.syncCursor()
}

// DeleteLines removes n lines at the cursor row, pulling the rows below it
// up and filling the bottom of the margin with empty lines. No-op when the
// cursor is outside the margin rectangle.
func (g *Grid) DeleteLines(n int) {
	if n < 1 {
		n = 1
	}
	if !g.cursorInMargin() {
		return
	}
	top := g.margin.Top
	g.margin.Top = g.cursor.Row
	for i := 0; i < n; i++ {
		g.scrollUpOne()
	}
	g.margin.Top = top
	g.syncCursor()
}

// DeleteCells removes n cells at the cursor, shifting the remainder of the
// line left.
func (g *Grid) DeleteCells(n int) {
	if n < 1 {
		n = 1
	}
	if g.curLine < 0 || g.curLine >= len(g.lines) {
		return
	}
	line := &g.lines[g.curLine]
	col := g.curCol
	if col < 0 || col >= len(line.Cells) {
		return
	}
	if n > len(line.Cells)-col {
		n = len(line.Cells) - col
	}
	clearGlyphAt(line.Cells, col)
	line.Cells = append(line.Cells[:col], line.Cells[col+n:]...)
	// a glyph whose primary cell was deleted leaves orphaned continuations
	for i := col; i < len(line.Cells) && line.Cells[i].IsContinuation(); i++ {
		line.Cells[i].Reset()
	}
}

// EraseChars clears n cells starting at the cursor without shifting.
func (g *Grid) EraseChars(n int) {
	if n < 1 {
		n = 1
	}
	g.eraseSpan(g.curLine, g.curCol, g.curCol+n-1)
}

// Erase clears the inclusive screen range between two positions, in
// row-major order. Out-of-order arguments are normalized.
func (g *Grid) Erase(start, end Position) {
	if end.Before(start) {
		start, end = end, start
	}
	for row := start.Row; row <= end.Row; row++ {
		if row < 0 || row >= g.height {
			continue
		}
		c0, c1 := 0, g.width-1
		if row == start.Row {
			c0 = start.Col
		}
		if row == end.Row {
			c1 = end.Col
		}
		if c0 < 0 {
			c0 = 0
		}
		if c1 > g.width-1 {
			c1 = g.width - 1
		}
		lineIdx, segStart, ok := g.rowStart(row, false)
		if !ok {
			continue
		}
		g.eraseSpan(lineIdx, segStart+c0, segStart+c1)
	}
}

// Clear erases the whole viewport.
func (g *Grid) Clear() {
	g.Erase(Position{Row: 0, Col: 0}, Position{Row: g.height - 1, Col: g.width - 1})
}

// eraseSpan resets a cell range of one buffer line. Glyphs that straddle the
// range boundaries are cleared whole so no half-wide cell survives.
func (g *Grid) eraseSpan(lineIdx, c0, c1 int) {
	if lineIdx < 0 || lineIdx >= len(g.lines) {
		return
	}
	cells := g.lines[lineIdx].Cells
	if len(cells) == 0 || c0 >= len(cells) || c1 < 0 {
		return
	}
	if c0 < 0 {
		c0 = 0
	}
	if c1 >= len(cells) {
		c1 = len(cells) - 1
	}
	clearGlyphAt(cells, c0)
	clearGlyphAt(cells, c1)
	for i := c0; i <= c1; i++ {
		cells[i].Reset()
	}
}

// clearGlyphAt resets the full cell run of the glyph covering col: the
// primary cell plus its continuation cells.
func clearGlyphAt(cells []Cell, col int) {
	if col < 0 || col >= len(cells) {
		return
	}
	start := col
	if cells[col].IsContinuation() {
		start = col - cells[col].Offset
		if start < 0 {
			start = 0
		}
	}
	w := 1
	if cells[start].Width > 1 {
		w = cells[start].Width
	}
	for i := start; i < start+w && i < len(cells); i++ {
		cells[i].Reset()
	}
}

// PrintChar writes one character at the cursor and advances it. A pending
// wrap is applied first; ASCII takes the fast path, anything else first
// attempts to join the preceding cell's grapheme cluster.
func (g *Grid) PrintChar(r rune, style Style) {
	if g.wrap == PendingWrap {
		// combining input joins the cell before the wrap point
		if r >= 0x80 && g.tryMerge(r) {
			return
		}
		g.applyWrap()
	}

	if r < 0x80 {
		g.placeCell(NewCharCell(r, 1, style))
		g.advance(1)
		return
	}

	if g.tryMerge(r) {
		return
	}

	w := runeWidth(r)
	if w <= 0 {
		// zero-width rune with nothing to attach to
		return
	}
	if w > g.width {
		w = g.width
	}
	g.placeCell(NewCharCell(r, w, style))
	g.advance(w)
}

// applyWrap performs the deferred wrap: column 0 of the next row, scrolling
// at the bottom margin. The buffer cursor is left at the segment boundary so
// printing keeps growing the same logical line.
func (g *Grid) applyWrap() {
	g.wrap = NotWrapping
	g.cursor.Col = 0
	if g.cursor.Row == g.margin.Bottom {
		if g.fullMargin() {
			g.scrollUpOne()
			return
		}
		g.scrollUpOne()
		g.syncCursor()
		return
	}
	if g.cursor.Row < g.height-1 {
		g.cursor.Row++
	}
}

// placeCell writes a cell at the buffer cursor, padding the line with empty
// cells up to the cursor column and laying down continuation cells for wide
// glyphs. Glyphs overlapping the target range are cleared whole.
func (g *Grid) placeCell(cell Cell) {
	g.growTo(g.curLine)
	line := &g.lines[g.curLine]
	for len(line.Cells) < g.curCol {
		line.Cells = append(line.Cells, EmptyCell())
	}

	w := cell.Width
	if w < 1 {
		w = 1
	}
	for i := g.curCol; i < g.curCol+w && i < len(line.Cells); i++ {
		clearGlyphAt(line.Cells, i)
	}
	for len(line.Cells) < g.curCol+w {
		line.Cells = append(line.Cells, EmptyCell())
	}

	line.Cells[g.curCol] = cell
	for i := 1; i < w; i++ {
		line.Cells[g.curCol+i] = NewContinuationCell(i, cell.Style)
	}
}

// advance moves the cursor right after a print of width w, arming the
// deferred wrap when the row is filled.
func (g *Grid) advance(w int) {
	segStart := g.curCol - g.cursor.Col
	g.curCol += w
	g.cursor.Col += w
	if g.cursor.Col >= g.width {
		if g.autowrap {
			g.wrap = PendingWrap
			g.cursor.Col = g.width - 1
			// curCol stays at the segment boundary for the wrap
		} else {
			g.cursor.Col = g.width - 1
			g.curCol = segStart + g.width - 1
		}
	}
}

// tryMerge attempts to join r with the grapheme cluster of the cell
// immediately before the cursor. On success the cell is replaced in place;
// the cursor only moves if the merged cluster got wider.
func (g *Grid) tryMerge(r rune) bool {
	if g.curLine < 0 || g.curLine >= len(g.lines) {
		return false
	}
	cells := g.lines[g.curLine].Cells
	idx := g.curCol - 1
	if idx < 0 || idx >= len(cells) {
		return false
	}
	if cells[idx].IsContinuation() {
		idx -= cells[idx].Offset
		if idx < 0 {
			return false
		}
	}

	text := cells[idx].Text()
	if text == "" {
		return false
	}
	merged := text + string(r)
	if clusterCount(merged) != 1 {
		return false
	}

	oldW := cells[idx].Width
	newW := StringWidth(merged)
	if newW < 1 {
		newW = oldW
	}
	style := cells[idx].Style

	line := &g.lines[g.curLine]
	for len(line.Cells) < idx+newW {
		line.Cells = append(line.Cells, EmptyCell())
	}
	for i := idx + oldW; i < idx+newW; i++ {
		clearGlyphAt(line.Cells, i)
	}
	line.Cells[idx] = NewGraphemeCell(merged, newW, style)
	for i := idx + 1; i < idx+newW; i++ {
		line.Cells[i] = NewContinuationCell(i-idx, style)
	}
	for i := idx + newW; i < idx+oldW && i < len(line.Cells); i++ {
		line.Cells[i].Reset()
	}

	if newW > oldW {
		g.advance(newW - oldW)
	}
	return true
}

// VisibleCell returns the cell at a screen position. Positions outside the
// grid, past the end of a line, or below the buffer yield the empty cell.
func (g *Grid) VisibleCell(row, col int) Cell {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return EmptyCell()
	}
	lineIdx, segStart, ok := g.rowStart(row, false)
	if !ok {
		return EmptyCell()
	}
	cells := g.lines[lineIdx].Cells
	idx := segStart + col
	if idx >= len(cells) {
		return EmptyCell()
	}
	return cells[idx]
}

// LineContent returns the text of a screen row with trailing blanks trimmed.
// Continuation cells contribute nothing; empty cells render as spaces.
func (g *Grid) LineContent(row int) string {
	var sb strings.Builder
	for col := 0; col < g.width; col++ {
		cell := g.VisibleCell(row, col)
		switch cell.Content {
		case CellContinuation:
		case CellEmpty:
			sb.WriteByte(' ')
		default:
			sb.WriteString(cell.Text())
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// String renders the viewport as text, one screen row per line.
func (g *Grid) String() string {
	rows := make([]string, g.height)
	for row := 0; row < g.height; row++ {
		rows[row] = g.LineContent(row)
	}
	return strings.Join(rows, "\n")
}

// Resize changes the viewport geometry. With reflow set, a width change
// first merges reflow chunks back into logical lines and re-splits them to
// the new width, keeping wide glyphs on a single chunk and remapping the
// cursor; round-tripping the width preserves content. The viewport is then
// re-anchored to the tail of the buffer and margins reset to full screen.
// fillHeight pads the buffer with empty lines up to the new height. The
// pending-wrap state is left untouched.
func (g *Grid) Resize(width, height int, reflow, fillHeight bool) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	cursorLine, cursorCol := g.curLine, g.curCol
	if reflow && width != g.width {
		cursorLine, cursorCol = g.reflowLines(width)
	}

	g.width = width
	g.height = height
	g.margin = Margin{Top: 0, Bottom: height - 1, Left: 0, Right: width - 1}
	if g.maxScrollback < height {
		g.maxScrollback = height
	}

	if fillHeight {
		for len(g.lines) < height {
			g.lines = append(g.lines, Line{})
		}
	}

	g.anchorHome()

	if over := len(g.lines) - g.maxScrollback; over > 0 {
		trim := over
		if trim > g.home.Row {
			trim = g.home.Row
		}
		if trim > 0 {
			g.lines = g.lines[trim:]
			g.home.Row -= trim
			cursorLine -= trim
		}
	}

	row, col := g.screenPos(cursorLine, cursorCol)
	savedWrap := g.wrap
	g.MoveCursorTo(col, row)
	g.wrap = savedWrap
}

// reflowLines merges Wrapped continuation chunks into logical lines and
// re-splits them into chunks of at most newWidth cells, never splitting a
// wide glyph's continuation run. Returns the remapped buffer cursor.
func (g *Grid) reflowLines(newWidth int) (int, int) {
	merged := make([]Line, 0, len(g.lines))
	curLine, curCol := 0, 0
	for i, ln := range g.lines {
		if ln.Wrapped && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if i == g.curLine {
				curLine, curCol = len(merged)-1, len(last.Cells)+g.curCol
			}
			last.Cells = append(last.Cells, ln.Cells...)
		} else {
			if i == g.curLine {
				curLine, curCol = len(merged), g.curCol
			}
			merged = append(merged, Line{Cells: ln.Cells})
		}
	}

	out := make([]Line, 0, len(merged))
	outLine, outCol := 0, 0
	for li, ln := range merged {
		first := len(out)
		cells := ln.Cells
		if len(cells) == 0 {
			if li == curLine {
				outLine, outCol = len(out), 0
			}
			out = append(out, Line{})
			continue
		}
		for start := 0; start < len(cells); {
			end := start + newWidth
			if end < len(cells) && cells[end].IsContinuation() {
				end -= cells[end].Offset
				if end <= start {
					end = start + newWidth
				}
			}
			if end > len(cells) {
				end = len(cells)
			}
			out = append(out, Line{Cells: cells[start:end:end], Wrapped: start > 0})
			start = end
		}
		if li == curLine {
			rem := curCol
			outLine, outCol = first, rem
			for ci := first; ci < len(out); ci++ {
				n := len(out[ci].Cells)
				if rem < n || ci == len(out)-1 {
					outLine, outCol = ci, rem
					break
				}
				rem -= n
			}
		}
	}
	if len(out) == 0 {
		out = append(out, Line{})
	}
	g.lines = out
	return outLine, outCol
}

// anchorHome points the viewport at the last height rows of the buffer.
func (g *Grid) anchorHome() {
	rows := 0
	for line := len(g.lines) - 1; line >= 0; line-- {
		segs := g.segments(line)
		if rows+segs >= g.height {
			g.home = Position{Row: line, Col: (rows + segs - g.height) * g.width}
			return
		}
		rows += segs
	}
	g.home = Position{}
}

// screenPos maps a buffer position to screen coordinates relative to home,
// clamped into the viewport.
func (g *Grid) screenPos(lineIdx, col int) (int, int) {
	if lineIdx < g.home.Row || col < 0 {
		return 0, 0
	}
	rows := -g.home.Col / g.width
	for l := g.home.Row; l < lineIdx && l < len(g.lines); l++ {
		rows += g.segments(l)
	}
	seg := col / g.width
	if max := g.segments(lineIdx) - 1; seg > max {
		seg = max
	}
	row := rows + seg
	c := col - seg*g.width
	if row < 0 {
		row = 0
	}
	if row > g.height-1 {
		row = g.height - 1
	}
	if c > g.width-1 {
		c = g.width - 1
	}
	return row, c
}
