package celcore

import (
	"strings"
	"testing"
)

func printString(g *Grid, s string) {
	for _, r := range s {
		g.PrintChar(r, Style{})
	}
}

func TestGridPrint(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "Hello")

	if g.LineContent(0) != "Hello" {
		t.Errorf("expected 'Hello', got %q", g.LineContent(0))
	}
	if cur := g.ScreenCursor(); cur.Row != 0 || cur.Col != 5 {
		t.Errorf("expected cursor at (0, 5), got (%d, %d)", cur.Row, cur.Col)
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 buffer line, got %d", g.Len())
	}
}

func TestGridDeferredWrap(t *testing.T) {
	g := NewGrid(5, 5, 10, nil)

	printString(g, "Hello")

	// The row is full but the wrap has not happened yet.
	if !g.WantsWrap() {
		t.Error("expected pending wrap after filling the row")
	}
	if cur := g.ScreenCursor(); cur.Row != 0 || cur.Col != 4 {
		t.Errorf("expected cursor clamped to (0, 4), got (%d, %d)", cur.Row, cur.Col)
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 buffer line, got %d", g.Len())
	}

	// The next print applies the wrap.
	printString(g, "X")
	if g.WantsWrap() {
		t.Error("expected wrap to be consumed")
	}
	if cur := g.ScreenCursor(); cur.Row != 1 || cur.Col != 1 {
		t.Errorf("expected cursor at (1, 1), got (%d, %d)", cur.Row, cur.Col)
	}
	// Printing past the margin grows the logical line, it does not split it.
	if g.Len() != 1 {
		t.Errorf("expected 1 buffer line after wrap, got %d", g.Len())
	}
	if len(g.LineCells(0)) != 6 {
		t.Errorf("expected 6 cells on line 0, got %d", len(g.LineCells(0)))
	}
}

func TestGridFeedLineAndCarriageReturn(t *testing.T) {
	g := NewGrid(5, 5, 10, nil)

	printString(g, "Hello")
	g.FeedLine()
	g.CarriageReturn()
	printString(g, "World")

	if g.Len() != 2 {
		t.Fatalf("expected 2 buffer lines, got %d", g.Len())
	}
	if g.LineContent(0) != "Hello" {
		t.Errorf("expected 'Hello', got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "World" {
		t.Errorf("expected 'World', got %q", g.LineContent(1))
	}
	if !g.WantsWrap() {
		t.Error("expected pending wrap after filling the second row")
	}
}

func TestGridLongLineViewport(t *testing.T) {
	g := NewGrid(5, 5, 10, nil)

	printString(g, "ABCDEFGHIJKLM") // 13 cells, spans rows 0-2
	g.FeedLine()
	g.CarriageReturn()
	printString(g, "NOPQRSTUVWXYZ") // 13 more on a second logical line

	if g.Len() != 2 {
		t.Fatalf("expected 2 buffer lines, got %d", g.Len())
	}
	if len(g.LineCells(0)) != 13 || len(g.LineCells(1)) != 13 {
		t.Errorf("expected 13 cells per line, got %d and %d",
			len(g.LineCells(0)), len(g.LineCells(1)))
	}

	// Six segments on a five-row screen: the viewport slid down one segment
	// into the first line.
	if home := g.GlobalCursorHome(); home != (Position{Row: 0, Col: 5}) {
		t.Errorf("expected home at {0, 5}, got {%d, %d}", home.Row, home.Col)
	}
	if cur := g.ScreenCursor(); cur.Row != 4 || cur.Col != 3 {
		t.Errorf("expected cursor at (4, 3), got (%d, %d)", cur.Row, cur.Col)
	}
	if g.WantsWrap() {
		t.Error("expected no pending wrap at 13 of 15 cells")
	}

	// Top visible row is the second segment of the first line.
	if g.LineContent(0) != "FGHIJ" {
		t.Errorf("expected 'FGHIJ' on screen row 0, got %q", g.LineContent(0))
	}
}

func TestGridScrollbackEviction(t *testing.T) {
	g := NewGrid(10, 3, 5, nil)

	for i := 0; i < 20; i++ {
		printString(g, "x")
		g.FeedLine()
		g.CarriageReturn()
	}

	if g.Len() != 5 {
		t.Errorf("expected buffer capped at 5 lines, got %d", g.Len())
	}
}

func TestGridScrollbackMinimum(t *testing.T) {
	// The cap can never fall below the viewport height.
	g := NewGrid(10, 8, 2, nil)

	if g.MaxScrollback() != 8 {
		t.Errorf("expected max scrollback raised to 8, got %d", g.MaxScrollback())
	}
}

func TestGridWideChar(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "中")

	if cur := g.ScreenCursor(); cur.Col != 2 {
		t.Errorf("expected cursor at col 2 after wide char, got %d", cur.Col)
	}

	cell := g.VisibleCell(0, 0)
	if !cell.IsWide() {
		t.Error("expected wide cell at (0, 0)")
	}
	if cell.Text() != "中" {
		t.Errorf("expected '中', got %q", cell.Text())
	}

	cont := g.VisibleCell(0, 1)
	if !cont.IsContinuation() {
		t.Error("expected continuation cell at (0, 1)")
	}
	if cont.Offset != 1 {
		t.Errorf("expected continuation offset 1, got %d", cont.Offset)
	}
}

func TestGridOverwriteWideChar(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "中")
	g.CarriageReturn()
	printString(g, "X")

	// Overwriting the primary cell clears the whole glyph run.
	if got := g.VisibleCell(0, 0).Text(); got != "X" {
		t.Errorf("expected 'X' at (0, 0), got %q", got)
	}
	if !g.VisibleCell(0, 1).IsEmpty() {
		t.Error("expected orphaned continuation cell to be cleared")
	}
}

func TestGridOverwriteWideCharTail(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "中文")
	g.MoveCursorTo(1, 0)
	printString(g, "X")

	// Writing onto a continuation cell clears its primary too.
	if !g.VisibleCell(0, 0).IsEmpty() {
		t.Error("expected primary cell of the clipped glyph to be cleared")
	}
	if got := g.VisibleCell(0, 1).Text(); got != "X" {
		t.Errorf("expected 'X' at (0, 1), got %q", got)
	}
	if got := g.VisibleCell(0, 2).Text(); got != "文" {
		t.Errorf("expected '文' untouched at (0, 2), got %q", got)
	}
}

func TestGridCombiningMerge(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	g.PrintChar('e', Style{})
	g.PrintChar(0x0301, Style{}) // combining acute accent

	cell := g.VisibleCell(0, 0)
	if cell.Content != CellGrapheme {
		t.Errorf("expected grapheme cell, got content %v", cell.Content)
	}
	if cell.Text() != "é" {
		t.Errorf("expected combined cluster, got %q", cell.Text())
	}
	// The merge replaces the cell in place; the cursor does not move.
	if cur := g.ScreenCursor(); cur.Col != 1 {
		t.Errorf("expected cursor at col 1, got %d", cur.Col)
	}
}

func TestGridCombiningMergeAcrossPendingWrap(t *testing.T) {
	g := NewGrid(5, 3, 10, nil)

	printString(g, "abcde")
	if !g.WantsWrap() {
		t.Fatal("expected pending wrap")
	}

	// A combining mark joins the last cell before the wrap point instead of
	// wrapping.
	g.PrintChar(0x0301, Style{})

	if !g.WantsWrap() {
		t.Error("expected wrap still pending after combining merge")
	}
	if got := g.VisibleCell(0, 4).Text(); got != "é" {
		t.Errorf("expected combined cluster at (0, 4), got %q", got)
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 buffer line, got %d", g.Len())
	}
}

func TestGridMoveCursorClamps(t *testing.T) {
	g := NewGrid(10, 5, 10, nil)

	g.MoveCursorTo(99, 99)
	if cur := g.ScreenCursor(); cur.Row != 4 || cur.Col != 9 {
		t.Errorf("expected cursor clamped to (4, 9), got (%d, %d)", cur.Row, cur.Col)
	}

	g.MoveCursorTo(-3, -3)
	if cur := g.ScreenCursor(); cur.Row != 0 || cur.Col != 0 {
		t.Errorf("expected cursor clamped to (0, 0), got (%d, %d)", cur.Row, cur.Col)
	}
}

func TestGridCursorMotionCancelsWrap(t *testing.T) {
	g := NewGrid(5, 3, 10, nil)

	printString(g, "ABCDE")
	if !g.WantsWrap() {
		t.Fatal("expected pending wrap")
	}

	g.CarriageReturn()
	if g.WantsWrap() {
		t.Error("expected cursor motion to cancel the pending wrap")
	}

	printString(g, "X")
	if g.LineContent(0) != "XBCDE" {
		t.Errorf("expected 'XBCDE', got %q", g.LineContent(0))
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 buffer line, got %d", g.Len())
	}
}

func TestGridEraseKeepsWrapPending(t *testing.T) {
	g := NewGrid(5, 3, 10, nil)

	printString(g, "ABCDE")
	g.EraseChars(1)

	if !g.WantsWrap() {
		t.Error("expected erase to leave the pending wrap alone")
	}
}

func TestGridTab(t *testing.T) {
	g := NewGrid(20, 3, 10, nil)

	g.Tab()
	if cur := g.ScreenCursor(); cur.Col != 8 {
		t.Errorf("expected cursor at col 8, got %d", cur.Col)
	}
	g.Tab()
	if cur := g.ScreenCursor(); cur.Col != 16 {
		t.Errorf("expected cursor at col 16, got %d", cur.Col)
	}
	g.Tab()
	if cur := g.ScreenCursor(); cur.Col != 19 {
		t.Errorf("expected cursor clamped to col 19, got %d", cur.Col)
	}
}

func TestGridAutowrapOff(t *testing.T) {
	g := NewGrid(5, 3, 10, nil)
	g.SetAutowrap(false)

	printString(g, "ABCDEFG")

	// Overflow overwrites the last column instead of wrapping.
	if g.LineContent(0) != "ABCDG" {
		t.Errorf("expected 'ABCDG', got %q", g.LineContent(0))
	}
	if cur := g.ScreenCursor(); cur.Row != 0 || cur.Col != 4 {
		t.Errorf("expected cursor at (0, 4), got (%d, %d)", cur.Row, cur.Col)
	}
	if g.WantsWrap() {
		t.Error("expected no pending wrap with autowrap off")
	}
}

func TestGridDisableAutowrapCancelsWrap(t *testing.T) {
	g := NewGrid(5, 3, 10, nil)

	printString(g, "ABCDE")
	if !g.WantsWrap() {
		t.Fatal("expected pending wrap")
	}

	g.SetAutowrap(false)
	if g.WantsWrap() {
		t.Error("expected disabling autowrap to cancel the pending wrap")
	}
}

func TestGridDeleteCells(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "ABCDEF")
	g.CarriageReturn()
	g.DeleteCells(2)

	if g.LineContent(0) != "CDEF" {
		t.Errorf("expected 'CDEF', got %q", g.LineContent(0))
	}
}

func TestGridEraseChars(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "ABCDEF")
	g.CarriageReturn()
	g.EraseChars(2)

	if g.LineContent(0) != "  CDEF" {
		t.Errorf("expected '  CDEF', got %q", g.LineContent(0))
	}
}

func TestGridEraseRange(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "AAAAAAAAAA")
	g.FeedLine()
	g.CarriageReturn()
	printString(g, "BBBBBBBBBB")

	g.Erase(Position{Row: 0, Col: 5}, Position{Row: 1, Col: 4})

	if g.LineContent(0) != "AAAAA" {
		t.Errorf("expected 'AAAAA', got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "     BBBBB" {
		t.Errorf("expected '     BBBBB', got %q", g.LineContent(1))
	}
}

func TestGridEraseRangeNormalized(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "ABCDEF")

	// Out-of-order arguments behave like the sorted pair.
	g.Erase(Position{Row: 0, Col: 3}, Position{Row: 0, Col: 1})

	if g.LineContent(0) != "A   EF" {
		t.Errorf("expected 'A   EF', got %q", g.LineContent(0))
	}
}

func TestGridClear(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "Hello")
	g.Clear()

	if g.LineContent(0) != "" {
		t.Errorf("expected empty line after clear, got %q", g.LineContent(0))
	}
}

func TestGridReverseIndexAtTop(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "Top")
	g.MoveCursorTo(0, 0)
	g.ReverseIndex()

	if g.LineContent(0) != "" {
		t.Errorf("expected empty row 0, got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "Top" {
		t.Errorf("expected 'Top' pushed to row 1, got %q", g.LineContent(1))
	}
	if cur := g.ScreenCursor(); cur.Row != 0 {
		t.Errorf("expected cursor to stay on row 0, got %d", cur.Row)
	}
}

func TestGridReverseIndexMidScreen(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	g.MoveCursorTo(0, 2)
	g.ReverseIndex()

	if cur := g.ScreenCursor(); cur.Row != 1 {
		t.Errorf("expected cursor on row 1, got %d", cur.Row)
	}
}

func TestGridVerticalMarginScroll(t *testing.T) {
	g := NewGrid(10, 5, 20, nil)

	for i, s := range []string{"L1", "L2", "L3", "L4", "L5"} {
		g.MoveCursorTo(0, i)
		printString(g, s)
	}

	g.SetVerticalMargin(1, 3)
	g.MoveCursorTo(0, 3) // bottom of the region
	g.FeedLine()

	want := []string{"L1", "L3", "L4", "", "L5"}
	for row, expected := range want {
		if got := g.LineContent(row); got != expected {
			t.Errorf("row %d: expected %q, got %q", row, expected, got)
		}
	}
	// A sub-region scroll recycles lines; the buffer length is unchanged.
	if g.Len() != 5 {
		t.Errorf("expected 5 buffer lines, got %d", g.Len())
	}
}

func TestGridVerticalMarginScrollDown(t *testing.T) {
	g := NewGrid(10, 5, 20, nil)

	for i, s := range []string{"L1", "L2", "L3", "L4", "L5"} {
		g.MoveCursorTo(0, i)
		printString(g, s)
	}

	g.SetVerticalMargin(1, 3)
	g.MoveCursorTo(0, 1) // top of the region
	g.ReverseIndex()

	want := []string{"L1", "", "L2", "L3", "L5"}
	for row, expected := range want {
		if got := g.LineContent(row); got != expected {
			t.Errorf("row %d: expected %q, got %q", row, expected, got)
		}
	}
}

func TestGridInvalidMarginsIgnored(t *testing.T) {
	g := NewGrid(10, 5, 10, nil)

	g.SetVerticalMargin(3, 1)
	if m := g.MarginRect(); m.Top != 0 || m.Bottom != 4 {
		t.Errorf("expected full margin after invalid request, got %+v", m)
	}

	g.SetVerticalMargin(0, 9)
	if m := g.MarginRect(); m.Top != 0 || m.Bottom != 4 {
		t.Errorf("expected full margin after out-of-range request, got %+v", m)
	}
}

func TestGridMarginHomesCursor(t *testing.T) {
	g := NewGrid(10, 5, 10, nil)

	g.MoveCursorTo(5, 3)
	g.SetVerticalMargin(1, 3)

	if cur := g.ScreenCursor(); cur.Row != 0 || cur.Col != 0 {
		t.Errorf("expected cursor homed, got (%d, %d)", cur.Row, cur.Col)
	}
}

func TestGridHorizontalMarginScrollIgnored(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "Hello")
	g.SetHorizontalMargin(2, 7)
	g.MoveCursorTo(3, 2) // bottom row, inside the region
	g.FeedLine()

	// Scrolling inside a horizontal margin is unsupported and ignored.
	if g.LineContent(0) != "Hello" {
		t.Errorf("expected content untouched, got %q", g.LineContent(0))
	}
}

func TestGridInsertLines(t *testing.T) {
	g := NewGrid(10, 5, 20, nil)

	for i, s := range []string{"A", "B", "C"} {
		g.MoveCursorTo(0, i)
		printString(g, s)
	}

	g.MoveCursorTo(0, 1)
	g.InsertLines(1)

	want := []string{"A", "", "B", "C", ""}
	for row, expected := range want {
		if got := g.LineContent(row); got != expected {
			t.Errorf("row %d: expected %q, got %q", row, expected, got)
		}
	}
}

func TestGridDeleteLines(t *testing.T) {
	g := NewGrid(10, 5, 20, nil)

	for i, s := range []string{"A", "B", "C"} {
		g.MoveCursorTo(0, i)
		printString(g, s)
	}

	g.MoveCursorTo(0, 1)
	g.DeleteLines(1)

	if g.LineContent(0) != "A" {
		t.Errorf("expected 'A' on row 0, got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "C" {
		t.Errorf("expected 'C' pulled up to row 1, got %q", g.LineContent(1))
	}
}

func TestGridInsertLinesOutsideMargin(t *testing.T) {
	g := NewGrid(10, 5, 20, nil)

	printString(g, "A")
	g.SetVerticalMargin(2, 4)
	g.MoveCursorTo(0, 0) // above the region
	g.InsertLines(1)

	if g.LineContent(0) != "A" {
		t.Errorf("expected no-op outside the margin, got %q", g.LineContent(0))
	}
}

func TestGridResizeReflow(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "ABCDEFGHIJKL") // 12 cells

	g.Resize(6, 3, true, false)

	// The logical line is split into physical chunks of the new width.
	if g.Len() != 2 {
		t.Fatalf("expected 2 chunks after narrowing, got %d", g.Len())
	}
	if !g.LineWrapped(1) {
		t.Error("expected chunk 1 to be marked wrapped")
	}
	if g.LineContent(0) != "ABCDEF" {
		t.Errorf("expected 'ABCDEF', got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "GHIJKL" {
		t.Errorf("expected 'GHIJKL', got %q", g.LineContent(1))
	}

	// Widening merges the chunks back.
	g.Resize(10, 3, true, false)
	if g.LineContent(0) != "ABCDEFGHIJ" {
		t.Errorf("expected 'ABCDEFGHIJ', got %q", g.LineContent(0))
	}
	if g.LineContent(1) != "KL" {
		t.Errorf("expected 'KL', got %q", g.LineContent(1))
	}
}

func TestGridResizeReflowKeepsWideGlyphWhole(t *testing.T) {
	g := NewGrid(6, 3, 10, nil)

	printString(g, "AB中DE") // 6 columns: A B 中 中 D E

	g.Resize(3, 3, true, false)

	// The split point lands inside the wide glyph; the chunk boundary moves
	// back so the glyph stays on one chunk.
	if g.LineContent(0) != "AB" {
		t.Errorf("expected 'AB', got %q", g.LineContent(0))
	}
	if !strings.HasPrefix(g.LineContent(1), "中") {
		t.Errorf("expected '中' to start chunk 1, got %q", g.LineContent(1))
	}
}

func TestGridResizeReflowCursor(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "ABCDEFGH") // cursor at buffer col 8

	g.Resize(6, 3, true, false)

	// Buffer col 8 falls on the second chunk at col 2.
	if cur := g.BufferCursor(); cur.Row != 1 || cur.Col != 2 {
		t.Errorf("expected buffer cursor at line 1 col 2, got (%d, %d)", cur.Row, cur.Col)
	}
	printString(g, "X")
	if g.LineContent(1) != "GHX" {
		t.Errorf("expected 'GHX', got %q", g.LineContent(1))
	}
}

func TestGridResizeFillHeight(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "A")
	g.Resize(10, 5, false, true)

	if g.Len() != 5 {
		t.Errorf("expected buffer padded to 5 lines, got %d", g.Len())
	}
	if g.LineContent(0) != "A" {
		t.Errorf("expected 'A' on row 0, got %q", g.LineContent(0))
	}
}

func TestGridResizeResetsMargins(t *testing.T) {
	g := NewGrid(10, 5, 10, nil)

	g.SetVerticalMargin(1, 3)
	g.Resize(10, 4, false, false)

	if m := g.MarginRect(); m.Top != 0 || m.Bottom != 3 || m.Left != 0 || m.Right != 9 {
		t.Errorf("expected full margins after resize, got %+v", m)
	}
}

func TestGridString(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	printString(g, "One")
	g.FeedLine()
	g.CarriageReturn()
	printString(g, "Two")

	if got := g.String(); got != "One\nTwo\n" {
		t.Errorf("expected 'One\\nTwo\\n', got %q", got)
	}
}

func TestGridVisibleCellOutOfRange(t *testing.T) {
	g := NewGrid(10, 3, 10, nil)

	if !g.VisibleCell(-1, 0).IsEmpty() {
		t.Error("expected empty cell for negative row")
	}
	if !g.VisibleCell(0, 99).IsEmpty() {
		t.Error("expected empty cell past the right edge")
	}
	if !g.VisibleCell(2, 0).IsEmpty() {
		t.Error("expected empty cell below the buffer")
	}
}
