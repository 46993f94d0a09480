package celcore

import (
	"testing"
)

func TestEmptyCell(t *testing.T) {
	cell := EmptyCell()

	if !cell.IsEmpty() {
		t.Error("expected empty cell")
	}
	if cell.Text() != "" {
		t.Errorf("expected empty text, got %q", cell.Text())
	}
	if cell.IsWide() {
		t.Error("expected empty cell not wide")
	}
}

func TestCharCell(t *testing.T) {
	cell := NewCharCell('A', 1, Style{})

	if cell.Content != CellChar {
		t.Errorf("expected CellChar content, got %v", cell.Content)
	}
	if cell.Text() != "A" {
		t.Errorf("expected 'A', got %q", cell.Text())
	}
	if cell.IsWide() {
		t.Error("expected narrow cell")
	}
}

func TestWideCharCell(t *testing.T) {
	cell := NewCharCell('中', 2, Style{})

	if !cell.IsWide() {
		t.Error("expected wide cell")
	}
	if cell.Text() != "中" {
		t.Errorf("expected '中', got %q", cell.Text())
	}
}

func TestGraphemeCell(t *testing.T) {
	cell := NewGraphemeCell("é", 1, Style{})

	if cell.Content != CellGrapheme {
		t.Errorf("expected CellGrapheme content, got %v", cell.Content)
	}
	if cell.Text() != "é" {
		t.Errorf("expected cluster, got %q", cell.Text())
	}
}

func TestContinuationCell(t *testing.T) {
	cell := NewContinuationCell(1, Style{})

	if !cell.IsContinuation() {
		t.Error("expected continuation cell")
	}
	if cell.Offset != 1 {
		t.Errorf("expected offset 1, got %d", cell.Offset)
	}
	if cell.Text() != "" {
		t.Errorf("expected empty text, got %q", cell.Text())
	}
	if cell.IsWide() {
		t.Error("continuation cells are never wide themselves")
	}
}

func TestCellAccessorsOnReturnValue(t *testing.T) {
	// Accessors must be callable directly on a returned Cell value, without
	// binding it to a variable first.
	if !EmptyCell().IsEmpty() {
		t.Error("expected empty cell")
	}
	if NewCharCell('A', 1, Style{}).Text() != "A" {
		t.Errorf("expected 'A', got %q", NewCharCell('A', 1, Style{}).Text())
	}
	if !NewCharCell('中', 2, Style{}).IsWide() {
		t.Error("expected wide cell")
	}
	if !NewContinuationCell(1, Style{}).IsContinuation() {
		t.Error("expected continuation cell")
	}
}

func TestCellReset(t *testing.T) {
	style := Style{Flags: FlagBold}
	cell := NewCharCell('A', 1, style)

	cell.Reset()

	if !cell.IsEmpty() {
		t.Error("expected empty cell after reset")
	}
	if cell.Style.Flags != 0 {
		t.Error("expected default style after reset")
	}
	if cell.Width != 0 {
		t.Errorf("expected width 0 after reset, got %d", cell.Width)
	}
}
