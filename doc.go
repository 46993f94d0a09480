// Package celcore provides a headless ANSI/VT terminal state machine with a
// renderable screen grid.
//
// The package emulates a terminal without any display: a host feeds it the
// raw byte stream of a process and reads back a grid of styled cells, a
// cursor, and the session state the process reports. It is the core a
// renderer, a multiplexer, or a test harness builds on.
//
// # Quick Start
//
// Create a terminal and write ANSI sequences to it:
//
//	term := celcore.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.LineContent(0)) // "Hello World!"
//
// [Terminal.String] renders the whole viewport instead, one line per
// screen row.
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Terminal]: The entry point; owns the parser and the screen state
//   - [Performer]: The escape sequence state machine
//   - [Grid]: Scrollback and viewport in one buffer of logical lines
//   - [Cell]: A single character or grapheme cluster with a style snapshot
//
// # Feeding Bytes
//
// Terminal implements [io.Writer], so process output can be piped straight
// in. Hosts that interleave parsing with rendering use the stepping form
// instead:
//
//	consumed, promptChanged := term.HandleSequenceBytes(buf, false)
//
// HandleSequenceBytes consumes bytes until the buffer is exhausted, a prompt
// boundary is crossed, or the configured per-step action bound is hit; the
// caller re-invokes it with the remainder.
//
// # The Grid
//
// Buffer lines are logical: printing with autowrap never splits a line, so a
// line can be wider than the screen and span several rows. The viewport is a
// window into the buffer defined by the home coordinate; scrolling up moves
// the window and old lines age out of the front of the buffer once the
// scrollback cap is reached. Resizing with reflow re-chunks lines to the new
// width and back without losing content.
//
//	cell := term.Cell(row, col)   // visible cell at a screen position
//	term.Grid().LineCells(0)      // raw buffer access
//
// # Responses
//
// Sequences like cursor position reports, and mouse reports in general,
// produce bytes directed at the process. They accumulate on an internal
// queue drained with [Terminal.ConsumeOutputStream], or go straight to a
// writer configured with [WithResponse].
//
// # Session State
//
// A cooperating shell reports session facts over a private OSC channel:
// prompt id (1337), working directory (1338), exit code of the last command
// (1339), and whether a resize should clear the screen (1340). They surface
// through [Terminal.PromptID], [Terminal.WorkingDirectory], and
// [Terminal.LastExitCode]; prompt id changes also mark step boundaries in
// HandleSequenceBytes.
//
// # Concurrency
//
// Terminal is not safe for concurrent use. The intended pattern is a reader
// goroutine funneling PTY bytes over a channel to the single goroutine that
// owns the Terminal; see examples/pty.
package celcore
