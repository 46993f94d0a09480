package celcore

import (
	"log/slog"

	vte "github.com/danielgatis/go-vte"
)

const (
	// DEFAULT_ROWS is the default number of terminal rows.
	DEFAULT_ROWS = 24
	// DEFAULT_COLS is the default number of terminal columns.
	DEFAULT_COLS = 80
	// DEFAULT_SCROLLBACK is the default cap on retained buffer lines.
	DEFAULT_SCROLLBACK = 1000
)

// Terminal is the entry point: it owns the byte-level parser and the
// performer, and exposes the renderable screen state. Bytes from the process
// go in through HandleSequenceBytes (or Write); bytes for the process
// (device reports, mouse reports) come out of ConsumeOutputStream unless a
// ResponseProvider is set.
//
// Terminal is not safe for concurrent use. A host with a PTY reader
// goroutine funnels the reads to the goroutine that owns the Terminal.
type Terminal struct {
	parser    *vte.Parser
	performer *Performer

	rows          int
	cols          int
	maxScrollback int
	maxSequences  int

	bellProvider     BellProvider
	titleProvider    TitleProvider
	responseProvider ResponseProvider
	logger           *slog.Logger
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithSize sets the terminal dimensions.
// Values <= 0 are replaced with defaults (24x80).
func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DEFAULT_ROWS
	}

	if cols <= 0 {
		cols = DEFAULT_COLS
	}

	return func(t *Terminal) {
		t.rows = rows
		t.cols = cols
	}
}

// WithScrollback sets the maximum number of retained buffer lines, visible
// rows included. Values below the height are raised to the height.
func WithScrollback(maxLines int) Option {
	return func(t *Terminal) {
		t.maxScrollback = maxLines
	}
}

// WithBell sets the handler for bell events.
// Defaults to a no-op if not set.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		t.bellProvider = p
	}
}

// WithTitle sets the handler for window title changes.
// Defaults to a no-op if not set.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		t.titleProvider = p
	}
}

// WithResponse routes terminal responses (device reports, mouse reports) to
// a writer instead of the internal output queue.
func WithResponse(p ResponseProvider) Option {
	return func(t *Terminal) {
		t.responseProvider = p
	}
}

// WithLogger sets the logger for diagnostics about unhandled or malformed
// sequences. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Terminal) {
		t.logger = logger
	}
}

// WithMaxSequencesPerStep bounds how many performed actions a single
// HandleSequenceBytes call processes before returning, so a host can
// interleave rendering with parsing. Zero means unbounded.
func WithMaxSequencesPerStep(n int) Option {
	return func(t *Terminal) {
		t.maxSequences = n
	}
}

// New creates a terminal with the given options.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:          DEFAULT_ROWS,
		cols:          DEFAULT_COLS,
		maxScrollback: DEFAULT_SCROLLBACK,
		bellProvider:  NoopBell{},
		titleProvider: NoopTitle{},
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = slog.Default()
	}

	t.performer = NewPerformer(t.cols, t.rows, t.maxScrollback, t.bellProvider, t.titleProvider, t.responseProvider, t.logger)
	t.parser = vte.NewParser(t.performer)

	return t
}

// HandleSequenceBytes feeds bytes to the parser one at a time and returns
// how many were consumed, plus whether a prompt boundary (OSC 1337 changing
// the prompt id) was crossed. Parsing stops early at a prompt boundary,
// after the first performed action when stopEarly is set, or after
// MaxSequencesPerStep actions. The caller re-invokes with the remainder.
func (t *Terminal) HandleSequenceBytes(buf []byte, stopEarly bool) (int, bool) {
	startPrompt := t.performer.promptID
	actions := 0

	for i := 0; i < len(buf); i++ {
		t.performer.actionPerformed = false
		t.parser.Advance(buf[i])

		if t.performer.promptID != startPrompt {
			return i + 1, true
		}
		if t.performer.actionPerformed {
			actions++
			if stopEarly {
				return i + 1, false
			}
			if t.maxSequences > 0 && actions >= t.maxSequences {
				return i + 1, false
			}
		}
	}

	return len(buf), false
}

// Write implements io.Writer: all bytes are processed, stepping across
// prompt boundaries.
func (t *Terminal) Write(p []byte) (int, error) {
	for off := 0; off < len(p); {
		n, _ := t.HandleSequenceBytes(p[off:], false)
		off += n
	}
	return len(p), nil
}

// WriteString processes a string of terminal output.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Resize changes the terminal dimensions, reflowing the buffer. With clear
// set (or when the process requested clear-on-resize via OSC 1340) the
// screen contents are dropped instead.
func (t *Terminal) Resize(cols, rows int, clear bool) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t.cols, t.rows = cols, rows
	t.performer.Resize(cols, rows, clear)
}

// ConsumeOutputStream drains the bytes queued for the process, leaving the
// queue empty. Returns nil when nothing is queued.
func (t *Terminal) ConsumeOutputStream() []byte {
	return t.performer.ConsumeOutput()
}

// HandleMouseButton feeds a host mouse button event at a screen cell.
func (t *Terminal) HandleMouseButton(button MouseButton, pressed bool, mods MouseModifiers, col, row int) {
	t.performer.HandleMouseButton(button, pressed, mods, col, row)
}

// HandleScroll feeds a host scroll delta at a screen cell. Fractional
// deltas accumulate; one wheel report is emitted per whole unit.
func (t *Terminal) HandleScroll(delta float64, mods MouseModifiers, col, row int) {
	t.performer.HandleScroll(delta, mods, col, row)
}

// EncodePaste prepares pasted data for the process, adding the bracketed
// paste envelope when the mode is on.
func (t *Terminal) EncodePaste(data []byte) []byte {
	if !t.performer.state.BracketedPaste {
		return data
	}
	out := make([]byte, 0, len(data)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, data...)
	out = append(out, "\x1b[201~"...)
	return out
}

// SetIgnorePrints toggles swallowing of printable characters, e.g. to drop
// echo after a prompt boundary. The flag clears itself on the first
// non-print event.
func (t *Terminal) SetIgnorePrints(on bool) {
	t.performer.SetIgnorePrints(on)
}

// Rows returns the number of rows.
func (t *Terminal) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Terminal) Cols() int { return t.cols }

// Grid returns the active screen grid.
func (t *Terminal) Grid() *Grid { return t.performer.state.Grid }

// Cell returns the cell at a screen position.
func (t *Terminal) Cell(row, col int) Cell {
	return t.performer.state.Grid.VisibleCell(row, col)
}

// CursorPosition returns the cursor in screen coordinates.
func (t *Terminal) CursorPosition() Position {
	return t.performer.state.Grid.ScreenCursor()
}

// Cursor returns the cursor rendering state.
func (t *Terminal) Cursor() CursorState {
	return t.performer.state.Cursor
}

// Style returns the current style accumulator.
func (t *Terminal) Style() Style {
	return t.performer.state.Style
}

// Title returns the window title.
func (t *Terminal) Title() string { return t.performer.Title() }

// PromptID returns the last prompt id reported by the process.
func (t *Terminal) PromptID() int { return t.performer.PromptID() }

// WorkingDirectory returns the last working directory reported by the
// process.
func (t *Terminal) WorkingDirectory() string { return t.performer.WorkingDirectory() }

// LastExitCode returns the last exit code reported by the process.
func (t *Terminal) LastExitCode() int { return t.performer.LastExitCode() }

// IsAlternateScreen returns true while the alternate screen is active.
func (t *Terminal) IsAlternateScreen() bool { return t.performer.IsAlternateScreen() }

// BracketedPaste returns the bracketed paste mode.
func (t *Terminal) BracketedPaste() bool { return t.performer.state.BracketedPaste }

// MouseTracking returns the active mouse reporting granularity.
func (t *Terminal) MouseTracking() MouseTracking { return t.performer.state.MouseTracking }

// MouseEncoding returns the active mouse report encoding.
func (t *Terminal) MouseEncoding() MouseEncoding { return t.performer.state.MouseEncoding }

// LineContent returns the text of a screen row with trailing blanks trimmed.
func (t *Terminal) LineContent(row int) string {
	return t.performer.state.Grid.LineContent(row)
}

// String renders the viewport as text, one screen row per line.
func (t *Terminal) String() string {
	return t.performer.state.Grid.String()
}
