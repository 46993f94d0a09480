package celcore

import (
	"fmt"
	"log/slog"

	vte "github.com/danielgatis/go-vte"
)

// AltScreenState is the alternate screen tri-state. The alternate screen is
// armed by default; private mode 1046 disarms it, 1047/1049 activate it.
type AltScreenState uint8

const (
	// AltScreenDisabled means 1047/1049 activation requests are ignored.
	AltScreenDisabled AltScreenState = iota
	// AltScreenEnabled means the alternate screen may be activated.
	AltScreenEnabled
	// AltScreenActive means the alternate screen is in use.
	AltScreenActive
)

// State is one full terminal screen state: grid, cursor rendering state,
// style accumulator, and the per-screen modes. Activating the alternate
// screen swaps the whole State and deactivating restores the saved one,
// discarding everything written to the alternate grid.
type State struct {
	Grid           *Grid
	Cursor         CursorState
	Style          Style
	MouseTracking  MouseTracking
	MouseEncoding  MouseEncoding
	BracketedPaste bool
	SavedCursor    *SavedCursor
}

// deviceAttributes is the DA report for a VT220-class terminal.
const deviceAttributes = "\x1b[?62;c"

// Performer is the escape sequence state machine. It receives lexed events
// from the vte parser (prints, control bytes, CSI/OSC/ESC dispatches) and
// applies them to the active screen state. It also carries the session
// fields reported by the process over the private OSC channel: prompt id,
// working directory, and last exit code.
//
// Performer is not safe for concurrent use; Terminal drives it from the
// caller's goroutine.
type Performer struct {
	state   *State
	saved   *State
	altMode AltScreenState

	cols          int
	rows          int
	maxScrollback int

	output       []byte
	title        string
	promptID     int
	workingDir   string
	lastExitCode int

	ignorePrints    bool
	actionPerformed bool
	clearOnResize   bool

	// mouse transition tracking
	pressedButton int
	lastMouseCell Position
	scrollAccum   float64

	bell          BellProvider
	titleProvider TitleProvider
	response      ResponseProvider
	logger        *slog.Logger
}

// NewPerformer creates a performer with a fresh primary screen.
func NewPerformer(cols, rows, maxScrollback int, bell BellProvider, title TitleProvider, response ResponseProvider, logger *slog.Logger) *Performer {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Performer{
		cols:          cols,
		rows:          rows,
		maxScrollback: maxScrollback,
		altMode:       AltScreenEnabled,
		pressedButton: -1,
		bell:          bell,
		titleProvider: title,
		response:      response,
		logger:        logger,
	}
	p.state = p.newScreenState(maxScrollback)
	return p
}

func (p *Performer) newScreenState(maxScrollback int) *State {
	return &State{
		Grid:   NewGrid(p.cols, p.rows, maxScrollback, p.logger),
		Cursor: NewCursorState(),
	}
}

// ActiveState returns the screen state sequences currently apply to.
func (p *Performer) ActiveState() *State { return p.state }

// IsAlternateScreen returns true while the alternate screen is active.
func (p *Performer) IsAlternateScreen() bool { return p.altMode == AltScreenActive }

// Title returns the window title set via OSC 0/2.
func (p *Performer) Title() string { return p.title }

// PromptID returns the last prompt id reported over OSC 1337.
func (p *Performer) PromptID() int { return p.promptID }

// WorkingDirectory returns the last directory reported over OSC 1338.
func (p *Performer) WorkingDirectory() string { return p.workingDir }

// LastExitCode returns the last exit code reported over OSC 1339.
func (p *Performer) LastExitCode() int { return p.lastExitCode }

// SetIgnorePrints toggles swallowing of printable characters. The flag also
// clears itself on the first non-print event.
func (p *Performer) SetIgnorePrints(on bool) { p.ignorePrints = on }

// ConsumeOutput drains the queued response bytes, leaving the queue empty.
func (p *Performer) ConsumeOutput() []byte {
	out := p.output
	p.output = nil
	return out
}

func (p *Performer) respond(s string) {
	p.respondBytes([]byte(s))
}

func (p *Performer) respondBytes(b []byte) {
	if p.response != nil {
		_, _ = p.response.Write(b)
		return
	}
	p.output = append(p.output, b...)
}

// Resize changes the screen dimensions of both the active and any saved
// screen state. With clear set (or after OSC 1340;1) the grids are replaced
// instead of reflowed.
func (p *Performer) Resize(cols, rows int, clear bool) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	p.cols, p.rows = cols, rows
	clear = clear || p.clearOnResize

	resize := func(s *State, maxScrollback int) {
		if clear {
			s.Grid = NewGrid(cols, rows, maxScrollback, p.logger)
			return
		}
		s.Grid.Resize(cols, rows, true, false)
	}

	if p.saved != nil {
		// the saved state is the primary screen behind an active alternate
		resize(p.saved, p.maxScrollback)
		resize(p.state, rows)
		return
	}
	resize(p.state, p.maxScrollback)
}

// Print implements vte.Performer.
func (p *Performer) Print(r rune) {
	p.actionPerformed = true
	if p.ignorePrints {
		return
	}
	p.state.Grid.PrintChar(r, p.state.Style)
}

// Execute implements vte.Performer: C0 control bytes.
func (p *Performer) Execute(b byte) {
	p.ignorePrints = false
	p.actionPerformed = true

	g := p.state.Grid
	switch b {
	case 0x07: // BEL
		p.bell.Ring()
	case 0x08: // BS
		g.MoveCursorRelative(-1, 0)
	case 0x09: // HT
		g.Tab()
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		g.FeedLine()
	case 0x0d: // CR
		g.CarriageReturn()
	case 0x1a: // SUB aborts the sequence; the parser already did
	default:
		p.logger.Debug("unhandled control byte", "byte", b)
	}
}

// Hook implements vte.Performer. DCS payloads (sixel and friends) are not
// part of the supported protocol and are dropped.
func (p *Performer) Hook(params [][]uint16, intermediates []byte, ignore bool, action rune) {
	p.ignorePrints = false
	p.actionPerformed = true
	p.logger.Debug("ignoring dcs sequence", "action", string(action))
}

// Put implements vte.Performer.
func (p *Performer) Put(b byte) {}

// Unhook implements vte.Performer.
func (p *Performer) Unhook() {}

// SosPmApcDispatch implements vte.Performer. SOS/PM/APC strings are not part
// of the supported protocol and are dropped.
func (p *Performer) SosPmApcDispatch(kind vte.SosPmApcKind, data []byte, bellTerminated bool) {
	p.ignorePrints = false
	p.actionPerformed = true
	p.logger.Debug("ignoring string sequence", "kind", kind, "bytes", len(data))
}

var _ vte.Performer = (*Performer)(nil)

// OscDispatch implements vte.Performer. Besides the window title, the OSC
// channel carries the session side-band: 1337 prompt id, 1338 working
// directory, 1339 exit code, 1340 clear-on-resize.
func (p *Performer) OscDispatch(params [][]byte, bellTerminated bool) {
	p.ignorePrints = false
	p.actionPerformed = true

	if len(params) == 0 {
		return
	}
	code, ok := atoiBytes(params[0])
	if !ok {
		p.logger.Debug("ignoring osc with non-numeric code", "code", string(params[0]))
		return
	}
	var arg []byte
	if len(params) > 1 {
		arg = params[1]
	}

	switch code {
	case 0, 2:
		p.title = string(arg)
		p.titleProvider.SetTitle(p.title)
	case 1337:
		if id, ok := atoiBytes(arg); ok {
			p.promptID = id
		} else {
			p.logger.Debug("ignoring non-integer prompt id", "payload", string(arg))
		}
	case 1338:
		p.workingDir = string(arg)
	case 1339:
		if exit, ok := atoiBytes(arg); ok {
			p.lastExitCode = exit
		} else {
			p.logger.Debug("ignoring non-integer exit code", "payload", string(arg))
		}
	case 1340:
		p.clearOnResize = len(arg) == 1 && arg[0] == '1'
	default:
		p.logger.Debug("unhandled osc", "code", code)
	}
}

// CsiDispatch implements vte.Performer.
func (p *Performer) CsiDispatch(params [][]uint16, intermediates []byte, ignore bool, action rune) {
	p.ignorePrints = false
	p.actionPerformed = true

	if ignore {
		p.logger.Debug("ignoring malformed csi", "action", string(action))
		return
	}

	private := len(intermediates) > 0 && intermediates[0] == '?'
	ps := flattenParams(params)
	g := p.state.Grid
	cur := g.ScreenCursor()

	switch action {
	case 'A':
		g.MoveCursorRelative(0, -arg(ps, 0, 1))
	case 'B':
		g.MoveCursorRelative(0, arg(ps, 0, 1))
	case 'C':
		g.MoveCursorRelative(arg(ps, 0, 1), 0)
	case 'D':
		g.MoveCursorRelative(-arg(ps, 0, 1), 0)
	case 'E':
		g.MoveCursorTo(0, cur.Row+arg(ps, 0, 1))
	case 'F':
		g.MoveCursorTo(0, cur.Row-arg(ps, 0, 1))
	case 'G':
		g.MoveCursorTo(arg(ps, 0, 1)-1, cur.Row)
	case 'H', 'f':
		g.MoveCursorTo(arg(ps, 1, 1)-1, arg(ps, 0, 1)-1)
	case 'J':
		p.eraseDisplay(arg(ps, 0, 0))
	case 'K':
		p.eraseLine(arg(ps, 0, 0))
	case 'L':
		g.InsertLines(arg(ps, 0, 1))
	case 'M':
		g.DeleteLines(arg(ps, 0, 1))
	case 'P':
		g.DeleteCells(arg(ps, 0, 1))
	case 'X':
		g.EraseChars(arg(ps, 0, 1))
	case 'S':
		g.ScrollUp(arg(ps, 0, 1))
	case 'T':
		g.ScrollDown(arg(ps, 0, 1))
	case 'c':
		if arg(ps, 0, 0) == 0 {
			p.respond(deviceAttributes)
		}
	case 'n':
		p.deviceStatusReport(arg(ps, 0, 0))
	case 'm':
		p.state.Style.ApplySGR(ps)
	case 'r':
		g.SetVerticalMargin(arg(ps, 0, 1)-1, arg(ps, 1, p.rows)-1)
	case 's':
		g.SetHorizontalMargin(arg(ps, 0, 1)-1, arg(ps, 1, p.cols)-1)
	case 'h':
		p.setModes(ps, private, true)
	case 'l':
		p.setModes(ps, private, false)
	case 'q':
		if len(intermediates) > 0 && intermediates[len(intermediates)-1] == ' ' {
			p.setCursorShape(arg(ps, 0, 0))
		} else {
			p.logger.Debug("unhandled csi", "action", "q")
		}
	default:
		p.logger.Debug("unhandled csi", "action", string(action), "private", private)
	}
}

// EscDispatch implements vte.Performer.
func (p *Performer) EscDispatch(intermediates []byte, ignore bool, b byte) {
	p.ignorePrints = false
	p.actionPerformed = true

	if ignore || len(intermediates) > 0 {
		p.logger.Debug("ignoring esc sequence", "final", string(rune(b)))
		return
	}

	g := p.state.Grid
	switch b {
	case 'M': // RI
		g.ReverseIndex()
	case 'D': // IND
		g.FeedLine()
	case 'E': // NEL
		g.FeedLine()
		g.CarriageReturn()
	case '7': // DECSC
		p.state.SavedCursor = &SavedCursor{Position: g.ScreenCursor(), Style: p.state.Style}
	case '8': // DECRC
		if sc := p.state.SavedCursor; sc != nil {
			g.MoveCursorTo(sc.Position.Col, sc.Position.Row)
			p.state.Style = sc.Style
		}
	case 'c': // RIS
		p.reset()
	default:
		p.logger.Debug("unhandled esc", "final", string(rune(b)))
	}
}

// reset rebuilds the screen state from scratch. Session fields (title,
// prompt id, working directory, exit code) survive a reset.
func (p *Performer) reset() {
	p.state = p.newScreenState(p.maxScrollback)
	p.saved = nil
	p.altMode = AltScreenEnabled
	p.pressedButton = -1
	p.scrollAccum = 0
	p.clearOnResize = false
}

func (p *Performer) eraseDisplay(mode int) {
	g := p.state.Grid
	cur := g.ScreenCursor()
	switch mode {
	case 0:
		g.Erase(cur, Position{Row: g.Height() - 1, Col: g.Width() - 1})
	case 1:
		g.Erase(Position{}, cur)
	case 2, 3:
		g.Clear()
	default:
		p.logger.Debug("unhandled erase display mode", "mode", mode)
	}
}

func (p *Performer) eraseLine(mode int) {
	g := p.state.Grid
	cur := g.ScreenCursor()
	switch mode {
	case 0:
		g.Erase(cur, Position{Row: cur.Row, Col: g.Width() - 1})
	case 1:
		g.Erase(Position{Row: cur.Row, Col: 0}, cur)
	case 2:
		g.Erase(Position{Row: cur.Row, Col: 0}, Position{Row: cur.Row, Col: g.Width() - 1})
	default:
		p.logger.Debug("unhandled erase line mode", "mode", mode)
	}
}

func (p *Performer) deviceStatusReport(mode int) {
	switch mode {
	case 5:
		p.respond("\x1b[0n")
	case 6:
		cur := p.state.Grid.ScreenCursor()
		p.respond(fmt.Sprintf("\x1b[%d;%dR", cur.Row+1, cur.Col+1))
	default:
		p.logger.Debug("unhandled device status report", "mode", mode)
	}
}

func (p *Performer) setCursorShape(param int) {
	c := &p.state.Cursor
	switch param {
	case 0, 1:
		c.Shape, c.Blinking = CursorShapeBlock, true
	case 2:
		c.Shape, c.Blinking = CursorShapeBlock, false
	case 3:
		c.Shape, c.Blinking = CursorShapeUnderline, true
	case 4:
		c.Shape, c.Blinking = CursorShapeUnderline, false
	case 5:
		c.Shape, c.Blinking = CursorShapeBar, true
	case 6:
		c.Shape, c.Blinking = CursorShapeBar, false
	default:
		p.logger.Debug("unhandled cursor shape", "param", param)
	}
}

func (p *Performer) setModes(ps []uint16, private, set bool) {
	for _, m := range ps {
		if !private {
			p.logger.Debug("unhandled ansi mode", "mode", m, "set", set)
			continue
		}
		switch m {
		case 7: // DECAWM
			p.state.Grid.SetAutowrap(set)
		case 12:
			p.state.Cursor.Blinking = set
		case 25: // DECTCEM
			p.state.Cursor.Visible = set
		case 1000:
			p.setMouseTracking(MouseTrackingDefault, set)
		case 1002:
			p.setMouseTracking(MouseTrackingButtonEvent, set)
		case 1003:
			p.setMouseTracking(MouseTrackingAnyEvent, set)
		case 1005:
			p.setMouseEncoding(MouseEncodingUTF8, set)
		case 1006:
			p.setMouseEncoding(MouseEncodingSGR, set)
		case 1046:
			if set {
				if p.altMode == AltScreenDisabled {
					p.altMode = AltScreenEnabled
				}
			} else {
				p.deactivateAltScreen()
				p.altMode = AltScreenDisabled
			}
		case 1047, 1049:
			if set {
				p.activateAltScreen()
			} else {
				p.deactivateAltScreen()
			}
		case 2004:
			p.state.BracketedPaste = set
		default:
			p.logger.Debug("unhandled private mode", "mode", m, "set", set)
		}
	}
}

func (p *Performer) setMouseTracking(mode MouseTracking, set bool) {
	if set {
		p.state.MouseTracking = mode
		return
	}
	p.state.MouseTracking = MouseTrackingDisabled
}

func (p *Performer) setMouseEncoding(enc MouseEncoding, set bool) {
	if set {
		p.state.MouseEncoding = enc
		return
	}
	if p.state.MouseEncoding == enc {
		p.state.MouseEncoding = MouseEncodingDefault
	}
}

// activateAltScreen swaps in a fresh alternate screen state. The alternate
// grid has no scrollback beyond the viewport.
func (p *Performer) activateAltScreen() {
	if p.altMode != AltScreenEnabled {
		return
	}
	p.saved = p.state
	p.state = p.newScreenState(p.rows)
	p.altMode = AltScreenActive
}

// deactivateAltScreen restores the primary screen state; the alternate
// screen contents are discarded.
func (p *Performer) deactivateAltScreen() {
	if p.altMode != AltScreenActive {
		return
	}
	p.state = p.saved
	p.saved = nil
	p.altMode = AltScreenEnabled
}

// flattenParams joins the parser's parameter groups (colon subparameters
// included) into one list.
func flattenParams(params [][]uint16) []uint16 {
	out := make([]uint16, 0, len(params))
	for _, group := range params {
		out = append(out, group...)
	}
	return out
}

// arg returns parameter i, substituting def for missing or zero values.
func arg(ps []uint16, i, def int) int {
	if i >= len(ps) || ps[i] == 0 {
		return def
	}
	return int(ps[i])
}

// atoiBytes parses a decimal integer, saturating instead of overflowing.
func atoiBytes(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
		if len(b) == 1 {
			return 0, false
		}
	}
	n := 0
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, false
		}
		if n < (1<<31-1)/10 {
			n = n*10 + int(b[i]-'0')
		} else {
			n = 1<<31 - 1
		}
	}
	if neg {
		n = -n
	}
	return n, true
}
