package celcore

import (
	"fmt"
	"unicode/utf8"
)

// MouseTracking is the mouse reporting granularity (private modes
// 1000/1002/1003).
type MouseTracking uint8

const (
	MouseTrackingDisabled MouseTracking = iota
	// MouseTrackingDefault reports button presses and releases (mode 1000).
	MouseTrackingDefault
	// MouseTrackingButtonEvent also reports motion while a button is held
	// (mode 1002).
	MouseTrackingButtonEvent
	// MouseTrackingAnyEvent is accepted (mode 1003), but motion without a
	// pressed button emits nothing.
	MouseTrackingAnyEvent
)

// MouseEncoding is the mouse report wire format (private modes 1005/1006).
type MouseEncoding uint8

const (
	// MouseEncodingDefault is the legacy X10 encoding with 32-offset
	// coordinate bytes, capped at 223.
	MouseEncodingDefault MouseEncoding = iota
	// MouseEncodingUTF8 encodes coordinates as UTF-8 runes (mode 1005).
	MouseEncodingUTF8
	// MouseEncodingSGR is the "\x1b[<" decimal encoding (mode 1006), the
	// only one that can report releases per button.
	MouseEncodingSGR
)

// MouseButton identifies a physical mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
)

// MouseModifiers is a bitmask of held modifier keys.
type MouseModifiers uint8

const (
	MouseModShift MouseModifiers = 1 << iota
	MouseModAlt
	MouseModCtrl
)

// encode maps the modifier bits onto the xterm button-code offsets.
func (m MouseModifiers) encode() int {
	v := 0
	if m&MouseModShift != 0 {
		v += 4
	}
	if m&MouseModAlt != 0 {
		v += 8
	}
	if m&MouseModCtrl != 0 {
		v += 16
	}
	return v
}

const (
	mouseMotionBit    = 32
	mouseScrollUp     = 64
	mouseScrollDown   = 65
	legacyReleaseCode = 3
)

// HandleMouseButton translates a host mouse event at a screen cell into a
// report for the process. Reports are emitted only on press/release
// transitions, plus cell changes while a button is held when the tracking
// granularity covers motion; repeated events for the same state are dropped.
func (p *Performer) HandleMouseButton(button MouseButton, pressed bool, mods MouseModifiers, col, row int) {
	st := p.state
	if st.MouseTracking == MouseTrackingDisabled {
		return
	}

	cell := Position{Row: row, Col: col}
	if pressed {
		if p.pressedButton == int(button) {
			// held button: report drags, not repeats
			if st.MouseTracking != MouseTrackingButtonEvent && st.MouseTracking != MouseTrackingAnyEvent {
				return
			}
			if cell == p.lastMouseCell {
				return
			}
			p.lastMouseCell = cell
			p.emitMouse(int(button)+mods.encode()+mouseMotionBit, col, row, true)
			return
		}
		p.pressedButton = int(button)
		p.lastMouseCell = cell
		p.emitMouse(int(button)+mods.encode(), col, row, true)
		return
	}

	if p.pressedButton == -1 {
		return
	}
	p.pressedButton = -1
	p.lastMouseCell = cell

	code := legacyReleaseCode
	if st.MouseEncoding == MouseEncodingSGR {
		code = int(button)
	}
	p.emitMouse(code+mods.encode(), col, row, false)
}

// HandleScroll accumulates a fractional scroll delta and emits one wheel
// button report per whole unit crossed, carrying the remainder forward.
// Positive deltas scroll up.
func (p *Performer) HandleScroll(delta float64, mods MouseModifiers, col, row int) {
	if p.state.MouseTracking == MouseTrackingDisabled {
		return
	}

	p.scrollAccum += delta
	for p.scrollAccum >= 1 {
		p.scrollAccum--
		p.emitMouse(mouseScrollUp+mods.encode(), col, row, true)
	}
	for p.scrollAccum <= -1 {
		p.scrollAccum++
		p.emitMouse(mouseScrollDown+mods.encode(), col, row, true)
	}
}

func (p *Performer) emitMouse(code, col, row int, pressed bool) {
	switch p.state.MouseEncoding {
	case MouseEncodingSGR:
		final := byte('M')
		if !pressed {
			final = 'm'
		}
		p.respond(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, col+1, row+1, final))
	case MouseEncodingUTF8:
		buf := []byte{0x1b, '[', 'M', byte(32 + code)}
		buf = utf8.AppendRune(buf, utf8Coord(col))
		buf = utf8.AppendRune(buf, utf8Coord(row))
		p.respondBytes(buf)
	default:
		p.respondBytes([]byte{0x1b, '[', 'M', byte(32 + code), legacyCoord(col), legacyCoord(row)})
	}
}

// legacyCoord offsets a 0-based coordinate into the X10 byte range, capping
// at the largest representable position (223).
func legacyCoord(v int) byte {
	v += 32 + 1
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// utf8Coord offsets a 0-based coordinate for mode 1005, capped at the
// largest position xterm encodes (2015).
func utf8Coord(v int) rune {
	v += 32 + 1
	if v > 2047 {
		v = 2047
	}
	return rune(v)
}
