package celcore

import "image/color"

// StyleFlags is a bitmask of text rendering attributes.
type StyleFlags uint16

const (
	FlagBold StyleFlags = 1 << iota
	FlagFaint
	FlagItalic
	FlagUnderline
	FlagBlink
	FlagInvisible
	FlagCrossedOut
)

// Has returns true if all the given flags are set.
func (f StyleFlags) Has(flag StyleFlags) bool {
	return f&flag == flag
}

// Style is the attribute accumulator applied to printed cells. Colors are
// resolved to concrete RGBA values at SGR time, so a nil Fg/Bg means the
// renderer's default color.
type Style struct {
	Fg    *color.RGBA
	Bg    *color.RGBA
	Flags StyleFlags
}

// Equal compares two styles by value.
func (s Style) Equal(o Style) bool {
	if s.Flags != o.Flags {
		return false
	}
	if (s.Fg == nil) != (o.Fg == nil) || (s.Bg == nil) != (o.Bg == nil) {
		return false
	}
	if s.Fg != nil && *s.Fg != *o.Fg {
		return false
	}
	if s.Bg != nil && *s.Bg != *o.Bg {
		return false
	}
	return true
}

// baseColor resolves a 16-color base index (0-7 normal, 8-15 bright) against
// the current bold/faint weight: bold promotes normal colors to their bright
// counterpart, faint dims the channel values.
func (s *Style) baseColor(index int) *color.RGBA {
	if s.Flags.Has(FlagBold) && index < 8 {
		index += 8
	}
	c := DefaultPalette[index]
	if s.Flags.Has(FlagFaint) {
		c = scaleColor(c, dimFactor)
	}
	return &c
}

// ApplySGR folds a flattened SGR parameter list into the style. An empty list
// behaves as a single 0 (full reset). Extended color introducers (38/48)
// consume a variable number of following parameters. Unknown parameters are
// skipped; malformed extended sequences abort the remainder of the list.
func (s *Style) ApplySGR(params []uint16) {
	if len(params) == 0 {
		params = []uint16{0}
	}

	for i := 0; i < len(params); i++ {
		switch p := params[i]; p {
		case 0:
			*s = Style{}
		case 1:
			s.Flags = s.Flags&^FlagFaint | FlagBold
		case 2:
			s.Flags = s.Flags&^FlagBold | FlagFaint
		case 3:
			s.Flags |= FlagItalic
		case 4:
			s.Flags |= FlagUnderline
		case 5, 6:
			s.Flags |= FlagBlink
		case 8:
			s.Flags |= FlagInvisible
		case 9:
			s.Flags |= FlagCrossedOut
		case 22:
			s.Flags &^= FlagBold | FlagFaint
		case 23:
			s.Flags &^= FlagItalic
		case 24:
			s.Flags &^= FlagUnderline
		case 25:
			s.Flags &^= FlagBlink
		case 28:
			s.Flags &^= FlagInvisible
		case 29:
			s.Flags &^= FlagCrossedOut
		case 39:
			s.Fg = nil
		case 49:
			s.Bg = nil
		case 38:
			c, consumed := extendedColor(params[i+1:])
			if c == nil {
				return
			}
			s.Fg = c
			i += consumed
		case 48:
			c, consumed := extendedColor(params[i+1:])
			if c == nil {
				return
			}
			s.Bg = c
			i += consumed
		default:
			switch {
			case p >= 30 && p <= 37:
				s.Fg = s.baseColor(int(p - 30))
			case p >= 90 && p <= 97:
				s.Fg = s.baseColor(int(p-90) + 8)
			case p >= 40 && p <= 47:
				s.Bg = s.baseColor(int(p - 40))
			case p >= 100 && p <= 107:
				s.Bg = s.baseColor(int(p-100) + 8)
			}
		}
	}
}

// extendedColor parses the tail of a 38/48 extended color sequence
// (5;n indexed or 2;r;g;b direct). It returns the resolved color and the
// number of parameters consumed, or nil if the sequence is malformed.
func extendedColor(params []uint16) (*color.RGBA, int) {
	if len(params) == 0 {
		return nil, 0
	}

	switch params[0] {
	case 5:
		if len(params) < 2 {
			return nil, 0
		}
		c := PaletteColor(int(params[1]))
		return &c, 2
	case 2:
		if len(params) < 4 {
			return nil, 0
		}
		c := color.RGBA{
			R: clampChannel(params[1]),
			G: clampChannel(params[2]),
			B: clampChannel(params[3]),
			A: 255,
		}
		return &c, 4
	default:
		return nil, 0
	}
}

func clampChannel(v uint16) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
