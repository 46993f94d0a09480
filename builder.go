package celcore

import "strconv"

// Script composes terminal input as an ordered list of byte-emitting
// operations. It is mainly a test and fixture helper: ops are appended one
// call at a time and Bytes concatenates them in order.
type Script struct {
	ops [][]byte
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{}
}

// Text appends printable text.
func (s *Script) Text(text string) {
	s.Raw([]byte(text))
}

// Control appends a single control byte.
func (s *Script) Control(b byte) {
	s.Raw([]byte{b})
}

// Esc appends an escape sequence with the given final byte.
func (s *Script) Esc(final byte) {
	s.Raw([]byte{0x1b, final})
}

// CSI appends a control sequence with the given final byte and numeric
// parameters.
func (s *Script) CSI(final rune, params ...int) {
	s.csi("", final, params)
}

// CSIPrivate appends a private ("?"-prefixed) control sequence.
func (s *Script) CSIPrivate(final rune, params ...int) {
	s.csi("?", final, params)
}

func (s *Script) csi(prefix string, final rune, params []int) {
	op := append([]byte{0x1b, '['}, prefix...)
	for i, p := range params {
		if i > 0 {
			op = append(op, ';')
		}
		op = strconv.AppendInt(op, int64(p), 10)
	}
	op = append(op, string(final)...)
	s.ops = append(s.ops, op)
}

// OSC appends an operating system command, BEL-terminated, with the given
// parameters joined by semicolons.
func (s *Script) OSC(params ...string) {
	op := []byte{0x1b, ']'}
	for i, p := range params {
		if i > 0 {
			op = append(op, ';')
		}
		op = append(op, p...)
	}
	op = append(op, 0x07)
	s.ops = append(s.ops, op)
}

// SGR appends a select-graphic-rendition sequence.
func (s *Script) SGR(params ...int) {
	s.CSI('m', params...)
}

// Raw appends arbitrary bytes.
func (s *Script) Raw(b []byte) {
	op := make([]byte, len(b))
	copy(op, b)
	s.ops = append(s.ops, op)
}

// Len returns the number of appended operations.
func (s *Script) Len() int {
	return len(s.ops)
}

// Bytes concatenates all operations in order.
func (s *Script) Bytes() []byte {
	n := 0
	for _, op := range s.ops {
		n += len(op)
	}
	out := make([]byte, 0, n)
	for _, op := range s.ops {
		out = append(out, op...)
	}
	return out
}
