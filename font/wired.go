package font

// Wired fonts have 38 cells: 0-9, A-Z, '.' and '-'. Each one follows
// how the segments of a particular display are wired to the driver.
const (
	WiredDot   = 36
	WiredMinus = 37
)

// Wired is a per-display font.
type Wired [38]uint16

// Char maps a character onto a wired font. Unknown characters blank.
func (f *Wired) Char(c uint8) uint16 {
	switch {
	case c >= '0' && c <= '9':
		return f[c-'0']
	case c >= 'A' && c <= 'Z':
		return f[c-'A'+10]
	case c >= 'a' && c <= 'z':
		return f[c-'a'+10]
	case c == '.':
		return f[WiredDot]
	case c == '-':
		return f[WiredMinus]
	}
	return 0
}

// Reverse returns the character p shows in f, ignoring the dot.
// Blank is ' ' and unknown patterns are '?'.
func (f *Wired) Reverse(p uint16) byte {
	p &^= f[WiredDot]
	if p == 0 {
		return ' '
	}
	for i, v := range f {
		if i == WiredDot || v != p {
			continue
		}
		switch {
		case i < 10:
			return byte('0' + i)
		case i < WiredDot:
			return byte('A' + i - 10)
		}
		return '-'
	}
	return '?'
}

// 7 segment generic wiring
const (
	s7T   = 0x01
	s7TR  = 0x02
	s7BR  = 0x04
	s7B   = 0x08
	s7BL  = 0x10
	s7TL  = 0x20
	s7M   = 0x40
	s7Dot = 0x80
)

// Generic7 is the common 7-segment backpack wiring.
var Generic7 = Wired{
	s7T | s7TR | s7BR | s7B | s7BL | s7TL,
	s7TR | s7BR,
	s7T | s7TR | s7B | s7BL | s7M,
	s7T | s7TR | s7BR | s7B | s7M,
	s7TR | s7BR | s7TL | s7M,
	s7T | s7BR | s7B | s7TL | s7M,
	s7BR | s7B | s7BL | s7TL | s7M,
	s7T | s7TR | s7BR,
	s7T | s7TR | s7BR | s7B | s7BL | s7TL | s7M,
	s7T | s7TR | s7BR | s7TL | s7M,
	s7T | s7TR | s7BR | s7BL | s7TL | s7M, // A
	s7BR | s7B | s7BL | s7TL | s7M,
	s7T | s7B | s7BL | s7TL,
	s7TR | s7BR | s7B | s7BL | s7M,
	s7T | s7B | s7BL | s7TL | s7M,
	s7T | s7BL | s7TL | s7M,
	s7T | s7BR | s7B | s7BL | s7TL,
	s7TR | s7BR | s7BL | s7TL | s7M,
	s7BL | s7TL,
	s7TR | s7BR | s7B | s7BL,
	s7T | s7BR | s7BL | s7TL | s7M, // K
	s7B | s7BL | s7TL,
	s7T | s7BR | s7BL,
	s7T | s7TR | s7BR | s7BL | s7TL,
	s7T | s7TR | s7BR | s7B | s7BL | s7TL,
	s7T | s7TR | s7BL | s7TL | s7M,
	s7T | s7TR | s7B | s7TL | s7M,
	s7T | s7TR | s7BL | s7TL,
	s7T | s7BR | s7B | s7TL | s7M,
	s7B | s7BL | s7TL | s7M,
	s7TR | s7BR | s7B | s7BL | s7TL, // U
	s7TR | s7BR | s7B | s7BL | s7TL,
	s7TR | s7B | s7TL,
	s7TR | s7BR | s7BL | s7TL | s7M,
	s7TR | s7BR | s7B | s7TL | s7M,
	s7T | s7TR | s7B | s7BL | s7M,
	s7Dot,
	s7M,
}

// segment bits of one 14-segment wiring
type seg14 struct {
	t, tr, br, b, bl, tl, ml, mr uint16
	tld, tv, trd, bld, bv, brd   uint16
	dot                          uint16
}

func (s seg14) font() Wired {
	return Wired{
		s.t | s.tl | s.tr | s.b | s.bl | s.br,
		s.tr | s.br,
		s.t | s.tr | s.ml | s.mr | s.b | s.bl,
		s.t | s.tr | s.ml | s.mr | s.b | s.br,
		s.tl | s.tr | s.ml | s.mr | s.br,
		s.t | s.tl | s.ml | s.mr | s.b | s.br,
		s.tl | s.ml | s.mr | s.b | s.bl | s.br,
		s.t | s.tr | s.br,
		s.t | s.tl | s.tr | s.ml | s.mr | s.b | s.bl | s.br,
		s.t | s.tl | s.tr | s.ml | s.mr | s.br,
		s.t | s.tl | s.tr | s.ml | s.mr | s.bl | s.br, // A
		s.t | s.tr | s.tv | s.mr | s.b | s.br | s.bv,
		s.t | s.tl | s.b | s.bl,
		s.t | s.tr | s.tv | s.b | s.br | s.bv,
		s.t | s.tl | s.ml | s.mr | s.b | s.bl,
		s.t | s.tl | s.ml | s.bl,
		s.t | s.tl | s.mr | s.b | s.bl | s.br,
		s.tl | s.tr | s.ml | s.mr | s.bl | s.br,
		s.t | s.tv | s.b | s.bv,
		s.tr | s.b | s.bl | s.br,
		s.tl | s.trd | s.ml | s.bl | s.brd, // K
		s.tl | s.b | s.bl,
		s.t | s.tl | s.tr | s.tv | s.bl | s.br,
		s.tl | s.tld | s.tr | s.bl | s.br | s.brd,
		s.t | s.tl | s.tr | s.b | s.bl | s.br,
		s.t | s.tl | s.tr | s.ml | s.mr | s.bl,
		s.t | s.tl | s.tr | s.b | s.bl | s.br | s.brd,
		s.t | s.tl | s.tr | s.ml | s.mr | s.bl | s.brd,
		s.t | s.tl | s.ml | s.mr | s.b | s.br,
		s.t | s.tv | s.bv,
		s.tl | s.tr | s.b | s.bl | s.br, // U
		s.tl | s.trd | s.bl | s.bld,
		s.tl | s.tr | s.bl | s.bld | s.br | s.brd,
		s.tld | s.trd | s.bld | s.brd,
		s.tl | s.tr | s.ml | s.mr | s.b | s.br,
		s.t | s.trd | s.b | s.bld,
		s.dot,
		s.ml | s.mr,
	}
}

var (
	// Generic14 is the Adafruit style 14-segment wiring.
	Generic14 = seg14{
		t: 0x0001, tr: 0x0002, br: 0x0004, b: 0x0008, bl: 0x0010, tl: 0x0020,
		ml: 0x0040, mr: 0x0080, tld: 0x0100, tv: 0x0200, trd: 0x0400,
		bld: 0x0800, bv: 0x1000, brd: 0x2000, dot: 0x4000,
	}.font()

	// Grove14 is the Grove 2-digit 14-segment wiring.
	Grove14 = seg14{
		t: 0x0400, tl: 0x4000, tld: 0x2000, tr: 0x0100, trd: 0x0800,
		tv: 0x1000, ml: 0x0200, mr: 0x0010, b: 0x0020, bl: 0x0001,
		bld: 0x0002, br: 0x0080, brd: 0x0008, bv: 0x0004, dot: 0x0040,
	}.font()

	// Grove4x14 is the Grove 4-digit 14-segment wiring. It has no dot.
	Grove4x14 = seg14{
		t: 0x0010, tl: 0x4000, tld: 0x0080, tr: 0x0040, trd: 0x0002,
		tv: 0x2000, ml: 0x0200, mr: 0x0100, b: 0x0400, bl: 0x0008,
		bld: 0x1000, br: 0x0020, brd: 0x0004, bv: 0x0800,
	}.font()
)
