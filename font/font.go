// Package font holds the segment patterns for the 7 and 14 segment
// digit cells used by the clock and speed displays.
package font

// 7-segment patterns: 0-9 digits, 10-35 letters, then
// '-', '(' , ')', '_', degree and the two halves of a wide '%'
var numDigs = [43]uint8{
	0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7C, 0x07, 0x7F, 0x67,
	0x77, 0x7C, 0x39, 0x5E, 0x79, 0x71, 0x3D, 0x76, 0x30, 0x1E, // A-J
	0x75, 0x38, 0x15, 0x37, 0x3F, 0x73, 0x6B, 0x33, 0x6D, 0x78, // K-T
	0x3E, 0x3E, 0x2A, 0x76, 0x6E, 0x5B, // U-Z
	0x40, // -
	0x39, // ( [
	0x0F, // ) ]
	0x08, // _ .
	0x63, // degree
	0x6B, // % left
	0x5D, // % right
}

// index of the glyphs after the letters
const (
	Seg7Minus = 36 + iota
	Seg7Open
	Seg7Close
	Seg7Under
	Seg7Degree
	Seg7PercentL
	Seg7PercentR
)

// 14-segment patterns for ' ' through '~', '~' is the degree sign
var alphaChars = [95]uint16{
	0x0000, 0x0006, 0x0220, 0x12CE, 0x12ED, 0x0C24, 0x235D, 0x0400, //  !"#$%&'
	0x2400, 0x0900, 0x3FC0, 0x12C0, 0x0800, 0x00C0, 0x0008, 0x0C00, // ()*+,-./
	0x003F, 0x0006, 0x00DB, 0x00CF, 0x00E6, 0x00ED, 0x00FC, 0x0007, // 0-7
	0x00FF, 0x00E7, 0x1200, 0x0A00, 0x2400, 0x00C8, 0x0900, 0x1083, // 89:;<=>?
	0x02BB, 0x00F7, 0x128F, 0x0039, 0x120F, 0x00F9, 0x0071, 0x00BD, // @A-G
	0x00F6, 0x1209, 0x001E, 0x2470, 0x0038, 0x0237, 0x2136, 0x003F, // H-O
	0x00F3, 0x203F, 0x20F3, 0x00ED, 0x1201, 0x003E, 0x0C30, 0x2836, // P-W
	0x2D00, 0x00EE, 0x0C09, 0x0039, 0x2100, 0x000F, 0x0C03, 0x0008, // XYZ[\]^_
	0x0100, 0x1058, 0x2078, 0x00D8, 0x088E, 0x0858, 0x0071, 0x048E, // `a-g
	0x1070, 0x1000, 0x000E, 0x3600, 0x0030, 0x10D4, 0x1050, 0x00DC, // h-o
	0x0170, 0x0486, 0x0050, 0x2088, 0x0078, 0x001C, 0x2004, 0x2814, // p-w
	0x28C0, 0x200C, 0x0848, 0x0949, 0x1200, 0x2489, 0x00E3, // x-z{|}~
}

// Seg7Num returns the 7-segment pattern of a digit given either as
// 0-9 or as '0'-'9'. Anything else is blank.
func Seg7Num(v uint8) uint8 {
	if v >= '0' && v <= '9' {
		return numDigs[v-'0']
	} else if v <= 9 {
		return numDigs[v]
	}
	return 0
}

// Seg7Alpha approximates a character on a 7-segment cell. With corr6
// the six gets its top bar so it can't be read as a 'b'.
func Seg7Alpha(c uint8, corr6 bool) uint8 {
	switch {
	case c >= '0' && c <= '9':
		if corr6 && c == '6' {
			return numDigs[6] | 0x01
		}
		return numDigs[c-'0']
	case c >= 'A' && c <= 'Z':
		return numDigs[c-'A'+10]
	case c >= 'a' && c <= 'z':
		return numDigs[c-'a'+10]
	}
	switch c {
	case '-':
		return numDigs[Seg7Minus]
	case '(', '[':
		return numDigs[Seg7Open]
	case ')', ']':
		return numDigs[Seg7Close]
	case '_', '.':
		return numDigs[Seg7Under]
	case '~':
		return numDigs[Seg7Degree]
	case '%':
		return numDigs[Seg7PercentL]
	case '&':
		return numDigs[Seg7PercentR]
	}
	return 0
}

// Seg14Alpha returns the 14-segment pattern for a printable character.
func Seg14Alpha(c uint8, corr6 bool) uint16 {
	if c < ' ' || c > '~' {
		return 0
	}
	if corr6 && c == '6' {
		return alphaChars['6'-' '] | 0x0001
	}
	return alphaChars[c-' ']
}

// MakeNum encodes 0..99 as two 7-segment digits, tens in the low byte
// and ones in the high byte. The leading zero is always shown.
func MakeNum(n uint8) uint16 {
	return uint16(Seg7Num(n%10))<<8 | uint16(Seg7Num(n/10))
}

// MakeNumN0 is MakeNum with a blank tens digit for n < 10.
func MakeNumN0(n uint8) uint16 {
	seg := uint16(Seg7Num(n%10)) << 8
	if n/10 != 0 {
		seg |= uint16(Seg7Num(n / 10))
	}
	return seg
}
