package font

// Seg7Char returns the character a 7-segment pattern shows, ignoring
// the dot. Unknown patterns come back as '?'.
func Seg7Char(p uint8) byte {
	p &^= 0x80
	if p == 0 {
		return ' '
	}
	for i := 0; i < 36; i++ {
		if numDigs[i] != p {
			continue
		}
		if i < 10 {
			return byte('0' + i)
		}
		return byte('A' + i - 10)
	}
	switch p {
	case numDigs[6] | 0x01:
		return '6'
	case numDigs[Seg7Minus]:
		return '-'
	case numDigs[Seg7Close]:
		return ')'
	case numDigs[Seg7Under]:
		return '_'
	case numDigs[Seg7Degree]:
		return '~'
	case numDigs[Seg7PercentR]:
		return '%'
	}
	return '?'
}

// Seg14Char is Seg7Char for the 14-segment font. Bit 14 is the dot.
func Seg14Char(p uint16) byte {
	p &^= 0x4000
	if p == alphaChars['6'-' ']|0x0001 {
		return '6'
	}
	for i, v := range alphaChars {
		if v == p {
			return byte(' ' + i)
		}
	}
	return '?'
}
