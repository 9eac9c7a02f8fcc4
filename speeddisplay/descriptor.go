package speeddisplay

import "dscheirer.com/timecircuits/font"

// Type selects the wiring of the speed display.
type Type int

const (
	CircuitSetup Type = iota
	Adafruit7x4
	Adafruit7x4L
	AdafruitB7x4
	AdafruitB7x4L
	Adafruit14x4
	Adafruit14x4L
	Grove2Dig14
	Grove4Dig14
	Grove4Dig14L
	// two digits packed into one word, for bench tests
	Packed7
	numTypes
)

// noColon in colonPos means the wiring has no colon
const noColon = 255

// Descriptor is the geometry of one wiring.
type Descriptor struct {
	Name        string
	Is7Seg      bool
	SpeedPos10  int
	SpeedPos01  int
	Dig10Shift  uint
	Dig01Shift  uint
	DotPos01    int
	Dot01Shift  uint
	ColonPos    int
	ColonShift  uint
	ColonBit    uint16
	BufSize     int
	NumDigs     int
	// 1 when two digits share a word
	BufPacked   uint
	BufPos      []int
	Font        *font.Wired
	// the colon segments are made up from the digit segments
	Grove4Colon bool
}

var descriptors = [numTypes]Descriptor{
	CircuitSetup:  {"CircuitSetup", true, 0, 1, 0, 0, 1, 0, noColon, 0, 0, 8, 2, 0, []int{0, 1}, &font.Generic7, false},
	Adafruit7x4:   {"Adafruit 0.56\" 7x4", true, 3, 4, 0, 0, 4, 0, 2, 0, 0x0002, 8, 4, 0, []int{0, 1, 3, 4}, &font.Generic7, false},
	Adafruit7x4L:  {"Adafruit 0.56\" 7x4 left", true, 0, 1, 0, 0, 1, 0, 2, 0, 0x0002, 8, 4, 0, []int{0, 1, 3, 4}, &font.Generic7, false},
	AdafruitB7x4:  {"Adafruit 1.2\" 7x4", true, 3, 4, 0, 0, 4, 0, 2, 0, 0x0002, 8, 4, 0, []int{0, 1, 3, 4}, &font.Generic7, false},
	AdafruitB7x4L: {"Adafruit 1.2\" 7x4 left", true, 0, 1, 0, 0, 1, 0, 2, 0, 0x0002, 8, 4, 0, []int{0, 1, 3, 4}, &font.Generic7, false},
	Adafruit14x4:  {"Adafruit 0.56\" 14x4", false, 2, 3, 0, 0, 3, 0, noColon, 0, 0, 8, 4, 0, []int{0, 1, 2, 3}, &font.Generic14, false},
	Adafruit14x4L: {"Adafruit 0.56\" 14x4 left", false, 0, 1, 0, 0, 1, 0, noColon, 0, 0, 8, 4, 0, []int{0, 1, 2, 3}, &font.Generic14, false},
	Grove2Dig14:   {"Grove 2 digit 14 segment", false, 2, 1, 0, 0, 1, 0, noColon, 0, 0, 8, 2, 0, []int{2, 1}, &font.Grove14, false},
	Grove4Dig14:   {"Grove 4 digit 14 segment", false, 3, 4, 0, 0, 4, 0, 5, 0, 0x2080, 8, 4, 0, []int{1, 2, 3, 4}, &font.Grove4x14, true},
	Grove4Dig14L:  {"Grove 4 digit 14 segment left", false, 1, 2, 0, 0, 2, 0, 5, 0, 0x2080, 8, 4, 0, []int{1, 2, 3, 4}, &font.Grove4x14, true},
	Packed7:       {"packed 7 segment", true, 7, 7, 0, 8, 7, 8, noColon, 0, 0, 8, 2, 1, []int{7}, &font.Generic7, false},
}

// Lookup returns the descriptor of t, the first one for an unknown t.
func Lookup(t Type) (Descriptor, bool) {
	if t < 0 || t >= numTypes {
		return descriptors[CircuitSetup], false
	}
	return descriptors[t], true
}

// grove 4 digit colon bits derived from segments 0x02 and 0x04 of each digit
var (
	gr4Sh1 = [4]uint{4, 6, 5, 10}
	gr4Sh2 = [4]uint{3, 14, 9, 8}
)

const gr4ColonMask = 0x4778

func grove4Bits(i int, segs uint16) uint16 {
	var bits uint16
	if segs&0x02 != 0 {
		bits |= 1 << gr4Sh1[i]
	}
	if segs&0x04 != 0 {
		bits |= 1 << gr4Sh2[i]
	}
	return bits
}
