// Package speeddisplay drives the speedometer, a small HT16K33 display
// with two to four digits. The wiring is picked from a fixed table.
package speeddisplay

import (
	"fmt"
	"log"
	"math"
	"strings"

	"dscheirer.com/timecircuits/font"
)

const (
	cmdOscOn      = 0x21
	cmdDisplayOn  = 0x81
	cmdDisplayOff = 0x80
	cmdBrightness = 0xE0
)

// Restore passed to SetBrightness goes back to the last level
const Restore = 255

// Bus is what the display needs from the i2c layer.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

type Display struct {
	bus  Bus
	addr uint16
	typ  Type
	d    Descriptor

	buf [8]uint16
	// last word written to the colon position
	lastBufPosCol uint16

	speed int
	dot01 bool
	colon bool

	brightness     uint8
	origBrightness uint8
	nightMode      bool
	oldNM          int

	debug bool
	dump  bool
}

// New returns a display at addr with the CircuitSetup wiring until
// Begin picks one.
func New(bus Bus, addr uint16) *Display {
	return &Display{
		bus:            bus,
		addr:           addr,
		d:              descriptors[CircuitSetup],
		speed:          -1,
		brightness:     15,
		origBrightness: 15,
	}
}

func (this *Display) SetDebug(on bool) {
	this.debug = on
}

// DebugDump logs what the display shows on every Show.
func (this *Display) DebugDump(on bool) {
	this.dump = on
}

func (this *Display) debugf(v string, args ...interface{}) {
	if !this.debug {
		return
	}
	log.Printf("speeddisplay: "+v, args...)
}

func (this *Display) write(b ...byte) error {
	err := this.bus.Tx(this.addr, b, nil)
	if err != nil {
		this.debugf("write: %s", err.Error())
	}
	return err
}

func (this *Display) directCmd(val byte) error {
	return this.write(val)
}

// Begin selects the wiring and brings the part up. Unknown types fall
// back to CircuitSetup.
func (this *Display) Begin(t Type) error {
	d, ok := Lookup(t)
	if !ok {
		this.debugf("bad display type %d, using %s", int(t), d.Name)
		t = CircuitSetup
	}
	this.typ = t
	this.d = d

	if err := this.directCmd(cmdOscOn); err != nil {
		return fmt.Errorf("speeddisplay %s: %w", d.Name, err)
	}
	this.Clear()
	this.SetBrightness(15, false)
	this.ClearDisplay()
	this.On()
	return nil
}

func (this *Display) Type() Type {
	return this.typ
}

func (this *Display) Descriptor() Descriptor {
	return this.d
}

func (this *Display) On() {
	this.directCmd(cmdDisplayOn)
}

func (this *Display) Off() {
	this.directCmd(cmdDisplayOff)
}

// LampTest lights every segment.
func (this *Display) LampTest() {
	this.fill(0xff)
	this.lastBufPosCol = 0xffff
}

// ClearDisplay blanks the display RAM, the buffer is kept.
func (this *Display) ClearDisplay() {
	this.fill(0)
	this.lastBufPosCol = 0
}

func (this *Display) fill(val byte) {
	b := make([]byte, 1+this.d.BufSize*2)
	for i := 1; i < len(b); i++ {
		b[i] = val
	}
	this.write(b...)
}

// Clear blanks the buffer.
func (this *Display) Clear() {
	for i := range this.buf {
		this.buf[i] = 0
	}
}

// Buffer returns a copy of the buffer.
func (this *Display) Buffer() [8]uint16 {
	return this.buf
}

// SetBrightness sets level 0-15 (or Restore) and returns what was set.
func (this *Display) SetBrightness(level uint8, setInitial bool) uint8 {
	if level == Restore {
		level = this.brightness
	}
	this.brightness = this.SetBrightnessDirect(level)
	if setInitial {
		this.origBrightness = this.brightness
	}
	return this.brightness
}

// SetBrightnessDirect changes the hardware level only.
func (this *Display) SetBrightnessDirect(level uint8) uint8 {
	if level > 15 {
		level = 15
	}
	this.directCmd(cmdBrightness | level)
	return level
}

func (this *Display) Brightness() uint8 {
	return this.brightness
}

// SetNightMode dims the display on the next Show.
func (this *Display) SetNightMode(on bool) {
	this.nightMode = on
}

func (this *Display) NightMode() bool {
	return this.nightMode
}

// Show writes the buffer to the display.
func (this *Display) Show() {
	if this.nightMode {
		if this.oldNM < 1 {
			this.SetBrightness(0, false)
		}
		this.oldNM = 1
	} else {
		if this.oldNM > 0 {
			this.SetBrightness(this.origBrightness, false)
		}
		this.oldNM = 0
	}

	if this.d.Grove4Colon {
		this.buf[this.d.ColonPos] &^= gr4ColonMask
		for i := 0; i < this.d.NumDigs; i++ {
			this.buf[this.d.ColonPos] |= grove4Bits(i, this.buf[this.d.BufPos[i]])
		}
	}

	b := make([]byte, 1, 1+this.d.BufSize*2)
	for i := 0; i < this.d.BufSize; i++ {
		b = append(b, byte(this.buf[i]&0xff), byte(this.buf[i]>>8))
	}
	this.write(b...)

	if this.d.ColonPos < noColon {
		this.lastBufPosCol = this.buf[this.d.ColonPos]
	}

	if this.dump {
		log.Printf("speeddisplay [%s]", this.String())
	}
}

// LEDChar maps c onto the font of the selected wiring.
func (this *Display) LEDChar(c uint8) uint16 {
	return this.d.Font.Char(c)
}

// encode walks text and returns the word for every buffer position,
// a following '.' lights the dot of the previous character.
func (this *Display) encode(text string) []uint16 {
	d := this.d
	var out []uint16
	i := 0
	next := func(shift uint, dotShift uint) uint16 {
		if i >= len(text) {
			return 0
		}
		w := this.LEDChar(text[i]) << shift
		i++
		if i < len(text) && text[i] == '.' {
			w |= d.Font[font.WiredDot] << dotShift
			i++
		}
		return w
	}

	if d.Is7Seg {
		for pos := 0; pos < d.NumDigs>>d.BufPacked; pos++ {
			w := next(d.Dig10Shift, d.Dig10Shift)
			if d.BufPacked != 0 {
				w |= next(d.Dig01Shift, d.Dig01Shift)
			}
			out = append(out, w)
		}
	} else {
		for pos := 0; pos < d.NumDigs; pos++ {
			out = append(out, next(0, 0))
		}
	}
	return out
}

// SetText puts text into the buffer. Characters beyond the width are
// dropped.
func (this *Display) SetText(text string) {
	this.Clear()
	for pos, w := range this.encode(text) {
		this.buf[this.d.BufPos[pos]] = w
	}
	this.handleColon()
}

// SetSpeed shows 0-99. Negative blanks to dashes, above 99 shows "HI".
// The colon stays dark, only text shows it.
func (this *Display) SetSpeed(speed int) {
	d := this.d
	f := d.Font
	this.Clear()
	this.speed = speed

	switch {
	case speed < 0:
		this.buf[d.SpeedPos10] = f[font.WiredMinus] << d.Dig10Shift
		this.buf[d.SpeedPos01] |= f[font.WiredMinus] << d.Dig01Shift
	case speed > 99:
		this.buf[d.SpeedPos10] = f.Char('H') << d.Dig10Shift
		this.buf[d.SpeedPos01] |= f.Char('I') << d.Dig01Shift
	default:
		this.buf[d.SpeedPos10] = f[speed/10] << d.Dig10Shift
		this.buf[d.SpeedPos01] |= f[speed%10] << d.Dig01Shift
	}

	if this.dot01 {
		this.buf[d.DotPos01] |= f[font.WiredDot] << d.Dot01Shift
	}
}

// SetTemperature shows temp rounded to fit the width.
func (this *Display) SetTemperature(temp float64) {
	this.SetText(this.temperatureText(temp))
}

func (this *Display) temperatureText(temp float64) string {
	if math.IsNaN(temp) {
		return strings.Repeat("-", this.d.NumDigs)
	}

	switch this.d.NumDigs {
	case 2:
		switch {
		case temp <= -10:
			return "Lo"
		case temp >= 100:
			return "Hi"
		case temp >= 10 || temp < 0:
			return fmt.Sprintf("%d", int(math.Round(temp)))
		}
		return fmt.Sprintf("%.1f", temp)
	case 3:
		switch {
		case temp <= -100:
			return "Low"
		case temp >= 1000:
			return "Hi"
		case temp >= 100 || temp <= -10:
			return fmt.Sprintf("%d", int(math.Round(temp)))
		}
		return fmt.Sprintf("%.1f", temp)
	}

	text := fmt.Sprintf("%.1f", temp)
	// dots don't take a digit
	width := len(text) - strings.Count(text, ".")
	if width < this.d.NumDigs {
		text = strings.Repeat(" ", this.d.NumDigs-width) + text
	}
	return text
}

// SetDot lights the dot after the ones digit on the next SetSpeed.
func (this *Display) SetDot(on bool) {
	this.dot01 = on
}

func (this *Display) Dot() bool {
	return this.dot01
}

// SetColon lights the colon on the next SetText. Wirings without a
// colon ignore it.
func (this *Display) SetColon(on bool) {
	this.colon = on
}

// Colon reports the colon setting, not what is lit.
func (this *Display) Colon() bool {
	return this.colon
}

// Speed is the last value passed to SetSpeed.
func (this *Display) Speed() int {
	return this.speed
}

func (this *Display) handleColon() {
	if this.d.ColonPos >= noColon {
		return
	}
	bit := this.d.ColonBit << this.d.ColonShift
	if this.colon {
		this.buf[this.d.ColonPos] |= bit
	} else {
		this.buf[this.d.ColonPos] &^= bit
	}
}

// ShowTextDirect writes text to the display, the buffer is untouched.
func (this *Display) ShowTextDirect(text string) {
	colonWord := this.lastBufPosCol
	this.ClearDisplay()

	for pos, w := range this.encode(text) {
		this.directCol(this.d.BufPos[pos], w)
		if this.d.Grove4Colon {
			colonWord |= grove4Bits(pos, w)
		}
	}
	if this.d.Grove4Colon {
		this.directCol(this.d.ColonPos, colonWord)
	}
}

// SetColonDirect switches the colon on the display without touching
// the rest of it.
func (this *Display) SetColonDirect(on bool) {
	if this.d.ColonPos >= noColon {
		return
	}
	t := this.lastBufPosCol
	bit := this.d.ColonBit << this.d.ColonShift
	if on {
		t |= bit
	} else {
		t &^= bit
	}
	this.directCol(this.d.ColonPos, t)
}

func (this *Display) directCol(col int, val uint16) {
	this.write(byte(col*2), byte(val&0xff), byte(val>>8))
	if col == this.d.ColonPos {
		this.lastBufPosCol = val
	}
}

// String renders the buffer as text, unknown patterns show as '?'.
func (this *Display) String() string {
	d := this.d
	var sb strings.Builder
	for pos := 0; pos < d.NumDigs>>d.BufPacked; pos++ {
		w := this.buf[d.BufPos[pos]]
		if !d.Is7Seg {
			sb.WriteByte(d.Font.Reverse(w))
			continue
		}
		sb.WriteByte(d.Font.Reverse((w >> d.Dig10Shift) & 0xff))
		if d.BufPacked != 0 {
			sb.WriteByte(d.Font.Reverse((w >> d.Dig01Shift) & 0xff))
		}
	}
	return sb.String()
}
