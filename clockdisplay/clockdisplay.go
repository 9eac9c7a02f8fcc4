// Package clockdisplay drives one of the three date/time rows, an
// HT16K33 with three 14-segment month cells and 7-segment digit pairs.
package clockdisplay

import (
	"fmt"
	"log"
	"math"
	"strings"

	"dscheirer.com/timecircuits/datetime"
	"dscheirer.com/timecircuits/eeprom"
	"dscheirer.com/timecircuits/font"
	"dscheirer.com/timecircuits/tcstate"
)

// commands we support
const (
	cmdOscOn      = 0x21
	cmdDisplayOn  = 0x81
	cmdDisplayOff = 0x80
	cmdBrightness = 0xE0
)

// word positions in the buffer
const (
	monthPos = 0
	dayPos   = 3
	yearPos  = 4
	hourPos  = 6
	minPos   = 7
	ampmPos  = dayPos
	colonPos = yearPos
	bufSize  = 8
)

// Restore passed to SetBrightness goes back to the last level
const Restore = 255

// NoSave disables persistence of a display
const NoSave = -1

var months = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// Bus is what the display needs from the i2c layer.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// ID names which of the three rows a display is.
type ID int

const (
	Dest ID = iota
	Pres
	Last
)

func (id ID) String() string {
	switch id {
	case Dest:
		return "DEST"
	case Pres:
		return "PRES"
	case Last:
		return "LAST"
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// Variant selects the month layout.
type Variant int

const (
	// three 14-segment letters
	Standard Variant = iota
	// one word holding two 7-segment digits
	ACar
)

// Config places a display on the bus and in storage.
type Config struct {
	ID          ID
	Address     uint16
	SaveAddress int
	Variant     Variant
	// the display keeps real (present) time
	RTC bool
}

type Display struct {
	bus     Bus
	cfg     Config
	state   *tcstate.State
	storage eeprom.Storage

	buf       [bufSize]uint16
	monthSize int

	year       int
	yearOffset int
	month      int
	day        int
	hour       int
	minute     int
	isDST      int

	brightness     uint8
	origBrightness uint8
	mode24         bool
	nightMode      bool
	nmOff          bool
	oldNM          int
	colon          bool
	yearDot        bool

	debug bool
	dump  bool
}

// New returns a display for cfg. Nothing is sent until Begin.
func New(bus Bus, cfg Config, state *tcstate.State, storage eeprom.Storage) *Display {
	if state == nil {
		state = &tcstate.State{}
	}
	this := &Display{
		bus:            bus,
		cfg:            cfg,
		state:          state,
		storage:        storage,
		monthSize:      3,
		month:          1,
		day:            1,
		isDST:          -1,
		brightness:     15,
		origBrightness: 15,
	}
	if cfg.Variant == ACar {
		this.monthSize = 1
	}
	if storage == nil {
		this.cfg.SaveAddress = NoSave
	}
	return this
}

// SetDebug logs clamped input and bus errors.
func (this *Display) SetDebug(on bool) {
	this.debug = on
}

// DebugDump logs what the display shows on every full write.
func (this *Display) DebugDump(on bool) {
	this.dump = on
}

func (this *Display) debugf(v string, args ...interface{}) {
	if !this.debug {
		return
	}
	log.Printf("clockdisplay %s: "+v, append([]interface{}{this.cfg.ID}, args...)...)
}

func (this *Display) write(b ...byte) error {
	err := this.bus.Tx(this.cfg.Address, b, nil)
	if err != nil {
		this.debugf("write: %s", err.Error())
	}
	return err
}

func (this *Display) directCmd(val byte) error {
	return this.write(val)
}

// Begin turns on the oscillator, clears the part and switches it on.
func (this *Display) Begin() error {
	if err := this.directCmd(cmdOscOn); err != nil {
		return fmt.Errorf("clockdisplay %s: %w", this.cfg.ID, err)
	}
	this.ClearBuf()
	this.SetBrightness(15, false)
	this.ClearDisplay()
	this.On()
	return nil
}

func (this *Display) On() {
	this.directCmd(cmdDisplayOn)
}

// OnCond turns the display on unless night mode keeps it off.
func (this *Display) OnCond() {
	if !this.nightMode || !this.nmOff {
		this.directCmd(cmdDisplayOn)
	}
}

func (this *Display) Off() {
	this.directCmd(cmdDisplayOff)
}

func (this *Display) fill(val byte) {
	b := make([]byte, 1+bufSize*2)
	for i := 1; i < len(b); i++ {
		b[i] = val
	}
	this.write(b...)
}

// RealLampTest lights every segment.
func (this *Display) RealLampTest() {
	this.fill(0xff)
}

// LampTest lights every other segment.
func (this *Display) LampTest() {
	this.fill(0x55)
}

// ClearDisplay blanks the display RAM, the buffer is kept.
func (this *Display) ClearDisplay() {
	this.fill(0)
}

// ClearBuf blanks the buffer, Show puts it on the display.
func (this *Display) ClearBuf() {
	for i := range this.buf {
		this.buf[i] = 0
	}
}

// Buffer returns a copy of the buffer.
func (this *Display) Buffer() [bufSize]uint16 {
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

func (this *Display) Set1224(hours24 bool) {
	this.mode24 = hours24
}

func (this *Display) Get1224() bool {
	return this.mode24
}

func (this *Display) SetNightMode(on bool) {
	this.nightMode = on
}

func (this *Display) NightMode() bool {
	return this.nightMode
}

// SetNMOff makes night mode switch the display off instead of dimming.
func (this *Display) SetNMOff(off bool) {
	this.nmOff = off
}

func (this *Display) SetRTC(rtc bool) {
	this.cfg.RTC = rtc
}

func (this *Display) IsRTC() bool {
	return this.cfg.RTC
}

func (this *Display) ID() ID {
	return this.cfg.ID
}

// SetDateTime puts dt into the buffer as is.
func (this *Display) SetDateTime(dt datetime.Date) {
	this.SetYear(dt.Year)
	this.SetMonth(dt.Month)
	this.SetDay(dt.Day)
	this.SetHour(dt.Hour)
	this.SetMinute(dt.Minute)
}

// SetDateTimeDiff puts dt moved by the time travel difference into the
// buffer. Years past 9999 roll over to 0000.
func (this *Display) SetDateTimeDiff(dt datetime.Date) {
	if this.state.TimeDifference == 0 {
		this.SetDateTime(dt)
		return
	}

	mins := datetime.DateToMins(dt.Year-this.yearOffset, dt.Month, dt.Day, dt.Hour, dt.Minute)
	if this.state.TimeDiffUp {
		mins += this.state.TimeDifference
	} else {
		mins -= this.state.TimeDifference
	}

	d := datetime.MinsToDate(mins)
	this.SetYear(d.Year + this.yearOffset)
	this.SetMonth(d.Month)
	this.SetDay(d.Day)
	this.SetHour(d.Hour)
	this.SetMinute(d.Minute)
}

// SetFromStruct is SetDateTime for displays that don't keep real time.
func (this *Display) SetFromStruct(dt datetime.Date) {
	if this.IsRTC() {
		this.debugf("setFromStruct called on the real time display")
	}
	this.SetDateTime(dt)
}

// Show puts the buffer on the display.
func (this *Display) Show() {
	this.showInt(false)
}

// ShowAnimate1 shows everything but the month.
func (this *Display) ShowAnimate1() {
	this.showInt(true)
}

// ShowAnimate2 adds the month after ShowAnimate1.
func (this *Display) ShowAnimate2() {
	if this.nightMode && this.nmOff {
		return
	}
	this.writeBuffer(0)
}

func (this *Display) writeBuffer(from int) {
	b := make([]byte, 0, 1+bufSize*2)
	b = append(b, 0x00)
	for i := 0; i < from; i++ {
		b = append(b, 0, 0)
	}
	for i := from; i < bufSize; i++ {
		b = append(b, byte(this.buf[i]&0xff), byte(this.buf[i]>>8))
	}
	this.write(b...)
	if this.dump {
		this.dumpDisplay(from)
	}
}

func (this *Display) SetYearOffset(offset int) {
	this.yearOffset = offset
	if this.IsRTC() {
		this.debugf("year offset set to %d", offset)
	}
}

func (this *Display) SetYear(year int) {
	if year-this.yearOffset < 0 {
		this.debugf("setYear: bad year %d / offset %d", year, this.yearOffset)
		year = this.yearOffset
	}
	this.year = year
	y := (year - this.yearOffset) % 10000

	this.buf[yearPos] = font.MakeNum(uint8(y / 100))
	this.buf[yearPos+1] = font.MakeNum(uint8(y % 100))
}

func (this *Display) monthSegs(month int) [3]uint16 {
	var segs [3]uint16
	if this.cfg.Variant == ACar {
		segs[0] = font.MakeNum(uint8(month))
		return segs
	}
	name := months[month-1]
	for i := 0; i < 3; i++ {
		segs[i] = font.Seg14Alpha(name[i], false)
	}
	return segs
}

func clampMonth(month int) int {
	if month < 1 || month > 12 {
		if month > 12 {
			return 12
		}
		return 1
	}
	return month
}

func (this *Display) SetMonth(month int) {
	if m := clampMonth(month); m != month {
		this.debugf("setMonth: bad month %d", month)
		month = m
	}
	this.month = month
	segs := this.monthSegs(month)
	copy(this.buf[monthPos:monthPos+this.monthSize], segs[:this.monthSize])
}

// SetDay must be called after SetYear and SetMonth, the day is checked
// against the month they set.
func (this *Display) SetDay(day int) {
	maxDay := datetime.DaysInMonth(this.month, this.year-this.yearOffset)
	if day < 1 || day > maxDay {
		this.debugf("setDay: bad day %d", day)
		if day < 1 {
			day = 1
		} else {
			day = maxDay
		}
	}
	this.day = day
	this.buf[dayPos] = font.MakeNum(uint8(day))
}

func hour12(hour int) int {
	if hour == 0 {
		return 12
	} else if hour > 12 {
		return hour - 12
	}
	return hour
}

func (this *Display) SetHour(hour int) {
	if hour < 0 || hour > 23 {
		this.debugf("setHour: bad hour %d", hour)
		if hour < 0 {
			hour = 0
		} else {
			hour = 23
		}
	}
	this.hour = hour
	if !this.mode24 {
		this.buf[hourPos] = font.MakeNum(uint8(hour12(hour)))
	} else {
		this.buf[hourPos] = font.MakeNum(uint8(hour))
	}
	// am/pm goes in on show
}

func (this *Display) SetMinute(minute int) {
	if minute < 0 || minute > 59 {
		this.debugf("setMinute: bad minute %d", minute)
		if minute > 59 {
			minute = 59
		} else {
			minute = 0
		}
	}
	this.minute = minute
	this.buf[minPos] = font.MakeNum(uint8(minute))

	if this.cfg.ID == Pres && this.state.AlarmOnOff {
		this.buf[minPos] |= 0x8000
	}
}

// SetDST only applies to the real time display.
func (this *Display) SetDST(isDST int) {
	if this.IsRTC() {
		this.isDST = isDST
	}
}

// SetColon is ignored (off) in night mode.
func (this *Display) SetColon(on bool) {
	if this.nightMode {
		on = false
	}
	this.colon = on
}

func (this *Display) Month() int      { return this.month }
func (this *Display) Day() int        { return this.day }
func (this *Display) Year() int       { return this.year }
func (this *Display) YearOffset() int { return this.yearOffset }
func (this *Display) Hour() int       { return this.hour }
func (this *Display) Minute() int     { return this.minute }
func (this *Display) DST() int        { return this.isDST }

// DisplayYear is the year as shown.
func (this *Display) DisplayYear() int {
	return this.year - this.yearOffset
}

// direct writes, the buffer is left alone

func (this *Display) directCol(col int, segs uint16) {
	if this.yearDot && col == yearPos+1 {
		segs |= 0x8000
	}
	this.write(byte(col*2), byte(segs&0xff), byte(segs>>8))
}

func (this *Display) directAMPM(val1, val2 byte) {
	this.write(ampmPos*2, val1, val2)
}

func (this *Display) ShowOnlyMonth(month int) {
	this.ClearDisplay()
	segs := this.monthSegs(clampMonth(month))
	for i := 0; i < this.monthSize; i++ {
		this.directCol(monthPos+i, segs[i])
	}
}

func (this *Display) ShowOnlyDay(day int) {
	this.ClearDisplay()
	this.directCol(dayPos, font.MakeNum(uint8(day)))
}

func (this *Display) ShowOnlyYear(year int) {
	this.ClearDisplay()
	if year >= 10000 {
		year %= 10000
	}
	this.directCol(yearPos, font.MakeNum(uint8(year/100)))
	this.directCol(yearPos+1, font.MakeNum(uint8(year%100)))
}

func (this *Display) ShowOnlyHour(hour int) {
	this.ClearDisplay()
	if !this.mode24 {
		this.directCol(hourPos, font.MakeNum(uint8(hour12(hour))))
		if hour > 11 {
			this.directAMPM(0x00, 0x80)
		} else {
			this.directAMPM(0x80, 0x00)
		}
	} else {
		this.directCol(hourPos, font.MakeNum(uint8(hour)))
		this.directAMPM(0x00, 0x00)
	}
}

func (this *Display) ShowOnlyMinute(minute int) {
	this.ClearDisplay()
	this.directCol(minPos, font.MakeNum(uint8(minute)))
}

// two characters on one 7-segment pair, the first in the low byte
func pair7(text string, idx int, corr6 bool) (uint16, int) {
	segs := uint16(font.Seg7Alpha(text[idx], corr6))
	idx++
	if idx < len(text) {
		segs |= uint16(font.Seg7Alpha(text[idx], corr6)) << 8
		idx++
	}
	return segs, idx
}

// ShowTextDirect writes text across the display. The month cells take
// one character each, the digit pairs two.
func (this *Display) ShowTextDirect(text string, corr6 bool) {
	idx := 0
	pos := monthPos
	for idx < len(text) && pos < monthPos+this.monthSize {
		if this.cfg.Variant == ACar {
			var segs uint16
			segs, idx = pair7(text, idx, corr6)
			this.directCol(pos, segs)
		} else {
			this.directCol(pos, font.Seg14Alpha(text[idx], corr6))
			idx++
		}
		pos++
	}
	for ; pos < monthPos+this.monthSize; pos++ {
		this.directCol(pos, 0)
	}

	pos = dayPos
	for idx < len(text) && pos <= minPos {
		var segs uint16
		segs, idx = pair7(text, idx, corr6)
		this.directCol(pos, segs)
		pos++
	}
	for ; pos <= minPos; pos++ {
		this.directCol(pos, 0)
	}
}

// ShowHalfIPDirect shows two parts of an ip address, a in the month
// and b in the year.
func (this *Display) ShowHalfIPDirect(a, b int, clear bool) {
	if clear {
		this.ClearDisplay()
	}

	if this.cfg.Variant == ACar {
		if a >= 100 {
			this.directCol(monthPos, font.MakeNum(uint8(a/10)))
			this.directCol(dayPos, uint16(font.Seg7Num(uint8(a%10))))
		} else {
			this.directCol(monthPos, font.MakeNumN0(uint8(a)))
		}
	} else {
		s := fmt.Sprintf("%3d", a)
		for i := 0; i < 3; i++ {
			this.directCol(monthPos+i, font.Seg14Alpha(s[i], false))
		}
	}

	if b >= 100 {
		this.directCol(yearPos, font.MakeNumN0(uint8(b/100)))
	}
	if b/100 != 0 {
		this.directCol(yearPos+1, font.MakeNum(uint8(b%100)))
	} else {
		this.directCol(yearPos+1, font.MakeNumN0(uint8(b%100)))
	}
}

// ShowSettingValDirect shows a short label and a value 0..99.
func (this *Display) ShowSettingValDirect(setting string, val int, clear bool) {
	if clear {
		this.ClearDisplay()
	}

	if this.cfg.Variant == ACar {
		var segs uint16
		if len(setting) > 0 {
			segs, _ = pair7(setting, 0, false)
		}
		this.directCol(monthPos, segs)
	} else {
		for i := 0; i < 3 && i < len(setting); i++ {
			this.directCol(monthPos+i, font.Seg14Alpha(setting[i], false))
		}
		if len(setting) == 0 {
			this.directCol(monthPos, 0)
		}
	}

	if val >= 0 && val < 100 {
		this.directCol(dayPos, font.MakeNum(uint8(val)))
	} else {
		this.directCol(dayPos, 0)
	}
}

// ShowTempDirect shows a temperature with two decimals. NaN shows dashes.
func (this *Display) ShowTempDirect(temp float64, celsius bool, animate bool) {
	label := "TEMP"
	if animate {
		label = "    "
	}
	unit := 'F'
	if celsius {
		unit = 'C'
	}
	sep := " "
	if this.cfg.Variant == ACar {
		sep = ""
	}

	if !this.handleNM() {
		return
	}

	var text string
	if math.IsNaN(temp) {
		text = fmt.Sprintf("%s%s  ----~%c", label, sep, unit)
	} else {
		t2 := int(temp*100.0) - int(temp)*100
		if t2 < 0 {
			t2 = -t2
		}
		text = fmt.Sprintf("%s%s%4d%02d~%c", label, sep, int(temp), t2, unit)
	}

	this.yearDot = true
	this.ShowTextDirect(text, false)
	this.yearDot = false

	this.nmOn()
}

// ShowHumDirect shows a relative humidity, negative shows dashes.
func (this *Display) ShowHumDirect(hum int, animate bool) {
	label := "HUMIDITY"
	if animate {
		label = strings.Repeat(" ", len(label))
	}
	sep := " "
	if this.cfg.Variant == ACar {
		sep = ""
	}

	if !this.handleNM() {
		return
	}

	var text string
	if hum < 0 {
		text = label + sep + "--%&"
	} else {
		text = fmt.Sprintf("%s%s%2d%%&", label, sep, hum)
	}
	this.ShowTextDirect(text, false)

	this.nmOn()
}

// back on after handleNM found the display switched off by night mode
func (this *Display) nmOn() {
	if this.nmOff && this.oldNM > 0 {
		this.On()
	}
	if this.nmOff {
		this.oldNM = 0
	}
}

func (this *Display) handleNM() bool {
	if this.nightMode {
		if this.nmOff {
			this.Off()
			this.oldNM = 1
			return false
		}
		if this.oldNM < 1 {
			this.SetBrightness(0, false)
		}
		this.oldNM = 1
	} else if !this.nmOff {
		if this.oldNM > 0 {
			this.SetBrightness(this.origBrightness, false)
		}
		this.oldNM = 0
	}
	return true
}

func (this *Display) showInt(animate bool) {
	if !this.handleNM() {
		return
	}

	if animate {
		this.Off()
	}

	switch {
	case this.mode24:
		this.buf[ampmPos] &= 0x7F7F
	case this.hour < 12:
		this.buf[ampmPos] |= 0x0080
		this.buf[ampmPos] &= 0x7FFF
	default:
		this.buf[ampmPos] |= 0x8000
		this.buf[ampmPos] &= 0xFF7F
	}

	if this.colon {
		this.buf[colonPos] |= 0x8080
	} else {
		this.buf[colonPos] &= 0x7F7F
	}

	if animate {
		this.writeBuffer(this.monthSize)
		this.On()
		if this.nmOff {
			this.oldNM = 0
		}
		return
	}
	this.writeBuffer(0)
	this.nmOn()
}

// ASCII rendering of the buffer for the log
func (this *Display) dumpDisplay(from int) {
	var sb strings.Builder
	pair := func(w uint16) {
		sb.WriteByte(font.Seg7Char(uint8(w & 0xff)))
		sb.WriteByte(font.Seg7Char(uint8(w >> 8)))
	}

	for i := 0; i < this.monthSize; i++ {
		switch {
		case i < from && this.cfg.Variant == ACar:
			sb.WriteString("   ")
		case i < from:
			sb.WriteByte(' ')
		case this.cfg.Variant == ACar:
			sb.WriteByte(' ')
			pair(this.buf[i])
		default:
			sb.WriteByte(font.Seg14Char(this.buf[i]))
		}
	}
	sb.WriteByte(' ')
	pair(this.buf[dayPos])
	sb.WriteByte(' ')
	pair(this.buf[yearPos])
	pair(this.buf[yearPos+1])
	sb.WriteByte(' ')
	switch {
	case this.buf[ampmPos]&0x0080 != 0:
		sb.WriteString("AM ")
	case this.buf[ampmPos]&0x8000 != 0:
		sb.WriteString("PM ")
	default:
		sb.WriteString("   ")
	}
	pair(this.buf[hourPos])
	if this.buf[colonPos]&0x8080 != 0 {
		sb.WriteByte(':')
	} else {
		sb.WriteByte(' ')
	}
	pair(this.buf[minPos])
	if this.buf[minPos]&0x8000 != 0 {
		sb.WriteByte('.')
	}
	log.Printf("%s [%s]", this.cfg.ID, sb.String())
}
