package speeddisplay

import (
	"math"
	"testing"

	"gotest.tools/assert"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"dscheirer.com/timecircuits/font"
)

const testAddr = 0x70

func setup(t *testing.T, typ Type) (*Display, *i2ctest.Record) {
	rec := &i2ctest.Record{}
	d := New(rec, testAddr)
	d.SetDebug(true)
	assert.NilError(t, d.Begin(typ))
	rec.Ops = nil
	return d, rec
}

func lastWrite(t *testing.T, rec *i2ctest.Record) []byte {
	assert.Assert(t, len(rec.Ops) > 0, "nothing written")
	op := rec.Ops[len(rec.Ops)-1]
	assert.Equal(t, op.Addr, uint16(testAddr))
	return op.W
}

func shown(t *testing.T, rec *i2ctest.Record) [8]uint16 {
	w := lastWrite(t, rec)
	assert.Equal(t, len(w), 17)
	assert.Equal(t, w[0], byte(0))
	var words [8]uint16
	for i := range words {
		words[i] = uint16(w[1+i*2]) | uint16(w[2+i*2])<<8
	}
	return words
}

var g7 = font.Generic7

func TestBegin(t *testing.T) {
	rec := &i2ctest.Record{}
	d := New(rec, testAddr)
	assert.NilError(t, d.Begin(Adafruit7x4))

	assert.Equal(t, len(rec.Ops), 4)
	assert.DeepEqual(t, rec.Ops[0].W, []byte{0x21})
	assert.DeepEqual(t, rec.Ops[1].W, []byte{0xEF})
	assert.DeepEqual(t, rec.Ops[2].W, make([]byte, 17))
	assert.DeepEqual(t, rec.Ops[3].W, []byte{0x81})
	assert.Equal(t, d.Type(), Adafruit7x4)
	assert.Equal(t, d.Speed(), -1)
}

func TestBadType(t *testing.T) {
	d, _ := setup(t, Type(42))
	assert.Equal(t, d.Type(), CircuitSetup)
	assert.Equal(t, d.Descriptor().Name, "CircuitSetup")

	_, ok := Lookup(-1)
	assert.Assert(t, !ok)
	desc, ok := Lookup(Grove2Dig14)
	assert.Assert(t, ok)
	assert.DeepEqual(t, desc.BufPos, []int{2, 1})
}

func TestDescriptors(t *testing.T) {
	for typ := CircuitSetup; typ < numTypes; typ++ {
		d := descriptors[typ]
		assert.Assert(t, d.Font != nil, d.Name)
		assert.Equal(t, len(d.BufPos), d.NumDigs>>d.BufPacked, d.Name)
		for _, p := range d.BufPos {
			assert.Assert(t, p < d.BufSize, d.Name)
		}
		assert.Assert(t, d.SpeedPos10 < d.BufSize && d.SpeedPos01 < d.BufSize, d.Name)
		if d.ColonPos != noColon {
			assert.Assert(t, d.ColonBit != 0, d.Name)
		}
	}
}

func TestSpeed(t *testing.T) {
	d, rec := setup(t, CircuitSetup)

	d.SetSpeed(88)
	d.Show()
	words := shown(t, rec)
	assert.Equal(t, words[0], g7[8])
	assert.Equal(t, words[1], g7[8])
	assert.Equal(t, d.Speed(), 88)
	assert.Equal(t, d.String(), "88")

	d.SetSpeed(7)
	assert.Equal(t, d.String(), "07")

	d.SetSpeed(150)
	d.Show()
	words = shown(t, rec)
	assert.Equal(t, words[0], g7.Char('H'))
	assert.Equal(t, words[1], g7.Char('I'))
	assert.Equal(t, d.String(), "HI")

	d.SetSpeed(-1)
	d.Show()
	words = shown(t, rec)
	assert.Equal(t, words[0], g7[font.WiredMinus])
	assert.Equal(t, words[1], g7[font.WiredMinus])
	assert.Equal(t, d.String(), "--")
}

func TestDot(t *testing.T) {
	d, _ := setup(t, Adafruit7x4)
	d.SetDot(true)
	assert.Assert(t, d.Dot())
	d.SetSpeed(5)

	buf := d.Buffer()
	assert.Equal(t, buf[3], g7[0])
	assert.Equal(t, buf[4], g7[5]|0x80)
	assert.Equal(t, d.String(), "  05")

	d.SetDot(false)
	d.SetSpeed(5)
	assert.Equal(t, d.Buffer()[4], g7[5])
}

func TestColon(t *testing.T) {
	d, rec := setup(t, Adafruit7x4)
	d.SetColon(true)
	assert.Assert(t, d.Colon())
	d.SetSpeed(12)
	d.Show()

	// speed never lights the colon
	words := shown(t, rec)
	assert.Equal(t, words[2], uint16(0))
	assert.Equal(t, words[3], g7[1])
	assert.Equal(t, words[4], g7[2])

	d.SetText("12")
	d.Show()
	words = shown(t, rec)
	assert.Equal(t, words[2], uint16(0x0002))

	d.SetColon(false)
	d.SetText("12")
	assert.Equal(t, d.Buffer()[2], uint16(0))
}

func TestColonIgnored(t *testing.T) {
	d, rec := setup(t, Adafruit14x4)
	d.SetColon(true)
	d.SetSpeed(12)
	assert.Equal(t, d.Buffer(), [8]uint16{0, 0, font.Generic14[1], font.Generic14[2]})

	d.SetColonDirect(true)
	assert.Equal(t, len(rec.Ops), 0)
}

func TestGrove2(t *testing.T) {
	d, _ := setup(t, Grove2Dig14)
	d.SetSpeed(34)
	buf := d.Buffer()
	assert.Equal(t, buf[2], font.Grove14[3])
	assert.Equal(t, buf[1], font.Grove14[4])
	assert.Equal(t, d.String(), "34")
}

func TestGrove4Colon(t *testing.T) {
	d, rec := setup(t, Grove4Dig14)
	g := font.Grove4x14

	d.SetText("KX8 ")
	d.Show()
	words := shown(t, rec)
	assert.Equal(t, words[1], g.Char('K'))
	assert.Equal(t, words[2], g.Char('X'))
	assert.Equal(t, words[3], g.Char('8'))
	// K and X light both bits, 8 neither
	assert.Equal(t, words[5], uint16(1<<4|1<<3|1<<6|1<<14))

	d.SetColon(true)
	d.SetText("8888")
	d.Show()
	words = shown(t, rec)
	assert.Equal(t, words[5], uint16(0x2080))
}

func TestText(t *testing.T) {
	d, _ := setup(t, Adafruit14x4)
	g := font.Generic14
	d.SetText("A.B-CD")
	buf := d.Buffer()
	assert.Equal(t, buf[0], g.Char('A')|g[font.WiredDot])
	assert.Equal(t, buf[1], g.Char('B'))
	assert.Equal(t, buf[2], g[font.WiredMinus])
	assert.Equal(t, buf[3], g.Char('C'))
	assert.Equal(t, d.String(), "AB-C")
}

func TestPacked(t *testing.T) {
	d, _ := setup(t, Packed7)
	d.SetSpeed(42)
	assert.Equal(t, d.Buffer()[7], g7[4]|g7[2]<<8)
	assert.Equal(t, d.String(), "42")

	d.SetDot(true)
	d.SetSpeed(42)
	assert.Equal(t, d.Buffer()[7], g7[4]|(g7[2]|0x80)<<8)

	d.SetText("1.2")
	assert.Equal(t, d.Buffer()[7], g7[1]|0x80|g7[2]<<8)
}

func TestTemperature(t *testing.T) {
	d, _ := setup(t, CircuitSetup)

	for _, tc := range []struct {
		temp float64
		want [2]uint16
	}{
		{5.3, [2]uint16{g7[5] | 0x80, g7[3]}},
		{42.4, [2]uint16{g7[4], g7[2]}},
		{-3.6, [2]uint16{g7[font.WiredMinus], g7[4]}},
		{-12, [2]uint16{g7.Char('L'), g7.Char('O')}},
		{150, [2]uint16{g7.Char('H'), g7.Char('I')}},
		{math.NaN(), [2]uint16{g7[font.WiredMinus], g7[font.WiredMinus]}},
	} {
		d.SetTemperature(tc.temp)
		buf := d.Buffer()
		assert.Equal(t, buf[0], tc.want[0], "%v", tc.temp)
		assert.Equal(t, buf[1], tc.want[1], "%v", tc.temp)
	}
}

func TestTemperatureWide(t *testing.T) {
	d, _ := setup(t, Adafruit7x4)
	d.SetTemperature(21.5)
	buf := d.Buffer()
	assert.Equal(t, buf[0], uint16(0))
	assert.Equal(t, buf[1], g7[2])
	assert.Equal(t, buf[3], g7[1]|0x80)
	assert.Equal(t, buf[4], g7[5])

	d.SetTemperature(-10.25)
	assert.Equal(t, d.String(), "-102")
}

func TestTemperatureText3(t *testing.T) {
	d, _ := setup(t, CircuitSetup)
	d.d.NumDigs = 3
	assert.Equal(t, d.temperatureText(-100), "Low")
	assert.Equal(t, d.temperatureText(1200), "Hi")
	assert.Equal(t, d.temperatureText(123.4), "123")
	assert.Equal(t, d.temperatureText(-15.6), "-16")
	assert.Equal(t, d.temperatureText(9.5), "9.5")
}

func TestShowTextDirect(t *testing.T) {
	d, rec := setup(t, Adafruit7x4)
	d.SetColon(true)
	d.SetText("1")
	d.Show()
	rec.Ops = nil

	d.ShowTextDirect("12")
	assert.Equal(t, len(rec.Ops), 5)
	assert.DeepEqual(t, rec.Ops[0].W, make([]byte, 17))
	assert.DeepEqual(t, rec.Ops[1].W, []byte{0, byte(g7[1]), 0})
	assert.DeepEqual(t, rec.Ops[2].W, []byte{2, byte(g7[2]), 0})
	assert.DeepEqual(t, rec.Ops[3].W, []byte{6, 0, 0})
	assert.DeepEqual(t, rec.Ops[4].W, []byte{8, 0, 0})

	// the clear dropped the colon
	d.SetColonDirect(true)
	assert.DeepEqual(t, lastWrite(t, rec), []byte{4, 0x02, 0})
	d.SetColonDirect(false)
	assert.DeepEqual(t, lastWrite(t, rec), []byte{4, 0, 0})
}

func TestShowTextDirectGrove4(t *testing.T) {
	d, rec := setup(t, Grove4Dig14)
	d.SetColon(true)
	d.SetText("8888")
	d.Show()
	rec.Ops = nil

	d.ShowTextDirect("KX88")
	w := lastWrite(t, rec)
	want := uint16(0x2080 | 1<<4 | 1<<3 | 1<<6 | 1<<14)
	assert.DeepEqual(t, w, []byte{10, byte(want), byte(want >> 8)})

	d.SetColonDirect(false)
	want &^= 0x2080
	assert.DeepEqual(t, lastWrite(t, rec), []byte{10, byte(want), byte(want >> 8)})
}

func TestNightMode(t *testing.T) {
	d, rec := setup(t, CircuitSetup)
	d.SetBrightness(10, true)
	d.SetNightMode(true)
	assert.Assert(t, d.NightMode())
	rec.Ops = nil

	d.Show()
	assert.Equal(t, len(rec.Ops), 2)
	assert.DeepEqual(t, rec.Ops[0].W, []byte{0xE0})
	assert.Equal(t, d.Brightness(), uint8(0))

	d.Show()
	assert.Equal(t, len(rec.Ops), 3)

	d.SetNightMode(false)
	d.Show()
	assert.DeepEqual(t, rec.Ops[3].W, []byte{0xEA})
	assert.Equal(t, d.Brightness(), uint8(10))
}

func TestBrightness(t *testing.T) {
	d, rec := setup(t, CircuitSetup)
	assert.Equal(t, d.SetBrightness(40, true), uint8(15))
	d.SetBrightnessDirect(3)
	assert.Equal(t, d.SetBrightness(Restore, false), uint8(15))
	assert.DeepEqual(t, lastWrite(t, rec), []byte{0xEF})
}

func TestLampTest(t *testing.T) {
	d, rec := setup(t, Grove4Dig14)
	d.LampTest()
	w := lastWrite(t, rec)
	assert.Equal(t, len(w), 17)
	for _, b := range w[1:] {
		assert.Equal(t, b, byte(0xff))
	}
	d.SetColonDirect(false)
	assert.DeepEqual(t, lastWrite(t, rec), []byte{10, 0x7f, 0xdf})
}
