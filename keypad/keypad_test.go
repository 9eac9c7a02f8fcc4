package keypad

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gotest.tools/assert"
)

// expander pulls a row pin low while its key is down and the key's
// column pin is driven low
type expander struct {
	cfg     Config
	port    uint16
	down    map[byte]bool
	writes  int
	reads   int
	noise   int
	failRds bool
}

func (e *expander) Tx(addr uint16, w, r []byte) error {
	if addr != e.cfg.Address {
		return errors.New("wrong address")
	}
	if len(w) > 0 {
		e.writes++
		e.port = uint16(w[0])
		if len(w) > 1 {
			e.port |= uint16(w[1]) << 8
		}
	}
	if len(r) == 0 {
		return nil
	}
	if e.failRds {
		return errors.New("nak")
	}
	val := e.port
	cols := len(e.cfg.ColPins)
	for i := 0; i < len(e.cfg.Keymap); i++ {
		if !e.down[e.cfg.Keymap[i]] {
			continue
		}
		row, col := e.cfg.RowPins[i/cols], e.cfg.ColPins[i%cols]
		if e.port&(1<<col) == 0 {
			val &^= 1 << row
		}
	}
	// odd reads see the first row pulled low
	if e.noise > 0 {
		e.noise--
		if e.reads%2 == 1 {
			val &^= 1 << e.cfg.RowPins[0]
		}
	}
	e.reads++
	r[0] = byte(val)
	if len(r) > 1 {
		r[1] = byte(val >> 8)
	}
	return nil
}

type event struct {
	Key   byte
	State State
}

func setup(t *testing.T, cfg Config) (*Keypad, *expander, clockwork.FakeClock, *[]event) {
	exp := &expander{cfg: cfg, down: map[byte]bool{}}
	clock := clockwork.NewFakeClock()
	kp, err := New(exp, cfg, clock)
	assert.NilError(t, err)
	kp.SetDebug(true)
	kp.SetDelayFunc(func(time.Duration) {})

	var events []event
	kp.SetListener(ListenerFunc(func(key byte, state State) {
		events = append(events, event{key, state})
	}))
	assert.NilError(t, kp.Begin())
	return kp, exp, clock, &events
}

func scan(kp *Keypad, clock clockwork.FakeClock) bool {
	clock.Advance(11 * time.Millisecond)
	return kp.Scan()
}

func TestBegin(t *testing.T) {
	kp, exp, _, _ := setup(t, DefaultConfig())
	assert.Equal(t, exp.writes, 1)
	assert.Equal(t, exp.port, uint16(0xff))
	assert.Equal(t, exp.reads, 1)
	assert.Equal(t, kp.rowMask, uint16(1<<1|1<<6|1<<5|1<<3))
}

func TestNewErrors(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.Keymap = "123"
	_, err := New(&expander{}, cfg, clock)
	assert.ErrorContains(t, err, "keymap")

	cfg = DefaultConfig()
	cfg.Width = 3
	_, err = New(&expander{}, cfg, clock)
	assert.ErrorContains(t, err, "width")

	cfg = DefaultConfig()
	cfg.RowPins = []uint8{1, 6, 5, 9}
	_, err = New(&expander{}, cfg, clock)
	assert.ErrorContains(t, err, "pin 9")
}

func TestPressRelease(t *testing.T) {
	kp, exp, clock, events := setup(t, DefaultConfig())

	exp.down['5'] = true
	assert.Assert(t, scan(kp, clock))
	assert.DeepEqual(t, *events, []event{{'5', Pressed}})
	assert.Equal(t, len(kp.Keys()), 1)
	assert.Equal(t, kp.Keys()[0].Code, 4)

	// still down, nothing new
	assert.Assert(t, !scan(kp, clock))

	exp.down['5'] = false
	assert.Assert(t, scan(kp, clock))
	assert.Assert(t, scan(kp, clock))
	assert.DeepEqual(t, *events, []event{{'5', Pressed}, {'5', Released}, {'5', Idle}})

	assert.Assert(t, !scan(kp, clock))
	assert.Equal(t, len(kp.Keys()), 0)
}

func TestHold(t *testing.T) {
	kp, exp, clock, events := setup(t, DefaultConfig())

	exp.down['#'] = true
	scan(kp, clock)
	clock.Advance(490 * time.Millisecond)
	assert.Assert(t, scan(kp, clock))
	assert.DeepEqual(t, *events, []event{{'#', Pressed}, {'#', Hold}})

	assert.Assert(t, !scan(kp, clock))

	exp.down['#'] = false
	scan(kp, clock)
	scan(kp, clock)
	assert.DeepEqual(t, *events, []event{{'#', Pressed}, {'#', Hold}, {'#', Released}, {'#', Idle}})
}

func TestScanInterval(t *testing.T) {
	kp, exp, clock, _ := setup(t, DefaultConfig())
	scan(kp, clock)
	reads := exp.reads

	clock.Advance(5 * time.Millisecond)
	kp.Scan()
	assert.Equal(t, exp.reads, reads)

	kp.SetScanInterval(0)
	assert.Equal(t, kp.scanInterval, time.Millisecond)
	clock.Advance(2 * time.Millisecond)
	kp.Scan()
	assert.Equal(t, exp.reads, reads+9)
}

func TestNoiseRetry(t *testing.T) {
	kp, exp, clock, events := setup(t, DefaultConfig())

	// first pass noisy, second pass clean
	exp.noise = 9
	exp.reads = 0
	scan(kp, clock)
	assert.Equal(t, exp.reads, 18)
	assert.Equal(t, len(*events), 0)

	// never settles: six passes, then the first sample of the last one
	exp.noise = 1000
	exp.reads = 0
	scan(kp, clock)
	assert.Equal(t, exp.reads, 54)
	assert.DeepEqual(t, *events, []event{{'1', Pressed}, {'3', Pressed}})
}

func TestListFull(t *testing.T) {
	kp, exp, clock, events := setup(t, DefaultConfig())
	for _, k := range []byte("123456789*0#") {
		exp.down[k] = true
	}
	scan(kp, clock)
	assert.Equal(t, len(*events), ListMax)
	assert.Equal(t, len(kp.Keys()), ListMax)
	assert.Equal(t, (*events)[ListMax-1].Key, byte('*'))
	for _, ev := range *events {
		assert.Assert(t, ev.Key != '0' && ev.Key != '#')
	}

	// a freed slot takes a waiting key
	exp.down['1'] = false
	scan(kp, clock)
	scan(kp, clock)
	scan(kp, clock)
	last := (*events)[len(*events)-1]
	assert.DeepEqual(t, last, event{'0', Pressed})
}

func TestWideExpander(t *testing.T) {
	cfg := Config{
		Keymap:  "AB",
		RowPins: []uint8{12},
		ColPins: []uint8{0, 9},
		Address: 0x21,
		Width:   2,
	}
	kp, exp, clock, events := setup(t, cfg)
	assert.Equal(t, exp.port, uint16(0xffff))

	exp.down['B'] = true
	scan(kp, clock)
	assert.DeepEqual(t, *events, []event{{'B', Pressed}})
	assert.Equal(t, kp.Keys()[0].Code, 1)
}

func TestReadError(t *testing.T) {
	kp, exp, clock, events := setup(t, DefaultConfig())
	exp.down['5'] = true
	exp.failRds = true
	assert.Assert(t, !scan(kp, clock))
	assert.Equal(t, len(*events), 0)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, Hold.String(), "HOLD")
	assert.Equal(t, State(9).String(), "State(9)")
}
