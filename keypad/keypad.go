// Package keypad scans a key matrix wired to an i2c port expander
// (PCF8574 style, 8 or 16 bit) and reports key state changes.
package keypad

import (
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
)

// ListMax is how many keys can be active at once
const ListMax = 10

// NoKey marks an empty slot in the key list
const NoKey = 0

const (
	defaultScanInterval = 10 * time.Millisecond
	defaultHoldTime     = 500 * time.Millisecond
	sampleDelay         = 5 * time.Millisecond
	maxRetries          = 5
)

type State int

const (
	Idle State = iota
	Pressed
	Hold
	Released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Pressed:
		return "PRESSED"
	case Hold:
		return "HOLD"
	case Released:
		return "RELEASED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Listener is told about every key state change, from inside Scan.
type Listener interface {
	KeyEvent(key byte, state State)
}

type ListenerFunc func(key byte, state State)

func (f ListenerFunc) KeyEvent(key byte, state State) {
	f(key, state)
}

// Bus is what the keypad needs from the i2c layer.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

type Config struct {
	// one character per key, row by row
	Keymap  string
	RowPins []uint8
	ColPins []uint8
	Address uint16
	// expander width in bytes, 1 or 2
	Width int
}

// DefaultConfig is the 4x3 phone style keypad on a PCF8574 at 0x20.
func DefaultConfig() Config {
	return Config{
		Keymap:  "123456789*0#",
		RowPins: []uint8{1, 6, 5, 3},
		ColPins: []uint8{2, 0, 4},
		Address: 0x20,
		Width:   1,
	}
}

// Key is one slot of the active key list.
type Key struct {
	Char    byte
	Code    int
	State   State
	Changed bool

	holdTimer time.Time
}

type Keypad struct {
	bus   Bus
	cfg   Config
	clock clockwork.Clock

	scanInterval time.Duration
	holdTime     time.Duration
	startTime    time.Time
	delay        func(time.Duration)

	pinState uint16
	rowMask  uint16
	bitMap   []uint16
	keys     [ListMax]Key

	listener Listener
	debug    bool
}

func New(bus Bus, cfg Config, clock clockwork.Clock) (*Keypad, error) {
	if cfg.Width != 1 && cfg.Width != 2 {
		return nil, fmt.Errorf("keypad: bad expander width %d", cfg.Width)
	}
	if len(cfg.RowPins) == 0 || len(cfg.ColPins) == 0 {
		return nil, fmt.Errorf("keypad: no rows or columns")
	}
	if len(cfg.ColPins) > 16 {
		return nil, fmt.Errorf("keypad: %d columns, 16 max", len(cfg.ColPins))
	}
	if len(cfg.Keymap) != len(cfg.RowPins)*len(cfg.ColPins) {
		return nil, fmt.Errorf("keypad: keymap has %d keys, want %d",
			len(cfg.Keymap), len(cfg.RowPins)*len(cfg.ColPins))
	}
	pins := uint8(cfg.Width * 8)
	for _, p := range append(append([]uint8{}, cfg.RowPins...), cfg.ColPins...) {
		if p >= pins {
			return nil, fmt.Errorf("keypad: pin %d on a %d bit expander", p, pins)
		}
	}

	this := &Keypad{
		bus:          bus,
		cfg:          cfg,
		clock:        clock,
		scanInterval: defaultScanInterval,
		holdTime:     defaultHoldTime,
		delay:        clock.Sleep,
		bitMap:       make([]uint16, len(cfg.RowPins)),
	}
	for i := range this.keys {
		this.keys[i].Code = -1
	}
	return this, nil
}

func (this *Keypad) SetDebug(on bool) {
	this.debug = on
}

func (this *Keypad) debugf(v string, args ...interface{}) {
	if !this.debug {
		return
	}
	log.Printf("keypad: "+v, args...)
}

// Begin sets all expander pins high and reads them back.
func (this *Keypad) Begin() error {
	if err := this.portWrite(0xffff); err != nil {
		return fmt.Errorf("keypad: %w", err)
	}
	this.pinState = this.readPinState()

	this.rowMask = 0
	for _, p := range this.cfg.RowPins {
		this.rowMask |= 1 << p
	}
	return nil
}

// SetScanInterval sets the minimum time between scans, at least 1ms.
func (this *Keypad) SetScanInterval(interval time.Duration) {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	this.scanInterval = interval
}

func (this *Keypad) SetHoldTime(hold time.Duration) {
	this.holdTime = hold
}

// SetDelayFunc replaces the wait between the three samples of a scan.
func (this *Keypad) SetDelayFunc(f func(time.Duration)) {
	this.delay = f
}

func (this *Keypad) SetListener(l Listener) {
	this.listener = l
}

// Scan reads the matrix if the scan interval has passed and returns
// true if any key changed state.
func (this *Keypad) Scan() bool {
	if this.clock.Now().Sub(this.startTime) <= this.scanInterval {
		return false
	}
	this.scanKeys()
	activity := this.updateList()
	this.startTime = this.clock.Now()
	return activity
}

// Keys returns the non empty slots of the key list.
func (this *Keypad) Keys() []Key {
	var keys []Key
	for _, k := range this.keys {
		if k.Char != NoKey {
			keys = append(keys, k)
		}
	}
	return keys
}

// sample every column three times, until all three agree or we ran
// out of retries; the first sample of the last pass wins
func (this *Keypad) scanKeys() {
	cols := len(this.cfg.ColPins)
	var pinVals [3][16]uint16

	for retry := 0; ; retry++ {
		for d := 0; d < 3; d++ {
			for c, pin := range this.cfg.ColPins {
				this.pinWrite(pin, false)
				pinVals[d][c] = this.readPinState() & this.rowMask
				this.pinWrite(pin, true)
			}
			if d < 2 {
				this.delay(sampleDelay)
			}
		}

		repeat := false
		for c := 0; c < cols; c++ {
			if pinVals[0][c] != pinVals[1][c] || pinVals[0][c] != pinVals[2][c] {
				repeat = true
			}
		}
		if !repeat {
			break
		}
		if retry == maxRetries {
			this.debugf("unstable samples, giving up after %d retries", retry)
			break
		}
	}

	for c := 0; c < cols; c++ {
		for r, pin := range this.cfg.RowPins {
			// active low
			if pinVals[0][c]&(1<<pin) == 0 {
				this.bitMap[r] |= 1 << c
			} else {
				this.bitMap[r] &^= 1 << c
			}
		}
	}
}

// keys keep their slot for as long as they are active
func (this *Keypad) updateList() bool {
	for i := range this.keys {
		if this.keys[i].State == Idle {
			this.keys[i] = Key{Char: NoKey, Code: -1}
		}
	}

	cols := len(this.cfg.ColPins)
	for r := range this.cfg.RowPins {
		for c := 0; c < cols; c++ {
			closed := this.bitMap[r]&(1<<c) != 0
			code := r*cols + c

			idx := this.findInList(code)
			if idx >= 0 {
				this.nextKeyState(idx, closed)
				continue
			}
			if !closed {
				continue
			}
			for i := range this.keys {
				if this.keys[i].Char == NoKey {
					this.keys[i] = Key{Char: this.cfg.Keymap[code], Code: code, State: Idle}
					this.nextKeyState(i, closed)
					break
				}
			}
		}
	}

	for _, k := range this.keys {
		if k.Changed {
			return true
		}
	}
	return false
}

func (this *Keypad) nextKeyState(idx int, closed bool) {
	k := &this.keys[idx]
	k.Changed = false

	switch k.State {
	case Idle:
		if closed {
			this.transitionTo(idx, Pressed)
			k.holdTimer = this.clock.Now()
		}
	case Pressed:
		if this.clock.Now().Sub(k.holdTimer) > this.holdTime {
			this.transitionTo(idx, Hold)
		} else if !closed {
			this.transitionTo(idx, Released)
		}
	case Hold:
		if !closed {
			this.transitionTo(idx, Released)
		}
	case Released:
		this.transitionTo(idx, Idle)
	}
}

func (this *Keypad) findInList(code int) int {
	for i := range this.keys {
		if this.keys[i].Code == code {
			return i
		}
	}
	return -1
}

func (this *Keypad) transitionTo(idx int, next State) {
	k := &this.keys[idx]
	k.State = next
	k.Changed = true
	this.debugf("key %q %s", k.Char, next)

	if this.listener != nil {
		this.listener.KeyEvent(k.Char, next)
	}
}

func (this *Keypad) pinWrite(pin uint8, high bool) {
	mask := uint16(1) << pin
	if high {
		this.pinState |= mask
	} else {
		this.pinState &^= mask
	}
	this.portWrite(this.pinState)
}

func (this *Keypad) portWrite(val uint16) error {
	w := []byte{byte(val)}
	if this.cfg.Width > 1 {
		w = append(w, byte(val>>8))
	}
	this.pinState = val
	err := this.bus.Tx(this.cfg.Address, w, nil)
	if err != nil {
		this.debugf("write: %s", err.Error())
	}
	return err
}

// a failed read counts as all pins high, no key down
func (this *Keypad) readPinState() uint16 {
	r := make([]byte, this.cfg.Width)
	if err := this.bus.Tx(this.cfg.Address, nil, r); err != nil {
		this.debugf("read: %s", err.Error())
		return 0xffff
	}
	val := uint16(r[0])
	if this.cfg.Width > 1 {
		val |= uint16(r[1]) << 8
	}
	return val
}
