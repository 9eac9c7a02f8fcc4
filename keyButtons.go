package main

import (
	"strings"
	"sync"
	"time"

	// keyboard for sim mode
	"github.com/jonboulle/clockwork"
	"github.com/nsf/termbox-go"
	"github.com/stianeikeland/go-rpio"

	"dscheirer.com/timecircuits/keypad"
)

const (
	simTapTime  = 100 * time.Millisecond
	simHoldTime = time.Second
)

// simKeypad answers like a port expander with a key matrix behind it.
// Keys stay down until their release time.
type simKeypad struct {
	mu    sync.Mutex
	cfg   keypad.Config
	clock clockwork.Clock
	port  uint16
	down  map[byte]time.Time
}

func newSimKeypad(cfg keypad.Config, clock clockwork.Clock) *simKeypad {
	return &simKeypad{cfg: cfg, clock: clock, port: 0xffff, down: map[byte]time.Time{}}
}

func (sk *simKeypad) press(key byte, d time.Duration) {
	if strings.IndexByte(sk.cfg.Keymap, key) < 0 {
		return
	}
	sk.mu.Lock()
	defer sk.mu.Unlock()
	sk.down[key] = sk.clock.Now().Add(d)
}

func (sk *simKeypad) Tx(w, r []byte) error {
	sk.mu.Lock()
	defer sk.mu.Unlock()

	if len(w) > 0 {
		sk.port = uint16(w[0])
		if len(w) > 1 {
			sk.port |= uint16(w[1]) << 8
		} else {
			sk.port |= 0xff00
		}
	}
	if len(r) == 0 {
		return nil
	}

	now := sk.clock.Now()
	val := sk.port
	cols := len(sk.cfg.ColPins)
	for i := 0; i < len(sk.cfg.Keymap); i++ {
		until, ok := sk.down[sk.cfg.Keymap[i]]
		if !ok {
			continue
		}
		if !now.Before(until) {
			delete(sk.down, sk.cfg.Keymap[i])
			continue
		}
		row, col := sk.cfg.RowPins[i/cols], sk.cfg.ColPins[i%cols]
		if sk.port&(1<<col) == 0 {
			val &^= 1 << row
		}
	}
	r[0] = byte(val)
	if len(r) > 1 {
		r[1] = byte(val >> 8)
	}
	return nil
}

// simButton is an active low input held down until its release time
type simButton struct {
	mu    sync.Mutex
	clock clockwork.Clock
	until time.Time
}

func (sb *simButton) press(d time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.until = sb.clock.Now().Add(d)
}

func (sb *simButton) Read() rpio.State {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.clock.Now().Before(sb.until) {
		return rpio.Low
	}
	return rpio.High
}

type keyboard struct {
	keypad *simKeypad
	button *simButton
	// the key that taps the enter button, upper case holds it
	enter byte
	// the next key is held down
	holdNext bool
	logger   flogger
}

func initKeyboard() error {
	err := termbox.Init()
	if err != nil {
		return err
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.Flush()
	return nil
}

// key routes one keyboard character; 'h' holds the next keypad key
func (kb *keyboard) key(ch rune) {
	if ch > 0x7f {
		kb.holdNext = false
		return
	}
	switch {
	case ch == 'h':
		kb.holdNext = true
		return
	case byte(ch) == kb.enter:
		kb.button.press(simTapTime)
	case byte(ch) == kb.enter-'a'+'A':
		kb.button.press(simHoldTime)
	default:
		d := simTapTime
		if kb.holdNext {
			d = simHoldTime
		}
		kb.keypad.press(byte(ch), d)
	}
	kb.holdNext = false
}

// runKeyboard feeds termbox key presses to the simulated inputs until
// ctrl-c, which closes quit
func runKeyboard(rt runtimeConfig, kb *keyboard) {
	defer wg.Done()
	defer termbox.Close()

	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			if ev.Key == termbox.KeyCtrlC {
				kb.logger.Println("exit from keyboard")
				rt.comms.shutdown()
				return
			}
			if ev.Ch != 0 {
				kb.key(ev.Ch)
			}
		case termbox.EventInterrupt:
			return
		case termbox.EventError:
			kb.logger.Println(ev.Err.Error())
			rt.comms.shutdown()
			return
		}
	}
}

// interruptKeyboard makes runKeyboard return
func interruptKeyboard() {
	termbox.Interrupt()
}
