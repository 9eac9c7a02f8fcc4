package main

import (
	"fmt"
	"sync"
)

// HT16K33 commands
const (
	htOsc        = 0x20
	htDisplay    = 0x80
	htBrightness = 0xE0
)

// audit entries kept per display
const auditMax = 256

// logDisplay stands in for an HT16K33 on the simulated bus. It keeps
// the display RAM and an audit of the commands it saw.
type logDisplay struct {
	mu         sync.Mutex
	name       string
	logger     flogger
	debugDump  bool
	oscOn      bool
	displayOn  bool
	brightness uint8
	ram        [16]byte
	audit      []string
}

func newLogDisplay(name string, debugDump bool) *logDisplay {
	return &logDisplay{
		name:      name,
		logger:    &ThreadLogger{name: name},
		debugDump: debugDump,
	}
}

func (ld *logDisplay) Tx(w, r []byte) error {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	for i := range r {
		r[i] = 0
	}
	if len(w) == 0 {
		return nil
	}

	cmd := w[0]
	switch {
	case len(w) > 1:
		// data write, auto incrementing from the address byte
		for i, b := range w[1:] {
			ld.ram[(int(cmd)+i)%len(ld.ram)] = b
		}
		ld.record(fmt.Sprintf("ram %02x %x", cmd, w[1:]))
		return nil
	case cmd&0xF0 == htBrightness:
		ld.brightness = cmd & 0x0f
		ld.record(fmt.Sprintf("brightness %d", ld.brightness))
	case cmd&0xF0 == htDisplay:
		ld.displayOn = cmd&0x01 != 0
		ld.record(fmt.Sprintf("display %v", ld.displayOn))
	case cmd&0xF0 == htOsc:
		ld.oscOn = cmd&0x01 != 0
		ld.record(fmt.Sprintf("oscillator %v", ld.oscOn))
	default:
		return fmt.Errorf("%s: unknown command %02x", ld.name, cmd)
	}
	return nil
}

func (ld *logDisplay) record(e string) {
	if ld.debugDump {
		ld.logger.Println(e)
	}
	if len(ld.audit) >= auditMax {
		ld.audit = append(ld.audit[:0], ld.audit[len(ld.audit)-auditMax+1:]...)
	}
	ld.audit = append(ld.audit, e)
}

// word returns one 16 bit column of the display RAM
func (ld *logDisplay) word(col int) uint16 {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return uint16(ld.ram[col*2]) | uint16(ld.ram[col*2+1])<<8
}

func (ld *logDisplay) isOn() bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.oscOn && ld.displayOn
}

func (ld *logDisplay) level() uint8 {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return ld.brightness
}

func (ld *logDisplay) auditLog() []string {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	return append([]string{}, ld.audit...)
}
