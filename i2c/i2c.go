package i2c

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// SimDevice answers transactions for one address on a simulated bus.
type SimDevice interface {
	Tx(w, r []byte) error
}

// I2C is either a real bus or a simulated one that logs its writes.
type I2C struct {
	bus    i2c.BusCloser
	name   string
	sim    bool
	quiet  bool
	mu     sync.Mutex
	simDev map[uint16]SimDevice
}

func logWrite(addr uint16, buf []uint8) {
	var sb strings.Builder
	for i := 0; i < len(buf); i++ {
		fmt.Fprintf(&sb, "%02x ", buf[i])
	}
	log.Printf("Write 0x%02x: %s", addr, sb.String())
}

// Open a connection to the named i2c bus ("" picks the first one)
func Open(name string, simulated bool) (*I2C, error) {
	if simulated {
		this := &I2C{name: name, sim: true, simDev: make(map[uint16]SimDevice)}
		return this, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c: host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %q: %w", name, err)
	}
	this := &I2C{bus: bus, name: bus.String()}
	return this, nil
}

// Attach a simulated device at addr. Ignored on a real bus.
func (this *I2C) Attach(addr uint16, dev SimDevice) {
	if !this.sim {
		return
	}
	this.mu.Lock()
	this.simDev[addr] = dev
	this.mu.Unlock()
}

// Quiet stops the simulated bus from logging every write.
func (this *I2C) Quiet(on bool) {
	this.quiet = on
}

func (this *I2C) Simulated() bool {
	return this.sim
}

func (this *I2C) String() string {
	if this.sim {
		return "sim:" + this.name
	}
	return this.name
}

func (this *I2C) Close() error {
	if this.sim {
		log.Printf("Close: %s", this.String())
		return nil
	}
	return this.bus.Close()
}

// Tx writes w then reads into r, either may be empty.
func (this *I2C) Tx(addr uint16, w, r []byte) error {
	if !this.sim {
		return this.bus.Tx(addr, w, r)
	}

	this.mu.Lock()
	dev := this.simDev[addr]
	this.mu.Unlock()

	if len(w) > 0 && !this.quiet {
		logWrite(addr, w)
	}
	if dev != nil {
		return dev.Tx(w, r)
	}
	// nothing attached, the bus floats high
	for i := range r {
		r[i] = 0xff
	}
	return nil
}
