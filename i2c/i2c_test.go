package i2c

import (
	"testing"

	"gotest.tools/assert"
)

type echoDev struct {
	last []byte
}

func (d *echoDev) Tx(w, r []byte) error {
	if len(w) > 0 {
		d.last = append([]byte(nil), w...)
	}
	copy(r, d.last)
	return nil
}

func TestSimulatedBus(t *testing.T) {
	bus, err := Open("1", true)
	assert.NilError(t, err)
	assert.Assert(t, bus.Simulated())
	assert.Equal(t, bus.String(), "sim:1")
	bus.Quiet(true)

	r := make([]byte, 2)
	assert.NilError(t, bus.Tx(0x20, nil, r))
	assert.DeepEqual(t, r, []byte{0xff, 0xff})

	dev := &echoDev{}
	bus.Attach(0x20, dev)
	assert.NilError(t, bus.Tx(0x20, []byte{0x12, 0x34}, nil))
	assert.NilError(t, bus.Tx(0x20, nil, r))
	assert.DeepEqual(t, r, []byte{0x12, 0x34})

	// other addresses are untouched
	assert.NilError(t, bus.Tx(0x21, nil, r))
	assert.DeepEqual(t, r, []byte{0xff, 0xff})
	assert.NilError(t, bus.Close())
}
