package main

import (
	"fmt"

	// gpio lib
	"github.com/stianeikeland/go-rpio"

	"dscheirer.com/timecircuits/button"
)

// openButtonPin sets up a GPIO pin for a button that pulls it to GND
func openButtonPin(pinNum int) (button.Input, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("gpio: %w", err)
	}
	// picking GPIO 2/3 results in collisions with I2C operations
	pin := rpio.Pin(pinNum)
	pin.Input()  // Input mode
	pin.PullUp() // GND => button press
	return pin, nil
}

func closeButtonPins() {
	rpio.Close()
}
