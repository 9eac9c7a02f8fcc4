package main

import (
	"log"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stianeikeland/go-rpio"

	"dscheirer.com/timecircuits/button"
)

const (
	pollTime  = 10 * time.Millisecond
	pressTime = 2 * time.Second
	napTime   = 5 * time.Second
)

// BUTTON is the pin number
// RUNPROG is the thing to run on a long press
// PULLUP makes the button active low
func main() {
	pinS, pinSE := os.LookupEnv("BUTTON")
	progS, progSE := os.LookupEnv("RUNPROG")
	_, pullUp := os.LookupEnv("PULLUP")

	if !pinSE || !progSE {
		log.Fatalf("Must provide a BUTTON and RUNPROG in the environment: %s : %s\n", pinS, progS)
	}
	pin, err := strconv.ParseInt(pinS, 0, 64)
	if err != nil {
		log.Fatalf("%s is not a number", pinS)
	}
	if err := rpio.Open(); err != nil {
		log.Fatal(err.Error())
	}
	defer rpio.Close()

	rpioPin := rpio.Pin(pin)
	rpioPin.Input()
	if pullUp {
		rpioPin.PullUp() // GND => button press
	} else {
		rpioPin.PullDown() // +V -> button press
	}

	log.Printf("Watching %v (pullup %v)", pin, pullUp)
	watch(rpioPin, pullUp, clockwork.NewRealClock(), func() { run(progS) }, nil)
}

// watch calls onPress for every long press until quit is closed
func watch(in button.Input, activeLow bool, clock clockwork.Clock, onPress func(), quit <-chan struct{}) {
	pressed := false
	b := button.New(in, activeLow, clock)
	b.SetPressTime(pressTime)
	b.OnLongPressStart(func() { pressed = true })

	for {
		select {
		case <-quit:
			return
		default:
		}

		b.Tick()
		if pressed {
			pressed = false
			onPress()
			// take a nap after running the command
			clock.Sleep(napTime)
			b.Reset()
			continue
		}
		clock.Sleep(pollTime)
	}
}

func run(prog string) {
	log.Printf("Running %s\n", prog)
	out, err := exec.Command(prog).Output()
	if err != nil {
		log.Println(err.Error())
	}
	log.Printf("%s", out)
	log.Printf("Sleeping...")
}
