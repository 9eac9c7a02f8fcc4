// Package button turns a single debounced input into click and long
// press events.
package button

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stianeikeland/go-rpio"
)

const (
	DefaultDebounce  = 50 * time.Millisecond
	DefaultClickTime = 400 * time.Millisecond
	DefaultPressTime = 800 * time.Millisecond
)

// Input is a pin level, rpio.Pin is one.
type Input interface {
	Read() rpio.State
}

type state int

const (
	stateInit state = iota
	stateDown
	stateUp
	stateCount
	statePress
	statePressEnd
)

type Button struct {
	in          Input
	activeLevel rpio.State
	clock       clockwork.Clock

	debounce  time.Duration
	clickTime time.Duration
	pressTime time.Duration
	maxClicks int

	state     state
	lastState state
	nClicks   int
	startTime time.Time

	onClick      func()
	onPressStart func()
	onPressStop  func()
}

// New watches in, which reads low when pressed if activeLow is set.
// in may be nil when levels come from TickLevel.
func New(in Input, activeLow bool, clock clockwork.Clock) *Button {
	this := &Button{
		in:          in,
		activeLevel: rpio.High,
		clock:       clock,
		debounce:    DefaultDebounce,
		clickTime:   DefaultClickTime,
		pressTime:   DefaultPressTime,
		maxClicks:   1,
	}
	if activeLow {
		this.activeLevel = rpio.Low
	}
	return this
}

func (this *Button) SetDebounce(d time.Duration) {
	this.debounce = d
}

// SetClickTime is how long to wait for another press before a click
// is reported.
func (this *Button) SetClickTime(d time.Duration) {
	this.clickTime = d
}

func (this *Button) SetPressTime(d time.Duration) {
	this.pressTime = d
}

// SetMaxClicks reports the click right away once n presses were counted.
func (this *Button) SetMaxClicks(n int) {
	this.maxClicks = n
}

func (this *Button) OnClick(f func()) {
	this.onClick = f
}

func (this *Button) OnLongPressStart(f func()) {
	this.onPressStart = f
}

func (this *Button) OnLongPressStop(f func()) {
	this.onPressStop = f
}

func (this *Button) Reset() {
	this.state = stateInit
	this.lastState = stateInit
	this.nClicks = 0
	this.startTime = time.Time{}
}

// Tick reads the input and runs the state machine.
func (this *Button) Tick() {
	if this.in == nil {
		return
	}
	this.TickLevel(this.in.Read() == this.activeLevel)
}

func (this *Button) newState(next state) {
	this.lastState = this.state
	this.state = next
}

// TickLevel runs the state machine with the given level.
func (this *Button) TickLevel(active bool) {
	now := this.clock.Now()
	wait := now.Sub(this.startTime)

	switch this.state {
	case stateInit:
		if active {
			this.newState(stateDown)
			this.startTime = now
			this.nClicks = 0
		}

	case stateDown:
		switch {
		case !active && wait < this.debounce:
			// bounce
			this.newState(this.lastState)
		case !active:
			this.newState(stateUp)
			this.startTime = now
		case wait > this.pressTime:
			fire(this.onPressStart)
			this.newState(statePress)
		}

	case stateUp:
		switch {
		case active && wait < this.debounce:
			this.newState(this.lastState)
		case wait >= this.debounce:
			this.nClicks++
			this.newState(stateCount)
		}

	case stateCount:
		switch {
		case active:
			this.newState(stateDown)
			this.startTime = now
		case wait > this.clickTime || this.nClicks == this.maxClicks:
			fire(this.onClick)
			this.Reset()
		}

	case statePress:
		if !active {
			this.newState(statePressEnd)
			this.startTime = now
		}

	case statePressEnd:
		switch {
		case active && wait < this.debounce:
			this.newState(this.lastState)
		case wait >= this.debounce:
			fire(this.onPressStop)
			this.Reset()
		}

	default:
		this.newState(stateInit)
	}
}

func fire(f func()) {
	if f != nil {
		f()
	}
}
