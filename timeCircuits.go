package main

import (
	"fmt"
	"strconv"
	"time"

	"dscheirer.com/timecircuits/button"
	"dscheirer.com/timecircuits/clockdisplay"
	"dscheirer.com/timecircuits/datetime"
	"dscheirer.com/timecircuits/eeprom"
	"dscheirer.com/timecircuits/keypad"
	"dscheirer.com/timecircuits/speeddisplay"
	"dscheirer.com/timecircuits/tcstate"
)

// what the displays show before anything was saved
var (
	defaultDest = datetime.Date{Year: 1985, Month: 10, Day: 26, Hour: 1, Minute: 21}
	defaultLast = datetime.Date{Year: 1955, Month: 11, Day: 5, Hour: 6, Minute: 0}
)

const maxEntry = len("MMDDYYYYHHMM")

// keypad keys
const (
	keyEnter  = '#'
	keyClear  = '*'
	keyTravel = '0'
	keyAlarm  = '1'
	keyReturn = '*'
)

// tcBus is the i2c bus shared by every device
type tcBus interface {
	Tx(addr uint16, w, r []byte) error
}

type timeCircuits struct {
	rt     runtimeConfig
	logger flogger
	state  *tcstate.State

	dest   *clockdisplay.Display
	pres   *clockdisplay.Display
	last   *clockdisplay.Display
	speedo *speeddisplay.Display
	keypad *keypad.Keypad
	enter  *button.Button

	entry      []byte
	held       byte
	nightMode  bool
	lastSecond int
	alarmMins  uint64
	alarms     int
}

func newTimeCircuits(rt runtimeConfig, bus tcBus, storage eeprom.Storage, enterIn button.Input) (*timeCircuits, error) {
	settings := rt.settings
	state := tcstate.New(storage, settings.GetString(sAlarmPath))

	tc := &timeCircuits{
		rt:         rt,
		logger:     &ThreadLogger{name: "TimeCircuits"},
		state:      state,
		lastSecond: -1,
	}

	display := func(id clockdisplay.ID, addrKey string, saveAddr int, rtc bool) *clockdisplay.Display {
		d := clockdisplay.New(bus, clockdisplay.Config{
			ID:          id,
			Address:     uint16(settings.GetByte(addrKey)),
			SaveAddress: saveAddr,
			RTC:         rtc,
		}, state, storage)
		d.SetDebug(settings.GetBool(sDebug))
		d.DebugDump(settings.GetBool(sDebug))
		d.Set1224(settings.GetBool(sMode24))
		d.SetNMOff(settings.GetBool(sNightModeOff))
		return d
	}
	tc.dest = display(clockdisplay.Dest, sDestAddr, eeprom.DestAddr, false)
	tc.pres = display(clockdisplay.Pres, sPresAddr, eeprom.PresAddr, true)
	tc.last = display(clockdisplay.Last, sLastAddr, eeprom.LastAddr, false)

	tc.speedo = speeddisplay.New(bus, uint16(settings.GetByte(sSpeedoAddr)))
	tc.speedo.SetDebug(settings.GetBool(sDebug))
	tc.speedo.DebugDump(settings.GetBool(sDebug))

	kcfg := keypad.DefaultConfig()
	kcfg.Address = uint16(settings.GetByte(sKeypadAddr))
	kp, err := keypad.New(bus, kcfg, rt.clock)
	if err != nil {
		return nil, err
	}
	kp.SetDebug(settings.GetBool(sDebug))
	kp.SetScanInterval(settings.GetDuration(sScanInterval))
	kp.SetHoldTime(settings.GetDuration(sHoldTime))
	kp.SetListener(tc)
	tc.keypad = kp

	tc.enter = button.New(enterIn, true, rt.clock)
	tc.enter.OnClick(tc.enterDate)
	tc.enter.OnLongPressStart(tc.toggleNightMode)

	return tc, nil
}

// begin brings up the hardware and restores what was saved
func (tc *timeCircuits) begin() error {
	settings := tc.rt.settings

	for _, d := range []*clockdisplay.Display{tc.dest, tc.pres, tc.last} {
		if err := d.Begin(); err != nil {
			return err
		}
	}
	if err := tc.speedo.Begin(speeddisplay.Type(settings.GetInt(sSpeedoType))); err != nil {
		return err
	}
	if err := tc.keypad.Begin(); err != nil {
		return err
	}

	if !tc.dest.Load(settings.GetInt(sDestBright)) {
		tc.logger.Println("no saved destination time, using defaults")
		tc.dest.SetDateTime(defaultDest)
		tc.dest.SetBrightness(uint8(settings.GetInt(sDestBright)), true)
	}
	if !tc.last.Load(settings.GetInt(sLastBright)) {
		tc.logger.Println("no saved last time departed, using defaults")
		tc.last.SetDateTime(defaultLast)
		tc.last.SetBrightness(uint8(settings.GetInt(sLastBright)), true)
	}
	if !tc.pres.Load(settings.GetInt(sPresBright)) {
		tc.logger.Println("no saved time travel, showing real time")
	}
	if !tc.state.LoadAlarm() {
		tc.logger.Println("no saved alarm")
	}

	tc.speedo.SetBrightness(uint8(settings.GetInt(sSpeedoBright)), true)
	tc.speedo.SetSpeed(0)
	tc.speedo.Show()

	tc.dest.Show()
	tc.last.Show()
	tc.refreshPresent(tc.rt.clock.Now())
	return nil
}

// poll runs one pass of the main loop
func (tc *timeCircuits) poll() {
	tc.keypad.Scan()
	tc.enter.Tick()

	now := tc.rt.clock.Now()
	if now.Second() != tc.lastSecond {
		tc.lastSecond = now.Second()
		tc.refreshPresent(now)
		tc.checkAlarm(now)
	}
}

func (tc *timeCircuits) refreshPresent(now time.Time) {
	tc.pres.SetDateTimeDiff(datetime.FromTime(now))
	tc.pres.SetColon(now.Second()%2 == 0)
	tc.pres.Show()
}

func (tc *timeCircuits) checkAlarm(now time.Time) {
	if !tc.state.AlarmOnOff || !tc.state.AlarmSet() {
		return
	}
	if now.Hour() != tc.state.AlarmHour || now.Minute() != tc.state.AlarmMinute {
		return
	}
	mins := datetime.FromTime(now).Mins()
	if mins == tc.alarmMins {
		return
	}
	tc.alarmMins = mins
	tc.alarms++
	tc.logger.Printf("alarm %02d:%02d", tc.state.AlarmHour, tc.state.AlarmMinute)
}

// KeyEvent handles the keypad. Digits and enter act on release, unless
// the key was held for one of the hold functions.
func (tc *timeCircuits) KeyEvent(key byte, state keypad.State) {
	switch state {
	case keypad.Hold:
		tc.held = key
		switch key {
		case keyTravel:
			tc.timeTravel()
		case keyAlarm:
			tc.setAlarm()
		case keyReturn:
			tc.returnToPresent()
		}
	case keypad.Released:
		if tc.held == key {
			tc.held = 0
			return
		}
		switch {
		case key >= '0' && key <= '9':
			tc.addDigit(key)
		case key == keyClear:
			tc.clearEntry()
		case key == keyEnter:
			tc.enterDate()
		}
	}
}

func (tc *timeCircuits) addDigit(key byte) {
	if len(tc.entry) >= maxEntry {
		return
	}
	tc.entry = append(tc.entry, key)
	tc.dest.ShowTextDirect(string(tc.entry), false)
}

func (tc *timeCircuits) clearEntry() {
	tc.entry = tc.entry[:0]
	tc.dest.Show()
}

func atoi(s []byte) int {
	n, _ := strconv.Atoi(string(s))
	return n
}

// enterDate takes MMDDYYYYHHMM, MMDDYYYY or HHMM from the keypad and
// puts it on the destination display
func (tc *timeCircuits) enterDate() {
	e := tc.entry
	defer tc.clearEntry()

	dt := datetime.Date{
		Year:   tc.dest.Year(),
		Month:  tc.dest.Month(),
		Day:    tc.dest.Day(),
		Hour:   tc.dest.Hour(),
		Minute: tc.dest.Minute(),
	}
	switch len(e) {
	case 12:
		dt.Hour, dt.Minute = atoi(e[8:10]), atoi(e[10:12])
		fallthrough
	case 8:
		dt.Month, dt.Day, dt.Year = atoi(e[0:2]), atoi(e[2:4]), atoi(e[4:8])
	case 4:
		dt.Hour, dt.Minute = atoi(e[0:2]), atoi(e[2:4])
	default:
		tc.logger.Printf("bad date entry %q", string(e))
		return
	}

	// day after month and year
	tc.dest.SetYear(dt.Year)
	tc.dest.SetMonth(dt.Month)
	tc.dest.SetDay(dt.Day)
	tc.dest.SetHour(dt.Hour)
	tc.dest.SetMinute(dt.Minute)
	tc.dest.Save()
	tc.logger.Printf("destination %s", tc.describe(tc.dest))
}

func (tc *timeCircuits) describe(d *clockdisplay.Display) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute())
}

func displayed(d *clockdisplay.Display) datetime.Date {
	return datetime.Date{Year: d.Year(), Month: d.Month(), Day: d.Day(), Hour: d.Hour(), Minute: d.Minute()}
}

// timeTravel makes the destination time the present, and the old
// present the last time departed
func (tc *timeCircuits) timeTravel() {
	tc.entry = tc.entry[:0]

	tc.last.SetDateTime(displayed(tc.pres))
	tc.last.Save()

	now := datetime.FromTime(tc.rt.clock.Now()).Mins()
	dest := displayed(tc.dest).Mins()
	if dest >= now {
		tc.state.TimeDiffUp = true
		tc.state.TimeDifference = dest - now
	} else {
		tc.state.TimeDiffUp = false
		tc.state.TimeDifference = now - dest
	}
	tc.pres.Save()
	tc.logger.Printf("time travel to %s", tc.describe(tc.dest))

	tc.speedo.SetSpeed(88)
	tc.speedo.Show()
	tc.dest.Show()
	tc.last.ShowAnimate1()
	tc.last.ShowAnimate2()
	tc.refreshPresent(tc.rt.clock.Now())
}

func (tc *timeCircuits) returnToPresent() {
	if tc.state.TimeDifference == 0 {
		return
	}
	tc.last.SetDateTime(displayed(tc.pres))
	tc.last.Save()
	tc.state.TimeDifference = 0
	tc.state.TimeDiffUp = false
	tc.pres.Save()
	tc.logger.Println("back to the present")

	tc.speedo.SetSpeed(0)
	tc.speedo.Show()
	tc.last.Show()
	tc.refreshPresent(tc.rt.clock.Now())
}

// setAlarm arms the alarm at an entered HHMM, or switches a set alarm
// on and off
func (tc *timeCircuits) setAlarm() {
	switch {
	case len(tc.entry) == 4:
		h, m := atoi(tc.entry[0:2]), atoi(tc.entry[2:4])
		if h > 23 {
			h = 23
		}
		if m > 59 {
			m = 59
		}
		tc.state.AlarmHour, tc.state.AlarmMinute = h, m
		tc.state.AlarmOnOff = true
	case tc.state.AlarmSet():
		tc.state.AlarmOnOff = !tc.state.AlarmOnOff
	default:
		tc.logger.Println("no alarm time entered")
		return
	}
	tc.clearEntry()

	if err := tc.state.SaveAlarm(); err != nil {
		tc.logger.Println(err.Error())
	}
	tc.logger.Printf("alarm %02d:%02d on: %v", tc.state.AlarmHour, tc.state.AlarmMinute, tc.state.AlarmOnOff)
	tc.refreshPresent(tc.rt.clock.Now())
}

func (tc *timeCircuits) toggleNightMode() {
	tc.nightMode = !tc.nightMode
	tc.logger.Printf("night mode %v", tc.nightMode)

	for _, d := range []*clockdisplay.Display{tc.dest, tc.pres, tc.last} {
		d.SetNightMode(tc.nightMode)
	}
	tc.speedo.SetNightMode(tc.nightMode)

	tc.dest.Show()
	tc.last.Show()
	tc.speedo.Show()
	tc.refreshPresent(tc.rt.clock.Now())
}

// lampTest lights every segment of every display for d
func (tc *timeCircuits) lampTest(d time.Duration) {
	for _, cd := range []*clockdisplay.Display{tc.dest, tc.pres, tc.last} {
		cd.RealLampTest()
	}
	tc.speedo.LampTest()
	tc.rt.clock.Sleep(d)
	for _, cd := range []*clockdisplay.Display{tc.dest, tc.pres, tc.last} {
		cd.ClearDisplay()
	}
	tc.speedo.ClearDisplay()
}

func runTimeCircuits(tc *timeCircuits) {
	defer wg.Done()
	defer func() {
		tc.logger.Println("exiting runTimeCircuits")
	}()

	sleep := tc.rt.settings.GetDuration(sLoopSleep)
	for {
		select {
		case <-tc.rt.comms.quit:
			return
		default:
		}

		tc.poll()
		tc.rt.clock.Sleep(sleep)
	}
}
