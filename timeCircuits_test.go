package main

import (
	"testing"
	"time"

	"gotest.tools/assert"

	"dscheirer.com/timecircuits/datetime"
	"dscheirer.com/timecircuits/font"
)

func shows(t *testing.T, r *testRig, d datetime.Date, which string) {
	var got datetime.Date
	switch which {
	case "dest":
		got = displayed(r.tc.dest)
	case "pres":
		got = displayed(r.tc.pres)
	case "last":
		got = displayed(r.tc.last)
	}
	assert.Equal(t, got, d, which)
}

func TestBeginDefaults(t *testing.T) {
	r := newTestRig(t, nil)

	shows(t, r, defaultDest, "dest")
	shows(t, r, defaultLast, "last")
	shows(t, r, datetime.FromTime(r.start), "pres")

	dest := r.displays[sDestAddr]
	assert.Assert(t, dest.isOn())
	assert.Equal(t, dest.level(), uint8(15))
	assert.Equal(t, dest.word(7), font.MakeNum(21))
	assert.Equal(t, dest.word(4), font.MakeNum(19))

	// speedo starts at 0 on the right of a 4 digit display
	speedo := r.displays[sSpeedoAddr]
	assert.Assert(t, speedo.isOn())
	assert.Equal(t, speedo.word(3), font.Generic7[0])
	assert.Equal(t, speedo.word(4), font.Generic7[0])
}

func TestEnterDate(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("070419761230#")
	shows(t, r, datetime.Date{Year: 1976, Month: 7, Day: 4, Hour: 12, Minute: 30}, "dest")
	assert.Equal(t, len(r.tc.entry), 0)

	// it was saved
	r2 := newTestRig(t, r.mem)
	shows(t, r2, datetime.Date{Year: 1976, Month: 7, Day: 4, Hour: 12, Minute: 30}, "dest")
}

func TestEnterButton(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("12252000")
	assert.Equal(t, string(r.tc.entry), "12252000")
	r.btn.press(100 * time.Millisecond)
	r.run(600 * time.Millisecond)
	shows(t, r, datetime.Date{Year: 2000, Month: 12, Day: 25, Hour: 1, Minute: 21}, "dest")
}

func TestEnterPartial(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("0915#")
	shows(t, r, datetime.Date{Year: 1985, Month: 10, Day: 26, Hour: 9, Minute: 15}, "dest")

	// wrong length is dropped
	r.tap("12345#")
	shows(t, r, datetime.Date{Year: 1985, Month: 10, Day: 26, Hour: 9, Minute: 15}, "dest")

	// clear throws away the entry
	r.tap("11")
	r.tap("*")
	assert.Equal(t, len(r.tc.entry), 0)

	// too long is cut at twelve
	r.tap("1231199923591")
	assert.Equal(t, string(r.tc.entry), "123119992359")
}

func TestEnterClamps(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("133220247599#")
	shows(t, r, datetime.Date{Year: 2024, Month: 12, Day: 31, Hour: 23, Minute: 59}, "dest")
}

func TestTimeTravel(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("102620150428#")
	r.hold(keyTravel)

	dest := datetime.Date{Year: 2015, Month: 10, Day: 26, Hour: 4, Minute: 28}
	start := datetime.FromTime(r.start)
	assert.Assert(t, r.tc.state.TimeDiffUp)
	assert.Equal(t, r.tc.state.TimeDifference, dest.Mins()-start.Mins())
	shows(t, r, dest, "pres")
	shows(t, r, start, "last")
	shows(t, r, dest, "dest")
	// the held zero is not an entry
	assert.Equal(t, len(r.tc.entry), 0)

	speedo := r.displays[sSpeedoAddr]
	assert.Equal(t, speedo.word(3), font.Generic7[8])
	assert.Equal(t, speedo.word(4), font.Generic7[8])

	// the present display keeps the difference
	r2 := newTestRig(t, r.mem)
	assert.Equal(t, r2.tc.state.TimeDifference, dest.Mins()-start.Mins())
	assert.Assert(t, r2.tc.state.TimeDiffUp)
	shows(t, r2, dest, "pres")
	shows(t, r2, start, "last")

	r.hold(keyReturn)
	assert.Equal(t, r.tc.state.TimeDifference, uint64(0))
	shows(t, r, start, "pres")
	shows(t, r, dest, "last")
	assert.Equal(t, speedo.word(4), font.Generic7[0])
}

func TestTimeTravelBack(t *testing.T) {
	r := newTestRig(t, nil)
	r.tap("110519550600#")
	r.hold(keyTravel)

	dest := datetime.Date{Year: 1955, Month: 11, Day: 5, Hour: 6, Minute: 0}
	assert.Assert(t, !r.tc.state.TimeDiffUp)
	assert.Equal(t, r.tc.state.TimeDifference, datetime.FromTime(r.start).Mins()-dest.Mins())
	shows(t, r, dest, "pres")
}

func TestAlarm(t *testing.T) {
	r := newTestRig(t, nil)
	target := r.start.Add(2 * time.Minute)
	hhmm := target.Format("1504")

	r.tap(hhmm)
	r.hold(keyAlarm)
	assert.Assert(t, r.tc.state.AlarmOnOff)
	assert.Equal(t, r.tc.state.AlarmHour, target.Hour())
	assert.Equal(t, r.tc.state.AlarmMinute, target.Minute())
	assert.Equal(t, len(r.tc.entry), 0)

	// the alarm dot on the present display
	r.run(time.Second)
	assert.Assert(t, r.displays[sPresAddr].word(7)&0x8000 != 0)

	r.runFor(3*time.Minute, 100*time.Millisecond)
	assert.Equal(t, r.tc.alarms, 1)

	// saved
	r2 := newTestRig(t, r.mem)
	assert.Assert(t, r2.tc.state.AlarmOnOff)
	assert.Equal(t, r2.tc.state.AlarmMinute, target.Minute())

	// held again without an entry switches it off
	r.hold(keyAlarm)
	assert.Assert(t, !r.tc.state.AlarmOnOff)
	r.run(time.Second)
	assert.Equal(t, r.displays[sPresAddr].word(7)&0x8000, uint16(0))
}

func TestAlarmNotSet(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(keyAlarm)
	assert.Assert(t, !r.tc.state.AlarmOnOff)
	assert.Assert(t, !r.tc.state.AlarmSet())
}

func TestNightMode(t *testing.T) {
	r := newTestRig(t, nil)
	r.btn.press(time.Second)
	r.run(1200 * time.Millisecond)

	assert.Assert(t, r.tc.nightMode)
	assert.Assert(t, r.tc.dest.NightMode())
	assert.Equal(t, r.displays[sDestAddr].level(), uint8(0))
	assert.Equal(t, r.displays[sSpeedoAddr].level(), uint8(0))

	r.btn.press(time.Second)
	r.run(1200 * time.Millisecond)
	assert.Assert(t, !r.tc.nightMode)
	assert.Equal(t, r.displays[sDestAddr].level(), uint8(15))
	assert.Equal(t, r.displays[sSpeedoAddr].level(), uint8(15))
}

func TestColonBlink(t *testing.T) {
	r := newTestRig(t, nil)
	pres := r.displays[sPresAddr]
	var seen [2]bool
	for i := 0; i < 4; i++ {
		r.run(500 * time.Millisecond)
		seen[(pres.word(4)&0x8080)>>7&1] = true
	}
	assert.Assert(t, seen[0] && seen[1])
}

func TestLampTest(t *testing.T) {
	r := newTestRig(t, nil)
	done := make(chan struct{})
	go func() {
		r.tc.lampTest(time.Second)
		close(done)
	}()
	r.clock.BlockUntil(1)
	for _, ld := range r.displays {
		assert.Equal(t, ld.word(0), uint16(0xffff))
	}
	r.clock.Advance(time.Second)
	<-done
	for _, ld := range r.displays {
		assert.Equal(t, ld.word(0), uint16(0))
	}
}

func TestRunLoop(t *testing.T) {
	r := newTestRig(t, nil)
	wg.Add(1)
	go runTimeCircuits(r.tc)
	r.clock.BlockUntil(1)
	r.rt.comms.shutdown()
	r.rt.comms.shutdown()
	r.clock.Advance(time.Second)
	wg.Wait()
}
