// Package tcstate holds the state shared by the displays and the
// application loop: the time travel offset and the alarm.
package tcstate

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/buger/jsonparser"

	"dscheirer.com/timecircuits/eeprom"
)

// AlarmUnset is stored in the hour and minute of an alarm never set.
const AlarmUnset = 255

const (
	keyAlarmOnOff = "alarmonoff"
	keyAlarmHour  = "alarmhour"
	keyAlarmMin   = "alarmmin"
)

// State is owned by the application and handed to whatever needs it.
type State struct {
	// minutes between real time and the present time display
	TimeDifference uint64
	// true when the present time is ahead of real time
	TimeDiffUp bool

	AlarmOnOff  bool
	AlarmHour   int
	AlarmMinute int

	// when set, the alarm lives in this json file instead of the eeprom
	AlarmPath string
	Storage   eeprom.Storage
}

func New(storage eeprom.Storage, alarmPath string) *State {
	return &State{
		AlarmHour:   AlarmUnset,
		AlarmMinute: AlarmUnset,
		AlarmPath:   alarmPath,
		Storage:     storage,
	}
}

// LoadAlarm reads the alarm. It returns true when a complete alarm was
// found. A missing or incomplete alarm file is rewritten from the
// current values.
func (s *State) LoadAlarm() bool {
	if s.AlarmPath == "" {
		return s.loadAlarmEEPROM()
	}

	data, err := ioutil.ReadFile(s.AlarmPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("loadAlarm: %s", err.Error())
		}
		s.writeDefaultAlarm()
		return false
	}

	complete := true
	if v, ok := alarmField(data, keyAlarmOnOff); ok {
		s.AlarmOnOff = v != 0
	} else {
		complete = false
	}
	if v, ok := alarmField(data, keyAlarmHour); ok {
		s.AlarmHour = v
	} else {
		complete = false
	}
	if v, ok := alarmField(data, keyAlarmMin); ok {
		s.AlarmMinute = v
	} else {
		complete = false
	}

	if !complete {
		s.writeDefaultAlarm()
	}
	return complete
}

func (s *State) writeDefaultAlarm() {
	log.Println("loadAlarm: alarm settings missing or incomplete, writing new file")
	if err := s.SaveAlarm(); err != nil {
		log.Println(err.Error())
	}
}

// values are stored as strings, a plain number is tolerated as well
func alarmField(data []byte, key string) (int, bool) {
	if str, err := jsonparser.GetString(data, key); err == nil {
		v, err := strconv.Atoi(str)
		return v, err == nil
	}
	if v, err := jsonparser.GetInt(data, key); err == nil {
		return int(v), true
	}
	return 0, false
}

func (s *State) loadAlarmEEPROM() bool {
	var buf [eeprom.AlarmLen]byte
	if _, err := s.Storage.ReadAt(buf[:], eeprom.AlarmAddr); err != nil || eeprom.SumXOR(buf[:3]) != buf[3] {
		log.Println("loadAlarm: invalid alarm data in eeprom")
		s.AlarmOnOff = false
		s.AlarmHour = AlarmUnset
		s.AlarmMinute = AlarmUnset
		return false
	}
	s.AlarmOnOff = buf[0] != 0
	s.AlarmHour = int(buf[1])
	s.AlarmMinute = int(buf[2])
	return true
}

// SaveAlarm persists the alarm where LoadAlarm looks for it.
func (s *State) SaveAlarm() error {
	if s.AlarmPath == "" {
		return s.saveAlarmEEPROM()
	}

	onoff := "0"
	if s.AlarmOnOff {
		onoff = "1"
	}
	data := []byte("{}")
	var err error
	for _, kv := range [][2]string{
		{keyAlarmOnOff, onoff},
		{keyAlarmHour, strconv.Itoa(s.AlarmHour)},
		{keyAlarmMin, strconv.Itoa(s.AlarmMinute)},
	} {
		data, err = jsonparser.Set(data, []byte(strconv.Quote(kv[1])), kv[0])
		if err != nil {
			return fmt.Errorf("saveAlarm: %w", err)
		}
	}
	if err := ioutil.WriteFile(s.AlarmPath, data, 0o644); err != nil {
		return fmt.Errorf("saveAlarm: %w", err)
	}
	return nil
}

func (s *State) saveAlarmEEPROM() error {
	var buf [eeprom.AlarmLen]byte
	if s.AlarmOnOff {
		buf[0] = 1
	}
	buf[1] = uint8(s.AlarmHour)
	buf[2] = uint8(s.AlarmMinute)
	buf[3] = eeprom.SumXOR(buf[:3])
	if _, err := s.Storage.WriteAt(buf[:], eeprom.AlarmAddr); err != nil {
		return fmt.Errorf("saveAlarm: %w", err)
	}
	return s.Storage.Commit()
}

// AlarmSet is true once hour and minute hold a real time.
func (s *State) AlarmSet() bool {
	return s.AlarmHour >= 0 && s.AlarmHour <= 23 && s.AlarmMinute >= 0 && s.AlarmMinute <= 59
}
