package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// setting names
const (
	sI2CBus       = "i2c_bus"
	sI2CSim       = "i2c_simulated"
	sDebug        = "debug_dump"
	sLogFile      = "logFile"
	sEEPROM       = "eepromPath"
	sAlarmPath    = "alarmPath"
	sDestAddr     = "destAddr"
	sPresAddr     = "presAddr"
	sLastAddr     = "lastAddr"
	sSpeedoAddr   = "speedoAddr"
	sSpeedoType   = "speedoType"
	sKeypadAddr   = "keypadAddr"
	sDestBright   = "destBright"
	sPresBright   = "presBright"
	sLastBright   = "lastBright"
	sSpeedoBright = "speedoBright"
	sMode24       = "mode24"
	sNightModeOff = "nightModeOff"
	sButtonPin    = "buttonPin"
	sButtonSim    = "buttonSim"
	sScanInterval = "scanInterval"
	sHoldTime     = "holdTime"
	sLoopSleep    = "loopSleep"
)

type configSettings interface {
	GetString(key string) string
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	GetByte(key string) byte
	GetInt(key string) int
	Set(key string, val interface{})
	Dump()
}

// keep settings generic, type-convert on the fly
type settings struct {
	settings map[string]interface{}
}

func defaultSettings() *settings {
	s := make(map[string]interface{})

	// setting the type here makes the conversion "automatic" later
	s[sI2CBus] = ""
	s[sDebug] = false
	s[sLogFile] = "/var/log/tcd.log"
	s[sEEPROM] = "/etc/default/tcd/eeprom.bin"
	s[sAlarmPath] = ""
	s[sDestAddr] = byte(0x71)
	s[sPresAddr] = byte(0x72)
	s[sLastAddr] = byte(0x74)
	s[sSpeedoAddr] = byte(0x70)
	s[sSpeedoType] = 0
	s[sKeypadAddr] = byte(0x20)
	s[sDestBright] = 15
	s[sPresBright] = 15
	s[sLastBright] = 15
	s[sSpeedoBright] = 15
	s[sMode24] = false
	s[sNightModeOff] = false
	s[sButtonPin] = 27
	s[sButtonSim] = "e"
	s[sScanInterval], _ = time.ParseDuration("10ms")
	s[sHoldTime], _ = time.ParseDuration("500ms")
	s[sLoopSleep], _ = time.ParseDuration("5ms")

	on := true
	if runtime.GOARCH == "arm" || runtime.GOARCH == "arm64" {
		on = false
	}
	s[sI2CSim] = on

	return &settings{settings: s}
}

func (s *settings) settingsFromJSON(data []byte) error {
	tmp := defaultSettings()
	for k, initVal := range tmp.settings {
		// ignore missing fields
		_, dataType, _, err := jsonparser.Get(data, k)
		if err != nil || dataType == jsonparser.NotExist {
			log.Printf("Skipping key %s", k)
			continue
		}

		switch initVal.(type) {
		case uint8:
			var val int64
			val, err = getNumber(data, k)
			if err == nil {
				if val < 0 || val > 0xff {
					err = fmt.Errorf("%s: %d out of range", k, val)
				} else {
					s.settings[k] = byte(val)
				}
			}
		case int:
			var val int64
			val, err = getNumber(data, k)
			if err == nil {
				s.settings[k] = int(val)
			}
		case bool:
			var bVal bool
			bVal, err = jsonparser.GetBoolean(data, k)
			if err != nil {
				// try "true" and "false"
				str, _ := jsonparser.GetString(data, k)
				switch strings.ToLower(str) {
				case "true":
					bVal, err = true, nil
				case "false":
					bVal, err = false, nil
				}
			}
			if err == nil {
				s.settings[k] = bVal
			}
		case time.Duration:
			var dur string
			dur, err = jsonparser.GetString(data, k)
			if err == nil {
				var dur2 time.Duration
				dur2, err = time.ParseDuration(dur)
				if err == nil {
					s.settings[k] = dur2
				}
			}
		case string:
			s.settings[k], err = jsonparser.GetString(data, k)
		default:
			err = fmt.Errorf("Bad type: %T", initVal)
		}
		if err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	return nil
}

// numbers may also come as strings, "0x71" included
func getNumber(data []byte, key string) (int64, error) {
	val, err := jsonparser.GetInt(data, key)
	if err == nil {
		return val, nil
	}
	str, err2 := jsonparser.GetString(data, key)
	if err2 != nil {
		return 0, err
	}
	return strconv.ParseInt(str, 0, 64)
}

func initSettings(configFile string) (configSettings, error) {
	log.Println("initSettings")

	// defaults
	s := defaultSettings()
	if configFile == "" {
		return s, nil
	}

	// try to open the config file
	data, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not load conf file '%s': %w", configFile, err)
	}

	log.Printf("Reading configuration from '%s'", configFile)

	if err := s.settingsFromJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settings) Set(key string, val interface{}) {
	s.settings[key] = val
}

func (s *settings) GetString(key string) string {
	switch v := s.settings[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func (s *settings) GetBool(key string) bool {
	switch v := s.settings[key].(type) {
	case bool:
		return v
	default:
		return false
	}
}

func (s *settings) GetDuration(key string) time.Duration {
	switch v := s.settings[key].(type) {
	case time.Duration:
		return v
	default:
		return -1
	}
}

func (s *settings) GetByte(key string) byte {
	switch v := s.settings[key].(type) {
	case byte:
		return v
	case int: // cast to byte
		return byte(v)
	default:
		return 0
	}
}

func (s *settings) GetInt(key string) int {
	switch v := s.settings[key].(type) {
	case int:
		return v
	case byte:
		return int(v)
	default:
		return 0
	}
}

func (s *settings) Dump() {
	keys := make([]string, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.settings[k]
		log.Printf("%s : %T: %v\n", k, v, v)
	}
}
