package main

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/assert"
)

func TestSettingsFile(t *testing.T) {
	s := testSettings

	assert.Equal(t, s.GetByte(sDestAddr), byte(0x71))
	assert.Equal(t, s.GetByte(sPresAddr), byte(114))
	assert.Equal(t, s.GetInt(sSpeedoType), 1)
	assert.Equal(t, s.GetBool(sI2CSim), true)
	assert.Equal(t, s.GetBool(sMode24), false)
	assert.Equal(t, s.GetDuration(sHoldTime), 500*time.Millisecond)
	// defaults
	assert.Equal(t, s.GetByte(sLastAddr), byte(0x74))
	assert.Equal(t, s.GetInt(sDestBright), 15)
	assert.Equal(t, s.GetString(sButtonSim), "e")
	// wrong type
	assert.Equal(t, s.GetDuration(sDestAddr), time.Duration(-1))
	assert.Equal(t, s.GetString(sDestAddr), "")
}

func TestSettingsErrors(t *testing.T) {
	for _, data := range []string{
		`{"speedoType": "abc"}`,
		`{"destAddr": 300}`,
		`{"holdTime": "forever"}`,
		`{"mode24": "maybe"}`,
	} {
		s := defaultSettings()
		assert.Assert(t, s.settingsFromJSON([]byte(data)) != nil, data)
	}

	_, err := initSettings("./test/missing.conf")
	assert.ErrorContains(t, err, "missing.conf")

	s, err := initSettings("")
	assert.NilError(t, err)
	assert.Equal(t, s.GetByte(sKeypadAddr), byte(0x20))
}

func TestLoadSettingsFlags(t *testing.T) {
	s, err := loadSettings(options{configFile: cfgFile, sim: true, debug: true})
	assert.NilError(t, err)
	assert.Assert(t, s.GetBool(sDebug))
	assert.Assert(t, s.GetBool(sI2CSim))
	s.Dump()
}

func TestSetupLogging(t *testing.T) {
	dir, err := ioutil.TempDir("", "tcd")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	s := defaultSettings()
	s.Set(sLogFile, filepath.Join(dir, "tcd.log"))
	w, err := setupLogging(s, false)
	assert.NilError(t, err)
	log.Printf("hello")
	(&ThreadLogger{name: "Test"}).Println("from", "logger")
	w.Close()
	log.SetOutput(os.Stderr)

	data, err := ioutil.ReadFile(filepath.Join(dir, "tcd.log"))
	assert.NilError(t, err)
	assert.Assert(t, len(data) > 0)

	s.Set(sLogFile, filepath.Join(dir, "nope", "tcd.log"))
	_, err = setupLogging(s, false)
	assert.ErrorContains(t, err, "log file")
	log.SetOutput(os.Stderr)
}
