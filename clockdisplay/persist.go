package clockdisplay

import (
	"dscheirer.com/timecircuits/eeprom"
)

func (this *Display) canSave() bool {
	return this.storage != nil && this.cfg.SaveAddress >= 0
}

// Save stores the shown date of a plain display, or the DST flag, year
// offset and time travel difference of the real time display.
func (this *Display) Save() bool {
	if !this.canSave() {
		return false
	}

	if !this.IsRTC() {
		var buf [eeprom.RecordLen]byte
		buf[0] = byte(this.year & 0xff)
		buf[1] = byte((this.year >> 8) & 0xff)
		buf[2] = byte(this.yearOffset & 0xff)
		buf[3] = byte((this.yearOffset >> 8) & 0xff)
		buf[4] = byte(this.month)
		buf[5] = byte(this.day)
		buf[6] = byte(this.hour)
		buf[7] = byte(this.minute)
		buf[9] = eeprom.Sum(buf[:9])
		return this.commit(buf[:], this.cfg.SaveAddress)
	}

	td := this.state.TimeDifference
	var buf [eeprom.RecordLen]byte
	buf[3] = byte(td >> 32)
	buf[4] = byte(td >> 24)
	buf[5] = byte(td >> 16)
	buf[6] = byte(td >> 8)
	buf[7] = byte(td)
	if this.state.TimeDiffUp {
		buf[8] = 1
	}
	return this.saveRTC(buf)
}

// SaveYOffs stores the year offset and DST flag of the real time
// display and clears the stored time travel difference.
func (this *Display) SaveYOffs() bool {
	if !this.IsRTC() || !this.canSave() {
		return false
	}
	var buf [eeprom.RecordLen]byte
	return this.saveRTC(buf)
}

func (this *Display) saveRTC(buf [eeprom.RecordLen]byte) bool {
	buf[0] = byte(this.isDST + 1)
	buf[1] = byte(this.yearOffset & 0xff)
	buf[2] = byte((this.yearOffset >> 8) & 0xff)
	buf[9] = eeprom.SumXOR(buf[:9])
	return this.commit(buf[:], this.cfg.SaveAddress)
}

func (this *Display) commit(buf []byte, addr int) bool {
	if _, err := this.storage.WriteAt(buf, int64(addr)); err != nil {
		this.debugf("save: %s", err.Error())
		return false
	}
	if err := this.storage.Commit(); err != nil {
		this.debugf("save: %s", err.Error())
		return false
	}
	return true
}

// SaveLastYear remembers year for the next boot. Writing the value
// already stored is skipped.
func (this *Display) SaveLastYear(year int) bool {
	if !this.IsRTC() || this.storage == nil {
		return false
	}
	if this.LoadLastYear() == year {
		return true
	}
	var buf [eeprom.LastYearLen]byte
	buf[0] = byte(year & 0xff)
	buf[1] = byte((year >> 8) & 0xff)
	buf[2] = buf[0] ^ 0xff
	buf[3] = buf[1] ^ 0xff
	return this.commit(buf[:], eeprom.LastYearAddr)
}

func (this *Display) read(buf []byte, addr int) bool {
	if _, err := this.storage.ReadAt(buf, int64(addr)); err != nil {
		this.debugf("load: %s", err.Error())
		return false
	}
	return true
}

func allZero(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}

// Load restores what Save stored. A non-negative initialBrightness
// becomes the level restored after night mode. Storage is never changed
// here, not even when the record is bad.
//
// A bad record on the real time display resets DST, offset and time
// difference to their defaults.
func (this *Display) Load(initialBrightness int) bool {
	if !this.canSave() {
		return false
	}

	if initialBrightness >= 0 {
		if initialBrightness > 15 {
			initialBrightness = 15
		}
		this.origBrightness = uint8(initialBrightness)
	}

	var buf [eeprom.RecordLen]byte
	ok := this.read(buf[:], this.cfg.SaveAddress)

	if !this.IsRTC() {
		// an all zero record would otherwise checksum fine
		if !ok || allZero(buf[:9]) || eeprom.Sum(buf[:9]) != buf[9] {
			this.debugf("invalid eeprom data")
			return false
		}
		this.SetYearOffset(int(int16(uint16(buf[3])<<8 | uint16(buf[2]))))
		this.SetYear(int(uint16(buf[1])<<8 | uint16(buf[0])))
		this.SetMonth(int(buf[4]))
		this.SetDay(int(buf[5]))
		this.SetHour(int(buf[6]))
		this.SetMinute(int(buf[7]))
		this.SetBrightness(this.origBrightness, false)
		return true
	}

	valid := ok && eeprom.SumXOR(buf[:9]) == buf[9]
	if valid {
		this.isDST = int(int8(buf[0])) - 1
		this.SetYearOffset(int(int16(uint16(buf[2])<<8 | uint16(buf[1]))))
		this.state.TimeDifference = uint64(buf[3])<<32 |
			uint64(buf[4])<<24 |
			uint64(buf[5])<<16 |
			uint64(buf[6])<<8 |
			uint64(buf[7])
		this.state.TimeDiffUp = buf[8] != 0
	} else {
		this.debugf("invalid rtc eeprom data")
		this.isDST = -1
		this.SetYearOffset(0)
		this.state.TimeDifference = 0
		this.state.TimeDiffUp = false
	}
	this.SetBrightness(this.origBrightness, false)
	return valid
}

// LoadYOffs returns the stored year offset without applying it, -1 when
// there is none.
func (this *Display) LoadYOffs() int {
	if !this.canSave() || !this.IsRTC() {
		return -1
	}
	var buf [eeprom.RecordLen]byte
	if !this.read(buf[:], this.cfg.SaveAddress) || eeprom.SumXOR(buf[:9]) != buf[9] {
		return -1
	}
	return int(int16(uint16(buf[2])<<8 | uint16(buf[1])))
}

// LoadDST returns the stored DST flag without applying it. -1 means
// invalid data, -2 that this display keeps no DST flag.
func (this *Display) LoadDST() int {
	if !this.canSave() || !this.IsRTC() {
		return -2
	}
	var buf [eeprom.RecordLen]byte
	if !this.read(buf[:], this.cfg.SaveAddress) || eeprom.SumXOR(buf[:9]) != buf[9] {
		return -1
	}
	return int(int8(buf[0])) - 1
}

// LoadLastYear returns the stored last year, -1 if invalid and -2 on a
// display other than the real time one.
func (this *Display) LoadLastYear() int {
	if !this.IsRTC() || this.storage == nil {
		return -2
	}
	var buf [eeprom.LastYearLen]byte
	if !this.read(buf[:], eeprom.LastYearAddr) {
		return -1
	}
	if buf[0] == buf[2]^0xff && buf[1] == buf[3]^0xff {
		return int(int16(uint16(buf[1])<<8 | uint16(buf[0])))
	}
	return -1
}
