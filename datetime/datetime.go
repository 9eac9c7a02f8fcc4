// Package datetime converts between calendar dates and a running minute
// count starting at 0000-01-01 00:00 of the proleptic Gregorian calendar.
package datetime

import "time"

const (
	minsPerDay = 24 * 60
	daysPer400 = 146097
)

var mDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Date is a broken down date and time, minute resolution.
type Date struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in month 1..12 of year.
func DaysInMonth(month, year int) int {
	if month < 1 || month > 12 {
		return 31
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return mDays[month-1]
}

// days from 0000-01-01 to the first of january of year
func daysBeforeYear(year int) uint64 {
	y := uint64(year)
	return y*365 + (y+3)/4 - (y+99)/100 + (y+399)/400
}

func daysBeforeMonth(month, year int) uint64 {
	var d uint64
	for m := 1; m < month; m++ {
		d += uint64(DaysInMonth(m, year))
	}
	return d
}

// DateToMins returns the minutes elapsed since 0000-01-01 00:00.
// year must not be negative.
func DateToMins(year, month, day, hour, minute int) uint64 {
	days := daysBeforeYear(year) + daysBeforeMonth(month, year) + uint64(day-1)
	return days*minsPerDay + uint64(hour)*60 + uint64(minute)
}

// MinsToDate is the inverse of DateToMins.
func MinsToDate(total uint64) Date {
	var d Date
	days := total / minsPerDay
	rem := total % minsPerDay
	d.Hour = int(rem / 60)
	d.Minute = int(rem % 60)

	year := int(days * 400 / daysPer400)
	for year > 0 && daysBeforeYear(year) > days {
		year--
	}
	for daysBeforeYear(year+1) <= days {
		year++
	}
	d.Year = year
	days -= daysBeforeYear(year)

	month := 1
	for month < 12 {
		dim := uint64(DaysInMonth(month, year))
		if days < dim {
			break
		}
		days -= dim
		month++
	}
	d.Month = month
	d.Day = int(days) + 1
	return d
}

// Mins is DateToMins for a Date.
func (d Date) Mins() uint64 {
	return DateToMins(d.Year, d.Month, d.Day, d.Hour, d.Minute)
}

// FromTime drops the seconds and zone of t.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
}
