package models

import (
	"fmt"
	"regexp"
	"time"
)

var (
	dateRe  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	clockRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ParseDate проверяет дату ДД.ММ.ГГГГ, включая существование дня в календаре.
func ParseDate(s string) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("date %q does not match DD.MM.YYYY", s)
	}
	return time.Parse(DateLayout, s)
}

// ParseClock проверяет время ЧЧ:ММ.
func ParseClock(s string) (time.Time, error) {
	if !clockRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("time %q does not match HH:MM", s)
	}
	return time.Parse(ClockLayout, s)
}

// AppointmentTime собирает момент визита в часовом поясе салона.
func AppointmentTime(dateText, timeText string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if _, err := ParseDate(dateText); err != nil {
		return time.Time{}, err
	}
	if _, err := ParseClock(timeText); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(DateLayout+" "+ClockLayout, dateText+" "+timeText, loc)
}
