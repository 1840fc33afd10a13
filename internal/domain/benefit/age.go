package benefit

import (
	"errors"
	"time"
)

const (
	MinRegistrationAge = 18
	RetirementAge      = 60

	minDOB = 19000101
	maxDOB = 21001231
)

var ErrInvalidDOB = errors.New("date of birth must be a real YYYYMMDD date between 1900-01-01 and 2100-12-31")

// ParseDOB validates a YYYYMMDD integer and returns the date at UTC midnight.
func ParseDOB(ymd int) (time.Time, error) {
	if ymd < minDOB || ymd > maxDOB {
		return time.Time{}, ErrInvalidDOB
	}
	y, m, d := ymd/10000, (ymd/100)%100, ymd%100
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 20230231 into March; reject anything that moved.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, ErrInvalidDOB
	}
	return t, nil
}

// YearAge is the birth-year difference used at registration.
func YearAge(ymd int, now time.Time) int {
	return now.UTC().Year() - ymd/10000
}

// AgeAt is the age in completed calendar years on now.
func AgeAt(dob, now time.Time) int {
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// Period identifies the calendar month of t as YYYYMM.
func Period(t time.Time) int {
	t = t.UTC()
	return t.Year()*100 + int(t.Month())
}
