package auth

import "time"

// AdultAge is the age from which restricted products are visible.
const AdultAge = 18

// Age returns the number of full years between dob and now.
func Age(dob, now time.Time) int {
	dob = dob.UTC()
	now = now.UTC()
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// IsMinor reports whether a user born on dob is younger than AdultAge at now.
func IsMinor(dob, now time.Time) bool {
	return Age(dob, now) < AdultAge
}
