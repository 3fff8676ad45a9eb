package haptics

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// isNight reports whether now falls between local sunset and the next
// sunrise at the given coordinates. During polar day/night go-sunrise
// returns equal times for rise and set; we treat that as "no night" and
// never suppress, which errs on the side of delivering feedback.
func isNight(now time.Time, latitude, longitude float64) bool {
	rise, set := sunrise.SunriseSunset(latitude, longitude, now.Year(), now.Month(), now.Day())
	if rise.Equal(set) {
		return false
	}
	if now.Before(rise) {
		// After midnight, before dawn.
		return true
	}
	return now.After(set)
}
