package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "9:05pm", "23:20", "23:20am"
	clockWithMeridiem = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(am|pm)?\b`)
	// "9am", "12pm"
	hourWithMeridiem = regexp.MustCompile(`\b(\d{1,2})(am|pm)\b`)
	// "14:30"
	clock24 = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// ParseTime extracts a time of day from free text and returns it as 24-hour
// "HH:MM". Spaces are ignored, so "9:05 pm" and "9:05pm" are equivalent.
// Only the first pattern that matches is considered; if its values are out
// of range the result is absent.
func ParseTime(text string) (string, bool) {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "")

	if m := clockWithMeridiem.FindStringSubmatch(t); m != nil {
		return toHHMM(atoi(m[1]), atoi(m[2]), m[3])
	}
	if m := hourWithMeridiem.FindStringSubmatch(t); m != nil {
		return toHHMM(atoi(m[1]), 0, m[2])
	}
	if m := clock24.FindStringSubmatch(t); m != nil {
		return toHHMM(atoi(m[1]), atoi(m[2]), "")
	}
	return "", false
}

// toHHMM applies the 12-hour conversion and validates the result.
// An am suffix on an hour above 12 is ignored ("23:20am" is 23:20).
func toHHMM(hour, minute int, meridiem string) (string, bool) {
	switch {
	case meridiem != "" && hour == 12:
		if meridiem == "am" {
			hour = 0
		}
	case meridiem == "pm":
		hour += 12
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
