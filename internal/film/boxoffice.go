package film

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseBoxOffice reads strings such as "$1,234,567", "$2.5M" or "1.2B".
// Missing markers ("", "-", "N/A") and garbage return false.
func ParseBoxOffice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "", "-", "N/A":
		return 0, false
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	mult := 1.0
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "B"):
		mult = 1e9
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		mult = 1e6
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		mult = 1e3
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v * mult, true
}

// FormatBoxOffice renders 1234567890 as "$1.2B", 2500000 as "$2.5M",
// 1500 as "$1.5K" and 999 as "$999".
func FormatBoxOffice(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	}
	return fmt.Sprintf("$%.0f", v)
}

// ReadableBoxOffice formats a raw value, passing it through untouched
// when it cannot be parsed.
func ReadableBoxOffice(raw string) string {
	v, ok := ParseBoxOffice(raw)
	if !ok {
		return raw
	}
	return FormatBoxOffice(v)
}

// AgeOn returns full years between birth and now.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
