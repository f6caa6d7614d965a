package dialog

import (
	"strconv"
	"strings"
	"time"
)

// parse.go holds the text-to-value parsers shared by the wizard steps. All
// of them reject bad input with a *ValidationError so the caller can
// reprompt instead of failing the wizard.

// ParseAmount parses a non-negative monetary amount. Both "." and "," are
// accepted as the decimal separator.
func ParseAmount(raw string) (float64, error) {
	return parseNonNegative(raw, "amount")
}

// ParseHours parses a non-negative hour count, decimal separators as in
// ParseAmount.
func ParseHours(raw string) (float64, error) {
	return parseNonNegative(raw, "hours")
}

func parseNonNegative(raw, what string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalidf("%q is not a number", raw)
	}
	if n < 0 {
		return 0, invalidf("%s must not be negative", what)
	}
	return n, nil
}

// ParseDate parses "DD.MM" or "DD.MM.YYYY". A date without a year uses the
// year of now. The parsed parts are rebuilt into a time.Time and compared
// back, which rejects impossible dates such as 31.02 that time.Date would
// silently normalise.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, invalidf("date must be DD.MM or DD.MM.YYYY")
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, invalidf("date must be DD.MM or DD.MM.YYYY")
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, invalidf("date must be DD.MM or DD.MM.YYYY")
	}
	year := now.Year()
	if len(parts) == 3 {
		year, err = strconv.Atoi(parts[2])
		if err != nil || year < 1900 || year > 2200 {
			return time.Time{}, invalidf("year %q is out of range", parts[2])
		}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, invalidf("%q is not a valid calendar date", raw)
	}
	return t, nil
}

// ParseClock parses "HH:MM" on a 24-hour clock.
func ParseClock(raw string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, invalidf("time must be HH:MM")
	}
	hour, herr := strconv.Atoi(parts[0])
	minute, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, invalidf("time must be HH:MM")
	}
	return hour, minute, nil
}

// ParseCoordinates parses "lat,lon" or "lat lon" in decimal degrees.
func ParseCoordinates(raw string) (Coordinates, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", " ")
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Coordinates{}, invalidf("coordinates must be two numbers, latitude then longitude")
	}
	lat, laterr := strconv.ParseFloat(parts[0], 64)
	lon, lonerr := strconv.ParseFloat(parts[1], 64)
	if laterr != nil || lonerr != nil {
		return Coordinates{}, invalidf("coordinates must be two numbers, latitude then longitude")
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, invalidf("latitude %v is out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, invalidf("longitude %v is out of range", lon)
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// ParseYear parses a release year.
func ParseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < 1888 || year > 2100 {
		return 0, invalidf("%q is not a plausible year", raw)
	}
	return year, nil
}

// ParseRating parses a 1..5 rating.
func ParseRating(raw string) (int, error) {
	r, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || r < 1 || r > 5 {
		return 0, invalidf("rating must be between 1 and 5")
	}
	return r, nil
}

// ParseCount parses a non-negative integer such as a season or episode
// count.
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, invalidf("%q is not a non-negative whole number", raw)
	}
	return n, nil
}

// ParsePriority parses a 0..3 reminder priority.
func ParsePriority(raw string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 0 || p > 3 {
		return 0, invalidf("priority must be between 0 and 3")
	}
	return p, nil
}

// capitalize upper-cases the first rune, leaving the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// oneOf matches raw case-insensitively against the allowed choices.
func oneOf(raw string, choices ...string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range choices {
		if s == c {
			return c, nil
		}
	}
	return "", invalidf("expected one of: %s", strings.Join(choices, ", "))
}
