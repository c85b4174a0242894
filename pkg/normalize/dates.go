package normalize

import (
	"strings"
	"time"
)

// ParseFlexibleDate accepts the date spellings that show up in field
// spreadsheets: DD.MM.YYYY, DD.MM.YYYY HH:MM:SS and ISO-8601. The second
// return value is false when the input is unparseable; callers decide the
// skip policy. Never panics.
func ParseFlexibleDate(text string) (time.Time, bool) {
	v := strings.TrimSpace(text)
	if v == "" {
		return time.Time{}, false
	}

	datePart, timePart, _ := strings.Cut(v, " ")
	if strings.Contains(datePart, ".") {
		return parseDotted(datePart, strings.TrimSpace(timePart))
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseDotted(datePart, timePart string) (time.Time, bool) {
	if timePart == "" {
		t, err := time.ParseInLocation("02.01.2006", datePart, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	value := datePart + " " + timePart
	for _, layout := range []string{"02.01.2006 15:04:05", "02.01.2006 15:04"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	// A time fragment that is present but unparseable makes the whole
	// value unparseable.
	return time.Time{}, false
}
