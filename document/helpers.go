package document

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const ISODateLayout = "2006-01-02"

// Layouts accepted for dates printed on identity documents or typed into
// forms. ISO comes first, everything else is read day-first.
var fullYearLayouts = []string{
	ISODateLayout,
	"2006/1/2",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
}

var shortYearLayouts = []string{
	"2/1/06",
	"2-1-06",
	"2.1.06",
}

// ParseDayFirstDate parses a calendar date written day-first
// (15/08/1990, 15-08-1990, 15.8.90) or in ISO form (1990-08-15).
func ParseDayFirstDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("invalid date format: empty")
	}

	for _, layout := range fullYearLayouts {
		if parsed, err := time.Parse(layout, dateStr); err == nil {
			return parsed, nil
		}
	}

	for _, layout := range shortYearLayouts {
		parsed, err := time.Parse(layout, dateStr)
		if err != nil {
			continue
		}
		// A two digit year can only be a birth year in the past, the Go
		// parser maps 00-68 to 20xx so anything in the future is a 19xx date.
		if parsed.After(time.Now()) {
			parsed = parsed.AddDate(-100, 0, 0)
		}
		return parsed, nil
	}

	return time.Time{}, fmt.Errorf("error parsing date: %q does not match any known layout", dateStr)
}

// DigitsOnly drops every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// StripWhitespace removes all whitespace, including spaces inside the value.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CanonicalGender maps the spellings found on documents and in forms to
// Male, Female or Other. Unknown values are returned trimmed.
func CanonicalGender(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "male", "m":
		return "Male"
	case "female", "f":
		return "Female"
	case "other", "o", "transgender", "trans", "t":
		return "Other"
	default:
		return trimmed
	}
}
