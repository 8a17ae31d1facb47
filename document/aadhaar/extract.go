package aadhaar

import (
	"regexp"
	"strings"

	"go-aadhaar-verifier/document"
)

const (
	nameSearchLines  = 5
	minNameLength    = 3
	identifierLength = 12
)

var (
	// 16 digits, ending the line or followed by a separate 4 or 12 digit group
	vidPattern        = regexp.MustCompile(`\bVID\b\s*:?\s*(\d{4} ?\d{4} ?\d{4} ?\d{4})(?:$|[^\d ]| (?:\d{4}|\d{12})(?:\D|$)| \D)`)
	vidSpan           = regexp.MustCompile(`\bVID\b\s*:?\s*(?:\d ?){1,16}`)
	vidTokenPattern   = regexp.MustCompile(`\bVID\b`)
	dobPattern        = regexp.MustCompile(`(?i)\b(?:DOB|Date of Birth)\b\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	yobPattern        = regexp.MustCompile(`(?i)\b(?:Year of Birth|YOB)\b\s*[:\-]?\s*(\d{4})\b`)
	dobLabel          = regexp.MustCompile(`(?i)\b(?:DOB|Date of Birth)\b`)
	femalePattern     = regexp.MustCompile(`(?i)\bFEMALE\b`)
	malePattern       = regexp.MustCompile(`(?i)\bMALE\b`)
	transgenderRegexp = regexp.MustCompile(`(?i)\bTRANSGENDER\b`)
	addressLabel      = regexp.MustCompile(`(?i)Address\s*:`)
	postalCodePattern = regexp.MustCompile(`(?:^|\D)(\d{6})(?:\D|$)`)
	identifierRun     = regexp.MustCompile(`(?:^|\D)(\d{4} ?\d{4} ?\d{4})(?:\D|$)`)
)

// Phrases printed by the issuing authority, never part of a holder's name.
var boilerplatePhrases = []string{
	"government of india",
	"govt of india",
	"govt. of india",
	"unique identification authority",
	"aadhaar",
	"aam aadmi ka adhikar",
	"mera aadhaar",
	"enrolment no",
}

// Footer phrases that end the address block on the back side.
var addressFooter = regexp.MustCompile(`(?i)unique identification authority of india|uidai\.gov\.in|help@uidai|www\.uidai`)

// ExtractVirtualIdentifier returns the 16 digit VID following the literal
// "VID" token. Groups of four separated by spaces are accepted; any other
// digit count is rejected. An identifier printed after the VID on the same
// line is not part of it.
func ExtractVirtualIdentifier(text string) string {
	match := vidPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return document.DigitsOnly(match[1])
}

// ExtractDOB returns the date printed after a DOB label as an ISO date. When
// the matched date does not parse the raw match is returned unchanged so it
// stays available for manual review.
func ExtractDOB(text string) string {
	match := dobPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return isoDateOrRaw(match[1])
}

// ExtractYearOfBirth handles cards that only print a year of birth.
func ExtractYearOfBirth(text string) string {
	match := yobPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

// ExtractGender returns Male, Female or Other. FEMALE is checked before MALE
// since the latter is a substring of the former.
func ExtractGender(text string) string {
	switch {
	case transgenderRegexp.MatchString(text):
		return "Other"
	case femalePattern.MatchString(text):
		return "Female"
	case malePattern.MatchString(text):
		return "Male"
	default:
		return ""
	}
}

// ExtractName finds the holder's name on the front side. The name is printed
// just above the DOB line, so the lines above the first DOB line are scanned
// upwards, skipping the issuer's boilerplate.
func ExtractName(frontText string) string {
	lines := strings.Split(frontText, "\n")

	anchor := -1
	for i, line := range lines {
		if dobLabel.MatchString(line) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return ""
	}

	for i := anchor - 1; i >= 0 && i >= anchor-nameSearchLines; i-- {
		candidate := strings.TrimSpace(lines[i])
		if isBoilerplate(candidate) {
			continue
		}
		if len([]rune(candidate)) >= minNameLength {
			return candidate
		}
	}
	return ""
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ExtractAddress returns the address block that follows the "Address:" label
// on the back side, flattened to a single line. The block ends at the
// earliest issuer footer phrase, VID token or standalone identifier-shaped
// run of 12 digits. Only when none of those is present does it end after the
// first standalone 6 digit run, the PIN code.
func ExtractAddress(backText string) string {
	loc := addressLabel.FindStringIndex(backText)
	if loc == nil {
		return ""
	}
	block := backText[loc[1]:]
	block = block[:addressEnd(block)]

	address := strings.Join(strings.Fields(Normalize(block)), " ")
	return strings.Trim(address, " ,")
}

func addressEnd(block string) int {
	end := -1
	cut := func(at int) {
		if end < 0 || at < end {
			end = at
		}
	}
	for _, marker := range []*regexp.Regexp{addressFooter, vidTokenPattern} {
		if loc := marker.FindStringIndex(block); loc != nil {
			cut(loc[0])
		}
	}
	if loc := identifierRun.FindStringSubmatchIndex(block); loc != nil {
		cut(loc[2])
	}
	if end >= 0 {
		return end
	}
	if loc := postalCodePattern.FindStringSubmatchIndex(block); loc != nil {
		return loc[3]
	}
	return len(block)
}

// ExtractPostalCode returns the first run of exactly six digits.
func ExtractPostalCode(text string) string {
	match := postalCodePattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

func isoDateOrRaw(raw string) string {
	parsed, err := document.ParseDayFirstDate(raw)
	if err != nil {
		return raw
	}
	return parsed.Format(document.ISODateLayout)
}
