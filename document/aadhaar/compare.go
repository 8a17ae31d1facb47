package aadhaar

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"go-aadhaar-verifier/document"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldKind selects the canonicalization used by Compare.
type FieldKind int

const (
	FieldDefault FieldKind = iota
	FieldName
	FieldDOB
	FieldGender
	FieldIdentifier
	FieldYearOfBirth
)

func (k FieldKind) String() string {
	switch k {
	case FieldName:
		return "name"
	case FieldDOB:
		return "dob"
	case FieldGender:
		return "gender"
	case FieldIdentifier:
		return "identifier"
	case FieldYearOfBirth:
		return "yob"
	default:
		return "default"
	}
}

// Compare reports whether a value typed by the user matches the value read
// from the document. A missing value on either side never matches.
func Compare(entered, extracted string, kind FieldKind) bool {
	entered = strings.TrimSpace(entered)
	extracted = strings.TrimSpace(extracted)
	if entered == "" || extracted == "" {
		return false
	}

	switch kind {
	case FieldName:
		return canonicalName(entered) == canonicalName(extracted)
	case FieldDOB:
		a, err := document.ParseDayFirstDate(entered)
		if err != nil {
			return false
		}
		b, err := document.ParseDayFirstDate(extracted)
		if err != nil {
			return false
		}
		return a.Equal(b)
	case FieldGender:
		return document.CanonicalGender(entered) == document.CanonicalGender(extracted)
	case FieldIdentifier:
		return document.StripWhitespace(entered) == document.StripWhitespace(extracted)
	case FieldYearOfBirth:
		year := yearOf(entered)
		return year != 0 && year == yearOf(extracted)
	default:
		return strings.EqualFold(entered, extracted)
	}
}

// Similarity scores a comparison between 0 and 1. Names that do not match
// exactly score the overlap of their words; other kinds are all or nothing.
func Similarity(entered, extracted string, kind FieldKind) float64 {
	if Compare(entered, extracted, kind) {
		return 1
	}
	if kind != FieldName {
		return 0
	}

	a := strings.Fields(canonicalName(entered))
	b := strings.Fields(canonicalName(extracted))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	words := make(map[string]int, len(a)+len(b))
	for _, w := range a {
		words[w] |= 1
	}
	for _, w := range b {
		words[w] |= 2
	}
	shared := 0
	for _, in := range words {
		if in == 3 {
			shared++
		}
	}
	return round2(float64(shared) / float64(len(words)))
}

func canonicalName(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, name)
	return cases.Upper(language.Und).String(strings.Join(strings.Fields(stripped), " "))
}

func yearOf(value string) int {
	if len(value) == 4 {
		if year, err := strconv.Atoi(value); err == nil {
			return year
		}
	}
	if parsed, err := document.ParseDayFirstDate(value); err == nil {
		return parsed.Year()
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
