package aadhaar

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[\t\v\f\p{Zs}]+`)
	spaceAtLineEdge = regexp.MustCompile(` ?\n ?`)
	blankLineRun    = regexp.MustCompile(`\n{4,}`)
)

// Normalize canonicalizes OCR text layout before pattern matching. Line
// endings become \n, horizontal whitespace runs become one space, three or
// more blank lines collapse into one and the result is trimmed. Compatibility
// characters (full-width digits, no-break spaces) are folded with NFKC.
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAtLineEdge.ReplaceAllString(text, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
