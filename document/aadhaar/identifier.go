package aadhaar

import (
	"regexp"
	"strings"

	"go-aadhaar-verifier/document"
	"go-aadhaar-verifier/document/verhoeff"
)

// maximal runs of digit groups separated by single spaces
var digitGroupRun = regexp.MustCompile(`\d+(?: \d+)*`)

// Keys under which an already keyed source carries the identifier.
var identifierKeys = []string{"uid", "aadhaar_number", "aadhaar", "identifier"}

// ExtractIdentifier returns the Aadhaar number found in text. Candidates are
// runs of 12 digits and 4-4-4 spaced groups, in order of appearance. The
// first candidate passing the Verhoeff check wins; if none does, the first
// candidate is returned so a malformed number is rejected explicitly instead
// of being silently dropped.
func ExtractIdentifier(text string) string {
	return pickIdentifier(identifierCandidates(text))
}

// IdentifierFromFields is ExtractIdentifier for a source whose fields are
// already keyed, such as the QR payload. A value that does not hold a
// 12 digit candidate is surfaced as its digits.
func IdentifierFromFields(fields map[string]string) string {
	for _, key := range identifierKeys {
		value := strings.TrimSpace(fields[key])
		if value == "" {
			continue
		}
		if id := pickIdentifier(identifierCandidates(Normalize(value))); id != "" {
			return id
		}
		return document.DigitsOnly(value)
	}
	return ""
}

func identifierCandidates(text string) []string {
	// digits following a VID label belong to the VID
	text = vidSpan.ReplaceAllString(text, "\n")

	var candidates []string
	for _, run := range digitGroupRun.FindAllString(text, -1) {
		groups := strings.Split(run, " ")
		for i, group := range groups {
			if len(group) == identifierLength {
				candidates = append(candidates, group)
				continue
			}
			// every three consecutive 4 digit groups, overlapping runs included
			if i+2 < len(groups) && len(group) == 4 && len(groups[i+1]) == 4 && len(groups[i+2]) == 4 {
				candidates = append(candidates, group+groups[i+1]+groups[i+2])
			}
		}
	}
	return dedupe(candidates)
}

func pickIdentifier(candidates []string) string {
	for _, candidate := range candidates {
		if verhoeff.Validate(candidate) {
			return candidate
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
