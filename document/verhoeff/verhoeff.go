// Package verhoeff implements the Verhoeff check-digit scheme used by the
// 12-digit Aadhaar number. It detects every single-digit error and every
// transposition of adjacent digits.
package verhoeff

import "fmt"

// multiplication table of the dihedral group D5
var d = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

// permutation table, indexed by position mod 8
var p = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

var inv = [10]int{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}

// Validate reports whether digits, check digit included as the last
// character, satisfies the Verhoeff checksum. Empty input or input holding
// anything other than ASCII digits is never valid.
func Validate(digits string) bool {
	if digits == "" {
		return false
	}
	c := 0
	for i := 0; i < len(digits); i++ {
		ch := digits[len(digits)-1-i]
		if ch < '0' || ch > '9' {
			return false
		}
		c = d[c][p[i%8][ch-'0']]
	}
	return c == 0
}

// CheckDigit computes the digit that has to be appended to base to make it
// pass Validate.
func CheckDigit(base string) (int, error) {
	if base == "" {
		return 0, fmt.Errorf("empty input")
	}
	c := 0
	for i := 0; i < len(base); i++ {
		ch := base[len(base)-1-i]
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("non-digit character %q at offset %d", ch, len(base)-1-i)
		}
		c = d[c][p[(i+1)%8][ch-'0']]
	}
	return inv[c], nil
}

// Generate returns base with its check digit appended.
func Generate(base string) (string, error) {
	digit, err := CheckDigit(base)
	if err != nil {
		return "", fmt.Errorf("failed to compute check digit: %w", err)
	}
	return fmt.Sprintf("%s%d", base, digit), nil
}
