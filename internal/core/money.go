// Package core provides the transaction domain model and money utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting đồng values for display.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToDong converts a user-entered amount string to đồng.
//
// Vietnamese đồng amounts are whole numbers; dots and commas are accepted as
// thousand separators and stripped (spreadsheets and users both produce them).
// Returns an error for non-numeric input, negative values, or zero.
//
// Examples:
//
//	ParseAmountToDong("12000")   -> 12000, nil
//	ParseAmountToDong("12.000")  -> 12000, nil
//	ParseAmountToDong("12,000")  -> 12000, nil
func ParseAmountToDong(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseCellToDong parses an amount cell fetched back from the remote store.
// Cells may carry a decimal part added by spreadsheet formatting ("12000.00");
// it is truncated since đồng has no subunit in practice.
func ParseCellToDong(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		// Only treat a single trailing group as decimals; "12.000" is a
		// thousand separator, "12000.5" is a decimal.
		if len(s)-i-1 != 3 {
			s = s[:i]
		}
	}
	d, err := ParseAmountToDong(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// FormatDong formats đồng with dot thousand separators (e.g. "1.250.000 ₫").
func FormatDong(dong int64) string {
	neg := dong < 0
	if neg {
		dong = -dong
	}
	digits := strconv.FormatInt(dong, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	out := b.String() + " ₫"
	if neg {
		return "-" + out
	}
	return out
}
