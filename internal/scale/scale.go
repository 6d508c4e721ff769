// Package scale translates raw numeric survey codes into the five-point
// minus/plus ordinal scale used by all Likert-style questions.
package scale

import (
	"strconv"
	"strings"
)

// Symbol is one of the five ordinal answer categories.
type Symbol string

const (
	StrongNegative Symbol = "--"
	Negative       Symbol = "-"
	Neutral        Symbol = "±"
	Positive       Symbol = "+"
	StrongPositive Symbol = "++"
)

// Order lists the categories from strong negative to strong positive. The
// index positions are the basis for all ordinal statistics and must not
// change.
var Order = [5]Symbol{StrongNegative, Negative, Neutral, Positive, StrongPositive}

// codes maps each symbol to its integer ordinal code -2..2.
var codes = map[Symbol]int{
	StrongNegative: -2,
	Negative:       -1,
	Neutral:        0,
	Positive:       1,
	StrongPositive: 2,
}

// Code returns the integer ordinal code for a symbol. Unknown symbols map to
// 0, the neutral position.
func Code(s Symbol) int {
	return codes[s]
}

// FromCode returns the symbol for an integer ordinal code -2..2.
func FromCode(c int) (Symbol, bool) {
	for s, v := range codes {
		if v == c {
			return s, true
		}
	}
	return Neutral, false
}

// Index returns the position of s in Order, or -1 for unknown symbols.
func Index(s Symbol) int {
	for i, v := range Order {
		if v == s {
			return i
		}
	}
	return -1
}

// IsSymbol reports whether the raw cell already holds a recoded symbol.
func IsSymbol(raw string) bool {
	return Index(Symbol(raw)) >= 0
}

// RecodePlusMinus maps a raw survey code 1-4 onto the ordinal scale. Any
// other input, including unparseable or empty values, maps to the neutral
// category so that "no opinion" stays visible instead of dropping the row.
// The function is total and never fails.
func RecodePlusMinus(raw string) Symbol {
	switch parseCode(raw) {
	case 1:
		return StrongNegative
	case 2:
		return Negative
	case 3:
		return Positive
	case 4:
		return StrongPositive
	}
	return Neutral
}

// RecodeCheckboxPlusMinus maps the checkbox question variant: 1 means
// checked-negative, 2 means checked-positive, everything else is the
// not-shown/neutral category.
func RecodeCheckboxPlusMinus(raw string) Symbol {
	switch parseCode(raw) {
	case 1:
		return StrongNegative
	case 2:
		return StrongPositive
	}
	return Neutral
}

// parseCode extracts an integer survey code from a raw cell. Exports store
// codes as plain integers but occasionally with a decimal tail ("3.0").
// Returns 0 when the cell holds no usable code.
func parseCode(raw string) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}
