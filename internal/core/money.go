// Package core provides the salary slip domain: ledgers of pay components,
// their totals and the Indian-convention rendering of amounts.
//
// This file contains the lenient amount parser used for aggregation and
// the en-IN currency formatter used for display.
package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the longest leading decimal literal, the same
// prefix a browser's parseFloat would consume.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount converts user-entered text into an amount for aggregation.
//
// Parsing never fails: leading whitespace is skipped, trailing garbage after
// a numeric prefix is ignored, and anything that does not yield a finite,
// non-negative number counts as zero. Unlike parseFloat, negative input is
// not returned as a negative amount: "-40" is zero, so a ledger entry can
// never reduce its own total.
//
// Examples:
//
//	ParseAmount("1500.50") -> 1500.5
//	ParseAmount(" 12abc")  -> 12
//	ParseAmount("abc")     -> 0
//	ParseAmount("")        -> 0
//	ParseAmount("-40")     -> 0
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero
	}
	if f < 0 {
		return decimal.Zero
	}
	// The exponent must stay within float64 range: a literal such as
	// "1e-20000000" makes every later sum rescale to a huge coefficient.
	return decimal.NewFromFloat(f)
}

// FormatINR formats an amount the way the en-IN locale prints rupees:
// two decimals, the last three integer digits grouped together and the
// rest in pairs, e.g. 123456 -> "₹1,23,456.00".
func FormatINR(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "₹" + groupIndian(intPart) + "." + frac
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var b strings.Builder
	lead := len(head) % 2
	if lead == 1 {
		b.WriteString(head[:1])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// Decorate wraps a words phrase the way it appears under the net pay line.
func Decorate(words string) string {
	return "(" + words + " Only)"
}
