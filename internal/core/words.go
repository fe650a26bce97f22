package core

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

var (
	unitWords = [...]string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
		"Sixteen", "Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = [...]string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}

	bigCrore = big.NewInt(crore)
)

// ToWords spells out a rupee amount using the Indian numbering system.
//
//	ToWords(0)          -> "Zero"
//	ToWords(1500.50)    -> "One Thousand Five Hundred Rupees and Fifty Paise"
//	ToWords(0.75)       -> "Seventy Five Paise"
//	ToWords(10000000)   -> "One Crore Rupees"
//	ToWords(-250)       -> "Negative Two Hundred and Fifty Rupees"
//
// Paise are rounded half up to two digits; a fraction that rounds to 100
// paise is carried into the rupees. Amounts that round to nothing read
// "Zero".
func ToWords(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "Zero"
	}
	if amount.IsNegative() {
		return "Negative " + ToWords(amount.Neg())
	}

	rupees := amount.Floor()
	paise := amount.Sub(rupees).Shift(2).Round(0).IntPart()
	if paise >= 100 {
		rupees = rupees.Add(decimal.NewFromInt(1))
		paise -= 100
	}

	var phrase string
	if rupees.IsPositive() {
		phrase = rupeeWords(rupees.BigInt()) + " Rupees"
	}
	if paise > 0 {
		if phrase != "" {
			phrase += " and "
		}
		phrase += SubThousandWords(int(paise)) + " Paise"
	}
	if phrase == "" {
		return "Zero"
	}
	return phrase
}

// IndianGroups splits n into its crore, lakh, thousand and sub-thousand
// parts so that n == crores*1e7 + lakhs*1e5 + thousands*1e3 + rest.
func IndianGroups(n uint64) (crores, lakhs, thousands, rest uint64) {
	crores, n = n/crore, n%crore
	lakhs, n = n/lakh, n%lakh
	thousands, rest = n/thousand, n%thousand
	return crores, lakhs, thousands, rest
}

// IndianWords spells out a whole number with crore, lakh and thousand
// groups, without any currency suffix. Zero yields an empty string.
func IndianWords(n uint64) string {
	crores, lakhs, thousands, rest := IndianGroups(n)
	parts := make([]string, 0, 4)
	if crores > 0 {
		parts = append(parts, croreCountWords(crores)+" Crore")
	}
	if lakhs > 0 {
		parts = append(parts, SubThousandWords(int(lakhs))+" Lakh")
	}
	if thousands > 0 {
		parts = append(parts, SubThousandWords(int(thousands))+" Thousand")
	}
	if rest > 0 {
		parts = append(parts, SubThousandWords(int(rest)))
	}
	return strings.Join(parts, " ")
}

// SubThousandWords spells out 0 <= n <= 999; zero yields an empty string.
// Larger values fall back to IndianWords.
func SubThousandWords(n int) string {
	switch {
	case n <= 0:
		return ""
	case n < 20:
		return unitWords[n]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + " " + unitWords[n%10]
	case n < 1000:
		words := unitWords[n/100] + " Hundred"
		if n%100 != 0 {
			words += " and " + SubThousandWords(n%100)
		}
		return words
	default:
		return IndianWords(uint64(n))
	}
}

// croreCountWords renders the number of crores. Counts past 999 keep the
// Indian grouping ("One Thousand Crore", "One Lakh Crore").
func croreCountWords(n uint64) string {
	if n < thousand {
		return SubThousandWords(int(n))
	}
	return IndianWords(n)
}

func rupeeWords(n *big.Int) string {
	if n.IsUint64() {
		return IndianWords(n.Uint64())
	}
	crores, rest := new(big.Int).QuoRem(n, bigCrore, new(big.Int))
	words := rupeeWords(crores) + " Crore"
	if tail := IndianWords(rest.Uint64()); tail != "" {
		words += " " + tail
	}
	return words
}
