package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.@+-]{1,150}$`)
	reMode     = regexp.MustCompile(`^(best_effort|atomic)$`)
)

// maxPrice mirrors decimal(10,2): at most 8 integer digits.
var maxPrice = decimal.New(1, 8)

// Username follows the usual login-name charset.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 1 && l <= 128
}

// Name validates a displayable product or shop name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 255 {
		return "", false
	}
	return s, true
}

// Quantity accepts on-hand counts (zero allowed).
func Quantity(n int) bool { return n >= 0 }

// SaleQty accepts a positive quantity sold.
func SaleQty(n int) bool { return n > 0 }

// Threshold accepts a low-stock threshold.
func Threshold(n int) bool { return n >= 0 }

// Price checks a non-negative amount with at most two decimal places that fits decimal(10,2).
func Price(d decimal.Decimal) (decimal.Decimal, bool) {
	if d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, false
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, false
	}
	return d, true
}

// BatchMode validates the sale batch mode name.
func BatchMode(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reMode.MatchString(s)
}
