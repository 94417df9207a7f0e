package domain

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// ParseAmount converts a decimal dollar string such as "1,250.5" or "$20" into
// cents. At most two fractional digits are accepted and the result must be positive.
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, Invalid("amount", "is required")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, Invalid("amount", "must have at most two decimal places")
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, Invalid("amount", "must be a number")
			}
		}
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars > 1_000_000_000 {
		return 0, Invalid("amount", "is too large")
	}
	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}
	total := dollars*100 + cents
	if total <= 0 {
		return 0, Invalid("amount", "must be positive")
	}
	return total, nil
}

// FormatCents renders cents as a US dollar string, e.g. 123456 -> "$1,234.56".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return amountPrinter.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// DecimalCents renders cents without currency symbol or grouping, e.g. "1234.56".
func DecimalCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
