package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonPriceChars = regexp.MustCompile(`[^0-9.,]`)
	// longest leading decimal, "199.99." reads as 199.99
	leadingDecimal = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
	leadingInteger = regexp.MustCompile(`^\d+`)
)

// ParsePrice turns a localized price such as "₴199.99", "199,99₴" or "1 299 грн" into a number.
// Comma is always read as a decimal separator, so "1,234" parses as 1.234.
// Text without digits yields 0.
func ParsePrice(text string) float64 {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	match := leadingDecimal.FindString(cleaned)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

// ParsePercent reads a discount label such as "-25%" as 25. Unreadable labels yield 0.
func ParsePercent(text string) int {
	cleaned := strings.NewReplacer("-", "", "%", "", "−", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)

	match := leadingInteger.FindString(cleaned)
	if match == "" {
		return 0
	}
	percent, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return percent
}

// ReconcilePercent prefers the percentage printed on the page and otherwise derives it from
// the two prices.
func ReconcilePercent(explicit int, originalPrice, salePrice float64) int {
	if explicit > 0 {
		return explicit
	}
	if originalPrice > 0 && salePrice > 0 {
		return int(math.Round((1 - salePrice/originalPrice) * 100))
	}
	return 0
}
