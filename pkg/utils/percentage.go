package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePercentage parses "20%", "20" or "0.20" into 0.20.
// Bare numbers greater than 1 are read as whole percentages.
func ParsePercentage(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty percentage")
	}

	if strings.HasSuffix(s, "%") {
		num, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q: %w", value, err)
		}
		return num / 100, nil
	}

	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", value, err)
	}
	if num > 1 {
		return num / 100, nil
	}
	return num, nil
}

// FormatPercentage formats a fraction as a percentage, e.g. 0.2 → "20%", 0.1234 → "12.3%".
func FormatPercentage(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, value*100)
}
