package utils

import (
	"fmt"
	"time"
)

// MonthName returns the English label for a 1-based month number.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("month %d", month)
	}
	return time.Month(month).String()
}

// FormatMonthRange renders a charge period like "January - March 2025",
// collapsing single-month ranges to "January 2025".
func FormatMonthRange(monthFrom, monthTo, year int) string {
	if monthFrom == monthTo {
		return fmt.Sprintf("%s %d", MonthName(monthFrom), year)
	}
	return fmt.Sprintf("%s - %s %d", MonthName(monthFrom), MonthName(monthTo), year)
}
