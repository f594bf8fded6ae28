package schedule

import (
	"fmt"
	"strconv"
	"time"
)

// SeasonCode derives the 8-digit NHL season identifier for a date.
// September and later belong to the season starting that calendar year;
// earlier months belong to the season that started the previous year.
// Example: 2025-10-01 -> "20252026".
func SeasonCode(d time.Time) string {
	year := d.Year()
	if d.Month() >= time.September {
		return fmt.Sprintf("%d%d", year, year+1)
	}
	return fmt.Sprintf("%d%d", year-1, year)
}

// PreviousSeason returns the season code immediately before the given one.
// Malformed codes are returned unchanged.
func PreviousSeason(code string) string {
	if len(code) != 8 {
		return code
	}
	startYear, err := strconv.Atoi(code[:4])
	if err != nil {
		return code
	}
	return fmt.Sprintf("%d%d", startYear-1, startYear)
}
