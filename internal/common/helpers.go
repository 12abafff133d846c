// Package common contains small utilities shared across the project:
// time-window helpers and display formatting for credits.
package common

import (
	"fmt"
	"time"
)

// DayUTC reduces a timestamp to its calendar date in UTC.
// Streak detection counts distinct days with this reduction, so two entries
// at 23:59 and 00:01 UTC land on different days regardless of server zone.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekAgo returns now minus 7 days. The weekly window is rolling,
// not calendar-aligned.
func WeekAgo(now time.Time) time.Time {
	return now.Add(-7 * 24 * time.Hour)
}

// MonthAgo returns now minus 30 days, the rolling monthly window.
func MonthAgo(now time.Time) time.Time {
	return now.Add(-30 * 24 * time.Hour)
}

// FormatCredits renders an amount for display.
//
// Examples:
//
//	FormatCredits(1) → "1 credit"
//	FormatCredits(5) → "5 credits"
func FormatCredits(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d credit", n)
	}
	return fmt.Sprintf("%d credits", n)
}
