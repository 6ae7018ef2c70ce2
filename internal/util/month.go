package util

import "time"

// PreviousMonth returns the year and month immediately before the given month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthWindow returns the current month and the immediately preceding one,
// derived by stepping one day back from the first of the current month.
func MonthWindow(now time.Time) (curYear, curMonth, prevYear, prevMonth int) {
	curYear, curMonth = now.Year(), int(now.Month())
	prev := time.Date(curYear, time.Month(curMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return curYear, curMonth, prev.Year(), int(prev.Month())
}

// MonthEnd returns the last instant of the month's last calendar day
// (23:59:59 UTC), the boundary after which a month counts as elapsed.
func MonthEnd(year, month int) time.Time {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(year, time.Month(month), lastDay, 23, 59, 59, 0, time.UTC)
}

// MonthBounds returns the half-open [start, end) interval covering the month
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
