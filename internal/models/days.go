package models

import (
	"fmt"
	"slices"
	"strings"
)

// SortedDays returns days deduplicated and ascending. The input is not modified.
func SortedDays(days []int) []int {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

// DayRuns groups sorted, deduplicated days into contiguous [start, end] runs.
func DayRuns(days []int) [][2]int {
	runs := make([][2]int, 0)
	for _, d := range days {
		if n := len(runs); n > 0 && runs[n-1][1]+1 == d {
			runs[n-1][1] = d
			continue
		}
		runs = append(runs, [2]int{d, d})
	}
	return runs
}

// FormatDayRuns renders days like "1-20, 40, 55-60".
func FormatDayRuns(days []int) string {
	parts := make([]string, 0)
	for _, r := range DayRuns(SortedDays(days)) {
		if r[0] == r[1] {
			parts = append(parts, fmt.Sprintf("%d", r[0]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r[0], r[1]))
		}
	}
	return strings.Join(parts, ", ")
}
