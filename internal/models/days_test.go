package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedDays(t *testing.T) {
	in := []int{5, 1, 3, 3, 2}
	assert.Equal(t, []int{1, 2, 3, 5}, SortedDays(in))
	assert.Equal(t, []int{5, 1, 3, 3, 2}, in, "input must not be modified")
	assert.Empty(t, SortedDays(nil))
}

func TestFormatDayRuns(t *testing.T) {
	tests := []struct {
		days []int
		want string
	}{
		{nil, ""},
		{[]int{40}, "40"},
		{[]int{1, 2, 3}, "1-3"},
		{[]int{55, 56, 40, 1, 2, 3, 57}, "1-3, 40, 55-57"},
		{[]int{7, 7, 8}, "7-8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDayRuns(tt.days), "days %v", tt.days)
	}
}

func TestLookupUnit(t *testing.T) {
	u, ok := LookupUnit(7)
	assert.True(t, ok)
	assert.Equal(t, Unit{Number: 7, Label: "07"}, u)

	_, ok = LookupUnit(0)
	assert.False(t, ok)
	_, ok = LookupUnit(51)
	assert.False(t, ok)
}

func TestIsMaintenanceCode(t *testing.T) {
	assert.True(t, IsMaintenanceCode("CM2"))
	assert.False(t, IsMaintenanceCode("cm2"))
	assert.False(t, IsMaintenanceCode(""))
}
