package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	cases := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"no pages", 0, 0, nil},
		{"single page", 0, 1, []int{0}},
		{"all shown under threshold", 3, 7, []int{0, 1, 2, 3, 4, 5, 6}},
		{"middle with both gaps", 5, 12, []int{0, Ellipsis, 3, 4, 5, 6, 7, Ellipsis, 11}},
		{"near start collapses left gap", 1, 12, []int{0, 1, 2, 3, Ellipsis, 11}},
		{"near end collapses right gap", 10, 12, []int{0, Ellipsis, 8, 9, 10, 11}},
		{"first page", 0, 12, []int{0, 1, 2, Ellipsis, 11}},
		{"last page", 11, 12, []int{0, Ellipsis, 9, 10, 11}},
		{"current clamped high", 99, 12, []int{0, Ellipsis, 9, 10, 11}},
		{"current clamped low", -3, 12, []int{0, 1, 2, Ellipsis, 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PageWindow(tc.current, tc.total))
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 4, PageCount(31, 10))
	assert.Equal(t, 0, PageCount(31, 0))
}
