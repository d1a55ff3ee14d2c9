package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charWidth measures every rune as 2 units wide.
var charWidth = MeasureFunc(func(s string) float64 {
	return 2 * float64(utf8.RuneCountInString(s))
})

func TestPaginate(t *testing.T) {
	assert.Equal(t, 3, Paginate(25, 10))
	assert.Equal(t, 1, Paginate(0, 10))
	assert.Equal(t, 2, Paginate(20, 10))
	assert.Equal(t, 1, Paginate(10, 10))
	assert.Equal(t, 11, Paginate(11, 1))
	assert.Equal(t, 5, Paginate(5, 0))
}

func TestPageRange(t *testing.T) {
	want := [][2]int{{0, 10}, {10, 20}, {20, 25}}
	for p, w := range want {
		start, end := PageRange(p, 10, 25)
		assert.Equal(t, w, [2]int{start, end}, "page %d", p)
	}

	start, end := PageRange(0, 10, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestPagesRepeatHeader(t *testing.T) {
	header := []string{"Id", "Name"}
	var data [][]string
	for i := 0; i < 25; i++ {
		data = append(data, []string{strings.Repeat("x", i%3+1), "row"})
	}

	pages := Pages(header, data, 10)
	require.Len(t, pages, 3)
	assert.Len(t, pages[0].Rows, 11)
	assert.Len(t, pages[1].Rows, 11)
	assert.Len(t, pages[2].Rows, 6)
	for _, p := range pages {
		assert.Equal(t, header, p.Rows[0])
		assert.Equal(t, 3, p.Total)
	}
	assert.Equal(t, 20, pages[2].Start)
	assert.Equal(t, 25, pages[2].End)
}

func TestPagesHeaderOnly(t *testing.T) {
	pages := Pages([]string{"Id"}, nil, 10)
	require.Len(t, pages, 1)
	assert.Equal(t, [][]string{{"Id"}}, pages[0].Rows)
}

func TestWrap(t *testing.T) {
	s := strings.Repeat("a", 120)
	chunks := strings.Split(Wrap(s, 50), LineBreak)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Len(t, chunks[2], 20)

	assert.Equal(t, "short", Wrap("short", 50))
	assert.Equal(t, s, Wrap(s, 0))
	assert.Equal(t, "hello world", Wrap("hello world", 11))
	// Not word aware.
	assert.Equal(t, "hello\n worl\nd", Wrap("hello world", 5))
}

func TestWrapCountsRunes(t *testing.T) {
	s := strings.Repeat("ب", 12)
	chunks := strings.Split(Wrap(s, 5), LineBreak)
	require.Len(t, chunks, 3)
	assert.Equal(t, 5, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 2, utf8.RuneCountInString(chunks[2]))
}

func TestHexToRGB(t *testing.T) {
	white, err := HexToRGB("#FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, RGB{1, 1, 1}, white)

	black, err := HexToRGB("#000000")
	require.NoError(t, err)
	assert.Equal(t, RGB{0, 0, 0}, black)

	grey, err := HexToRGB("#808080")
	require.NoError(t, err)
	assert.InDelta(t, 0.5019607843137255, grey.R, 1e-12)
	assert.InDelta(t, 0.502, grey.G, 1e-3)
	assert.InDelta(t, 0.502, grey.B, 1e-3)

	r, g, b := grey.Bytes()
	assert.Equal(t, [3]int{128, 128, 128}, [3]int{r, g, b})

	for _, bad := range []string{"", "#FFF", "#GGGGGG", "#1234567"} {
		_, err := HexToRGB(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestColumnWidthsSumToAvailable(t *testing.T) {
	rows := [][]string{
		{"Short", "Medium Column", "Very Long Column Header"},
		{"Data1", "Data2", "Data3"},
	}
	widths := ColumnWidths(rows, 500, charWidth)
	require.Len(t, widths, 3)

	var sum float64
	for _, w := range widths {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 500, sum, 1e-9)
	assert.Less(t, widths[0], widths[1])
	assert.Less(t, widths[1], widths[2])
}

func TestColumnWidthsProperty(t *testing.T) {
	cases := []struct {
		rows      [][]string
		available float64
	}{
		{[][]string{{"a", "b"}}, 10},
		{[][]string{{"", ""}, {"", ""}}, 180},
		{[][]string{{"id", strings.Repeat("w", 400)}, {"1", "x"}}, 100},
		{[][]string{{"x", "y", "z"}, {strings.Repeat("m", 1000), strings.Repeat("n", 900), ""}}, 267},
		{[][]string{{"wrapped"}, {"a\nbbbbbbbbbbbbbbbb"}}, 33.3},
		{[][]string{{"a", "b", "c", "d", "e", "f", "g"}}, 0.7},
	}
	for _, tc := range cases {
		widths := ColumnWidths(tc.rows, tc.available, charWidth)
		require.Len(t, widths, len(tc.rows[0]))
		var sum float64
		for _, w := range widths {
			assert.Greater(t, w, 0.0)
			sum += w
		}
		assert.InDelta(t, tc.available, sum, 1e-9)
	}
}

func TestColumnWidthsOversizedColumnIsCapped(t *testing.T) {
	rows := [][]string{{"id", "body"}, {"1", strings.Repeat("w", 1000)}}
	widths := ColumnWidths(rows, 100, charWidth)
	require.Len(t, widths, 2)
	assert.Greater(t, widths[0], 0.0)
	assert.Less(t, widths[1], 100.0)
	// natural: id -> 6, body -> 2002 capped at 100; scale 100/106.
	assert.InDelta(t, 600.0/106, widths[0], 1e-9)
}

func TestColumnWidthsTies(t *testing.T) {
	rows := [][]string{{"abc", "xyz", "mn"}, {"1", "2", "3"}}
	widths := ColumnWidths(rows, 90, charWidth)
	assert.InDelta(t, widths[0], widths[1], 1e-9)
	assert.Less(t, widths[2], widths[0])
}

func TestColumnWidthsSingleColumnAndEmpty(t *testing.T) {
	assert.Equal(t, []float64{123.4}, ColumnWidths([][]string{{"only"}, {strings.Repeat("z", 999)}}, 123.4, charWidth))
	assert.Nil(t, ColumnWidths(nil, 100, charWidth))
	assert.Nil(t, ColumnWidths([][]string{{"a"}}, 0, charWidth))
}

func TestNaturalWidthsUsesWidestLine(t *testing.T) {
	natural := NaturalWidths([][]string{{"h"}, {"ab" + LineBreak + "abcd"}}, charWidth)
	assert.Equal(t, []float64{8 + 2*CellPadding}, natural)
}
