package xlmedia

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		input string
		want  CellRef
	}{
		{"A1", CellRef{Row: 0, Col: 0}},
		{"C3", CellRef{Row: 2, Col: 2}},
		{"$E$6", CellRef{Row: 5, Col: 4}},
		{"aa10", CellRef{Row: 9, Col: 26}},
		{"Sheet1!B5", CellRef{Sheet: "Sheet1", Row: 4, Col: 1}},
		{"'My Sheet'!C3", CellRef{Sheet: "My Sheet", Row: 2, Col: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCellRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellRef_Invalid(t *testing.T) {
	for _, input := range []string{"", "A", "1", "A0", "A-1", "Ä1", "A1B"} {
		_, err := ParseCellRef(input)
		assert.Error(t, err, input)
	}
}

func TestColToName(t *testing.T) {
	assert.Equal(t, "A", ColToName(0))
	assert.Equal(t, "Z", ColToName(25))
	assert.Equal(t, "AA", ColToName(26))
	assert.Equal(t, "AAA", ColToName(702))

	for col := 0; col < 1000; col++ {
		got, err := NameToCol(ColToName(col))
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
}

func TestCellRef_String(t *testing.T) {
	assert.Equal(t, "C3", NewCellRef("", 2, 2).String())
	assert.Equal(t, "Sheet1!C3", NewCellRef("Sheet1", 2, 2).String())
}

func TestParseAreaRef(t *testing.T) {
	area, err := ParseAreaRef("Sheet1!A1:C5")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:C5", area.String())
	assert.Equal(t, "Sheet1", area.Last.Sheet)

	single, err := ParseAreaRef("B2")
	require.NoError(t, err)
	assert.Equal(t, single.First, single.Last)
}

func TestA1Decoder_Decode(t *testing.T) {
	tests := []struct {
		input string
		want  Bounds
	}{
		{"C3:E6", Bounds{Left: 3, Top: 3, Right: 5, Bottom: 6}},
		{"E6:C3", Bounds{Left: 3, Top: 3, Right: 5, Bottom: 6}},
		{"$C$3:$E$6", Bounds{Left: 3, Top: 3, Right: 5, Bottom: 6}},
		{"A1", Bounds{Left: 1, Top: 1, Right: 1, Bottom: 1}},
		{"Sheet1!A1:B2", Bounds{Left: 1, Top: 1, Right: 2, Bottom: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := A1Decoder{}.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestA1Decoder_Malformed(t *testing.T) {
	for _, input := range []string{"", "C3:", ":E6", "C3:E", "hello"} {
		_, err := A1Decoder{}.Decode(input)
		assert.True(t, errors.Is(err, ErrMalformedRange), "%q: %v", input, err)
	}
}

func TestSafeSheetName(t *testing.T) {
	assert.Equal(t, "a_b_c_d", SafeSheetName("a/b:c?d"))
	assert.Equal(t, "Report", SafeSheetName("  Report "))
	assert.Len(t, []rune(SafeSheetName("this sheet name is far too long for excel")), 31)
}
