package xlmedia

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestPNG generates a solid w×h PNG in the given color.
func createTestPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// sequentialIDs returns a generator yielding "img1", "img2", ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "img" + strconv.Itoa(n)
	}
}

// newTestSheet creates a workbook with deterministic ids and one sheet.
func newTestSheet(t *testing.T, opts ...Option) (*Workbook, *Worksheet) {
	t.Helper()
	wb := NewWorkbook(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
	ws, err := wb.AddWorksheet("blort")
	require.NoError(t, err)
	return wb, ws
}

func pos(col, row float64) *Position {
	return &Position{Col: col, Row: row}
}
