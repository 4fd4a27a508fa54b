package xlmedia

import "math"

// EMUPerPixel is the number of English Metric Units per pixel at 96 DPI.
const EMUPerPixel = 9525

// Default cell dimensions in EMU, used when no layout is supplied.
const (
	DefaultColumnWidthEMU int64 = 640000
	DefaultRowHeightEMU   int64 = 180000
)

// Position is a grid coordinate. The integer part selects the cell (0-based)
// and the fraction is the offset inside it, 0.0 being the cell's leading edge.
type Position struct {
	Col float64 `json:"col"`
	Row float64 `json:"row"`
}

// EdgeMode tells NewAnchor which cell edge a coordinate refers to.
type EdgeMode int

const (
	// EdgeNone uses the coordinate verbatim.
	EdgeNone EdgeMode = iota
	// EdgeStart snaps a 1-based range bound to the leading edge of its cell.
	EdgeStart
	// EdgeEnd snaps a 1-based range bound to the trailing edge of its cell.
	EdgeEnd
)

func (m EdgeMode) offset() float64 {
	if m == EdgeStart {
		return -1
	}
	return 0
}

// Anchor is one corner of an image placement.
type Anchor struct {
	Col  float64
	Row  float64
	Edge EdgeMode
}

// NewAnchor builds an anchor from a position. For EdgeStart and EdgeEnd the
// position is expected to hold 1-based bounds from a RangeDecoder.
func NewAnchor(pos Position, mode EdgeMode) Anchor {
	off := mode.offset()
	return Anchor{Col: pos.Col + off, Row: pos.Row + off, Edge: mode}
}

// AnchorsFromBounds returns the top-left and bottom-right anchors covering b.
func AnchorsFromBounds(b Bounds) (tl, br Anchor) {
	tl = NewAnchor(Position{Col: float64(b.Left), Row: float64(b.Top)}, EdgeStart)
	br = NewAnchor(Position{Col: float64(b.Right), Row: float64(b.Bottom)}, EdgeEnd)
	return tl, br
}

// Model flattens the anchor to a plain {col,row} pair.
func (a Anchor) Model() Position {
	return Position{Col: a.Col, Row: a.Row}
}

// Layout supplies column widths and row heights in EMU.
type Layout interface {
	ColumnWidth(col int) int64
	RowHeight(row int) int64
}

// DefaultLayout reports the same width for every column and height for every row.
type DefaultLayout struct{}

// ColumnWidth returns DefaultColumnWidthEMU for every column.
func (DefaultLayout) ColumnWidth(int) int64 { return DefaultColumnWidthEMU }

// RowHeight returns DefaultRowHeightEMU for every row.
func (DefaultLayout) RowHeight(int) int64 { return DefaultRowHeightEMU }

// NativeAnchor is the container form of an anchor: whole cell indexes plus
// offsets into those cells in EMU.
type NativeAnchor struct {
	Col    int
	ColOff int64
	Row    int
	RowOff int64
}

// Native converts the anchor into cell indexes and EMU offsets using layout.
// A nil layout means DefaultLayout.
func (a Anchor) Native(layout Layout) NativeAnchor {
	if layout == nil {
		layout = DefaultLayout{}
	}
	col, colFrac := math.Modf(a.Col)
	row, rowFrac := math.Modf(a.Row)
	n := NativeAnchor{Col: int(col), Row: int(row)}
	n.ColOff = int64(math.Floor(colFrac * float64(layout.ColumnWidth(n.Col))))
	n.RowOff = int64(math.Floor(rowFrac * float64(layout.RowHeight(n.Row))))
	return n
}

// AnchorFromNative converts container coordinates back into an anchor.
// Offsets are clamped to the cell they belong to.
func AnchorFromNative(n NativeAnchor, layout Layout) Anchor {
	if layout == nil {
		layout = DefaultLayout{}
	}
	return Anchor{
		Col: float64(n.Col) + cellFraction(n.ColOff, layout.ColumnWidth(n.Col)),
		Row: float64(n.Row) + cellFraction(n.RowOff, layout.RowHeight(n.Row)),
	}
}

func cellFraction(off, size int64) float64 {
	if size <= 0 || off <= 0 {
		return 0
	}
	return float64(min(size-1, off)) / float64(size)
}
