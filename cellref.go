package xlmedia

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef is a single cell position on a worksheet.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a reference like "A1", "Sheet1!B5", "'My Sheet'!C3" or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}

	cellPart = strings.ReplaceAll(cellPart, "$", "")
	col, row, err := splitCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// splitCellName parses "C3" into col=2, row=2.
func splitCellName(name string) (col, row int, err error) {
	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("invalid cell name: %q", name)
	}

	col, err = NameToCol(name[:i])
	if err != nil {
		return 0, 0, err
	}
	rowNum, err := strconv.Atoi(name[i:])
	if err != nil || rowNum < 1 || strings.ContainsAny(name[i:], "+-") {
		return 0, 0, fmt.Errorf("invalid row number in cell name: %q", name)
	}
	return col, rowNum - 1, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	if c.Sheet != "" {
		return c.Sheet + "!" + c.CellName()
	}
	return c.CellName()
}

// CellName returns the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	result := ""
	col++
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// AreaRef is a rectangular area between two cell references, both inclusive.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ParseAreaRef parses "A1:C5" or "Sheet1!A1:C5". A single cell yields a 1x1 area.
func ParseAreaRef(s string) (AreaRef, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)

	first, err := ParseCellRef(parts[0])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	if len(parts) == 1 {
		return AreaRef{First: first, Last: first}, nil
	}

	last, err := ParseCellRef(parts[1])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	if last.Sheet == "" {
		last.Sheet = first.Sheet
	}
	return AreaRef{First: first, Last: last}, nil
}

// String formats the AreaRef as "Sheet1!A1:C5" or "A1:C5".
func (a AreaRef) String() string {
	if a.First.Sheet != "" && a.First.Sheet == a.Last.Sheet {
		return a.First.Sheet + "!" + a.First.CellName() + ":" + a.Last.CellName()
	}
	return a.First.String() + ":" + a.Last.String()
}

// Bounds are the decoded edges of a cell range. All four values are 1-based
// and inclusive: "C3:E6" decodes to Left=3, Top=3, Right=5, Bottom=6.
type Bounds struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Bounds converts the area to 1-based bounds, normalizing reversed corners.
func (a AreaRef) Bounds() Bounds {
	return Bounds{
		Left:   min(a.First.Col, a.Last.Col) + 1,
		Top:    min(a.First.Row, a.Last.Row) + 1,
		Right:  max(a.First.Col, a.Last.Col) + 1,
		Bottom: max(a.First.Row, a.Last.Row) + 1,
	}
}

// RangeDecoder turns a textual range into bounds.
type RangeDecoder interface {
	Decode(address string) (Bounds, error)
}

// A1Decoder decodes A1-style ranges such as "C3:E6", "$B$2" or "Sheet1!A1:B2".
type A1Decoder struct{}

// Decode implements RangeDecoder. Failures wrap ErrMalformedRange.
func (A1Decoder) Decode(address string) (Bounds, error) {
	area, err := ParseAreaRef(address)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", ErrMalformedRange, err)
	}
	return area.Bounds(), nil
}

// SafeSheetName sanitizes a string for use as a worksheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		if strings.ContainsRune(`/\:*?[]`, r) {
			runes[i] = '_'
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
