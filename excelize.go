package xlmedia

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"sync"

	"github.com/xuri/excelize/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Sheet dimensions excelize reports for untouched columns and rows, and the
// pixel sizes it lays pictures out with for them.
const (
	excelizeDefaultColWidth       = 9.140625
	excelizeDefaultColWidthPixels = 64
	excelizeDefaultRowHeight      = 15
	excelizeDefaultRowHeightPx    = 20
)

// excelizeLayout implements Layout from a sheet's column widths and row heights.
type excelizeLayout struct {
	file  *excelize.File
	sheet string
}

// NewExcelizeLayout returns the layout of one sheet of an excelize file.
func NewExcelizeLayout(f *excelize.File, sheet string) Layout {
	return &excelizeLayout{file: f, sheet: sheet}
}

func (l *excelizeLayout) columnPixels(col int) float64 {
	w, err := l.file.GetColWidth(l.sheet, ColToName(col))
	if err != nil || w == excelizeDefaultColWidth {
		return excelizeDefaultColWidthPixels
	}
	return float64(int(w*8 + 0.5))
}

func (l *excelizeLayout) rowPixels(row int) float64 {
	h, err := l.file.GetRowHeight(l.sheet, row+1)
	if err != nil || h == excelizeDefaultRowHeight {
		return excelizeDefaultRowHeightPx
	}
	return math.Ceil(4.0 / 3.4 * h)
}

func (l *excelizeLayout) ColumnWidth(col int) int64 {
	return int64(l.columnPixels(col)) * EMUPerPixel
}

func (l *excelizeLayout) RowHeight(row int) int64 {
	return int64(l.rowPixels(row)) * EMUPerPixel
}

// gridPixels returns the pixel distance from the sheet origin to a fractional
// grid coordinate. v is clamped to [0, limit], the number of columns or rows
// a sheet can have.
func gridPixels(v float64, limit int, size func(int) float64) float64 {
	v = math.Max(0, math.Min(v, float64(limit)))
	whole, frac := math.Modf(v)
	if frac == 0 && int(whole) == limit {
		whole, frac = whole-1, 1
	}
	var px float64
	for i := 0; i < int(whole); i++ {
		px += size(i)
	}
	return px + frac*size(int(whole))
}

// ExcelizeExporter writes a Workbook's worksheets, pictures and backgrounds
// into an excelize file.
type ExcelizeExporter struct {
	file *excelize.File

	mu sync.Mutex // protects concurrent access
}

// NewExcelizeExporter creates an exporter writing into f.
func NewExcelizeExporter(f *excelize.File) *ExcelizeExporter {
	return &ExcelizeExporter{file: f}
}

// Export creates every worksheet of wb in the file and places its images.
// The first worksheet takes over excelize's default "Sheet1" when the file
// has no other use for it.
func (x *ExcelizeExporter) Export(wb *Workbook) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i, ws := range wb.sheets {
		if err := x.ensureSheet(wb, ws.name, i == 0); err != nil {
			return err
		}
		if err := x.exportBackground(wb, ws); err != nil {
			return err
		}
		for _, p := range ws.images {
			if err := x.exportImage(wb, ws.name, p); err != nil {
				return &PlacementError{Sheet: ws.name, SheetImageID: p.SheetImageID, Err: err}
			}
		}
		wb.log().Debug("sheet exported", "sheet", ws.name, "images", len(ws.images))
	}
	return nil
}

func (x *ExcelizeExporter) ensureSheet(wb *Workbook, name string, first bool) error {
	idx, err := x.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("look up sheet %q: %w", name, err)
	}
	if idx >= 0 {
		return nil
	}
	list := x.file.GetSheetList()
	if first && len(list) == 1 && list[0] == "Sheet1" {
		if _, taken := wb.byName["Sheet1"]; !taken {
			return x.file.SetSheetName("Sheet1", name)
		}
	}
	if _, err := x.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return nil
}

func (x *ExcelizeExporter) exportBackground(wb *Workbook, ws *Worksheet) error {
	if ws.background == nil {
		return nil
	}
	media, err := wb.registry.Get(ws.background.ImageID)
	if err != nil {
		return &PlacementError{Sheet: ws.name, SheetImageID: ws.background.SheetImageID, Err: err}
	}
	if err := x.file.SetSheetBackgroundFromBytes(ws.name, "."+media.Extension, media.Data); err != nil {
		return fmt.Errorf("set background of sheet %q: %w", ws.name, err)
	}
	return nil
}

func (x *ExcelizeExporter) exportImage(wb *Workbook, sheet string, p *ImagePlacement) error {
	media, err := wb.registry.Get(p.ImageID)
	if err != nil {
		return err
	}
	layout := &excelizeLayout{file: x.file, sheet: sheet}
	g := p.Range
	if !onSheet(g.TL) {
		return fmt.Errorf("%w: top-left anchor (%g,%g) outside the sheet grid", ErrInvalidGeometry, g.TL.Col, g.TL.Row)
	}

	tl := g.TL.Native(layout)
	opts := &excelize.GraphicOptions{
		OffsetX: int(tl.ColOff / EMUPerPixel),
		OffsetY: int(tl.RowOff / EMUPerPixel),
	}
	if g.EditAs != TwoCell {
		opts.Positioning = string(g.EditAs)
	}

	var width, height float64
	switch {
	case g.Ext != nil:
		width, height = g.Ext.Width, g.Ext.Height
	case g.BR != nil:
		width = gridPixels(g.BR.Col, excelize.MaxColumns, layout.columnPixels) - gridPixels(g.TL.Col, excelize.MaxColumns, layout.columnPixels)
		height = gridPixels(g.BR.Row, excelize.TotalRows, layout.rowPixels) - gridPixels(g.TL.Row, excelize.TotalRows, layout.rowPixels)
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(media.Data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		if width > 0 {
			opts.ScaleX = width / float64(cfg.Width)
		}
		if height > 0 {
			opts.ScaleY = height / float64(cfg.Height)
		}
	}

	if h := g.Hyperlinks; h != nil {
		if h.Hyperlink != "" {
			opts.Hyperlink, opts.HyperlinkType = h.Hyperlink, "External"
			if h.IsInternal() {
				opts.Hyperlink, opts.HyperlinkType = h.Location(), "Location"
			}
		}
		opts.AltText = h.Tooltip
	}

	cell := NewCellRef("", tl.Row, tl.Col).CellName()
	return x.file.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: "." + media.Extension,
		File:      media.Data,
		Format:    opts,
	})
}

// onSheet reports whether a falls inside a cell of the largest possible sheet.
func onSheet(a Anchor) bool {
	return a.Col >= 0 && a.Row >= 0 && a.Col < excelize.MaxColumns && a.Row < excelize.TotalRows
}

// Write writes the file to w.
func (x *ExcelizeExporter) Write(w io.Writer) error {
	return x.file.Write(w)
}

// Close closes the underlying excelize file.
func (x *ExcelizeExporter) Close() error {
	return x.file.Close()
}

// File returns the underlying excelize file for advanced operations.
func (x *ExcelizeExporter) File() *excelize.File {
	return x.file
}

// ImportExcelize builds a Workbook from the pictures of an excelize file.
// Identical pictures collapse to one registry entry. Each picture becomes a
// oneCell placement at its anchor cell sized to the picture's pixel size,
// with the picture's alt text as tooltip. Cell offsets, scale, hyperlink
// targets and background images are not read back.
func ImportExcelize(f *excelize.File, opts ...Option) (*Workbook, error) {
	wb := NewWorkbook(opts...)
	for _, sheet := range f.GetSheetList() {
		ws, err := wb.AddWorksheet(sheet)
		if err != nil {
			return nil, err
		}
		cells, err := f.GetPictureCells(sheet)
		if err != nil {
			return nil, fmt.Errorf("read picture cells of sheet %q: %w", sheet, err)
		}
		for _, cell := range cells {
			if err := importCellPictures(f, wb, ws, cell); err != nil {
				return nil, err
			}
		}
	}
	return wb, nil
}

func importCellPictures(f *excelize.File, wb *Workbook, ws *Worksheet, cell string) error {
	pics, err := f.GetPictures(ws.name, cell)
	if err != nil {
		return fmt.Errorf("read pictures at %s!%s: %w", ws.name, cell, err)
	}
	ref, err := ParseCellRef(cell)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRange, err)
	}
	for _, pic := range pics {
		id := wb.AddImage(pic.File, pic.Extension)
		r := Range{
			TL:     Position{Col: float64(ref.Col), Row: float64(ref.Row)},
			EditAs: OneCell,
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(pic.File)); err == nil {
			r.Ext = &Extent{Width: float64(cfg.Width), Height: float64(cfg.Height)}
		} else {
			r.BR = &Position{Col: r.TL.Col + 1, Row: r.TL.Row + 1}
		}
		if pic.Format != nil && pic.Format.AltText != "" {
			r.Hyperlinks = &Hyperlinks{Tooltip: pic.Format.AltText}
		}
		if _, err := ws.AddImage(id, r); err != nil {
			return err
		}
	}
	return nil
}
