package xlmedia

import (
	"fmt"
	"log/slog"
)

// Workbook owns the image registry and the worksheets that place those images.
type Workbook struct {
	opts     *Options
	registry *Registry
	sheets   []*Worksheet
	byName   map[string]*Worksheet
}

// NewWorkbook creates an empty workbook.
func NewWorkbook(opts ...Option) *Workbook {
	return &Workbook{
		opts:     buildOptions(opts),
		registry: NewRegistry(),
		byName:   make(map[string]*Worksheet),
	}
}

// Registry returns the workbook's image registry.
func (wb *Workbook) Registry() *Registry {
	return wb.registry
}

func (wb *Workbook) log() *slog.Logger {
	return wb.opts.logger
}

// AddImage registers image bytes and returns their reference. The same
// bytes and extension (case-insensitive) always yield the same reference.
func (wb *Workbook) AddImage(data []byte, ext string) ImageID {
	id, dup := wb.registry.register(data, ext)
	if dup {
		wb.log().Debug("image already registered", "imageId", int(id))
	} else {
		wb.log().Debug("image registered", "imageId", int(id), "extension", NormalizeExtension(ext), "bytes", len(data))
	}
	return id
}

// AddImageBase64 registers a base64 or data-URL encoded image.
func (wb *Workbook) AddImageBase64(s, ext string) (ImageID, error) {
	return wb.registry.RegisterBase64(s, ext)
}

// Image returns the registered payload for id.
func (wb *Workbook) Image(id ImageID) (Media, error) {
	return wb.registry.Get(id)
}

// ExportImages returns every registered payload once, in ID order.
func (wb *Workbook) ExportImages() []Media {
	return wb.registry.List()
}

// AddWorksheet creates a worksheet. The name is sanitized with SafeSheetName.
func (wb *Workbook) AddWorksheet(name string) (*Worksheet, error) {
	name = SafeSheetName(name)
	if name == "" {
		return nil, fmt.Errorf("worksheet name is required")
	}
	if _, ok := wb.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetExists, name)
	}
	ws := newWorksheet(name, wb.opts)
	wb.sheets = append(wb.sheets, ws)
	wb.byName[name] = ws
	return ws, nil
}

// Worksheet looks up a worksheet by name.
func (wb *Workbook) Worksheet(name string) (*Worksheet, bool) {
	ws, ok := wb.byName[name]
	return ws, ok
}

// Worksheets returns the worksheets in creation order.
func (wb *Workbook) Worksheets() []*Worksheet {
	out := make([]*Worksheet, len(wb.sheets))
	copy(out, wb.sheets)
	return out
}

// RemoveWorksheet drops a worksheet and all of its placements. Registered
// images stay in the registry.
func (wb *Workbook) RemoveWorksheet(name string) bool {
	ws, ok := wb.byName[name]
	if !ok {
		return false
	}
	delete(wb.byName, name)
	for i, s := range wb.sheets {
		if s == ws {
			wb.sheets = append(wb.sheets[:i], wb.sheets[i+1:]...)
			break
		}
	}
	return true
}

// MediaModel is the transfer form of a registry entry.
type MediaModel struct {
	ID        ImageID `json:"id"`
	Extension string  `json:"extension"`
	Data      []byte  `json:"data"`
}

// WorkbookModel is the transfer form of a whole workbook.
type WorkbookModel struct {
	Media      []MediaModel `json:"media"`
	Worksheets []SheetModel `json:"worksheets"`
}

// Model exports the registry and every worksheet.
func (wb *Workbook) Model() (WorkbookModel, error) {
	m := WorkbookModel{Media: []MediaModel{}, Worksheets: []SheetModel{}}
	for _, e := range wb.registry.List() {
		m.Media = append(m.Media, MediaModel{ID: e.ID, Extension: e.Extension, Data: e.Data})
	}
	for _, ws := range wb.sheets {
		sm, err := ws.Model()
		if err != nil {
			return WorkbookModel{}, err
		}
		m.Worksheets = append(m.Worksheets, sm)
	}
	return m, nil
}

// NewWorkbookFromModel rebuilds a workbook from its transfer form. Image
// references in the model keep their values.
func NewWorkbookFromModel(m WorkbookModel, opts ...Option) (*Workbook, error) {
	wb := NewWorkbook(opts...)
	entries := make([]Media, len(m.Media))
	for i, mm := range m.Media {
		entries[i] = Media{ID: mm.ID, Data: mm.Data, Extension: mm.Extension}
	}
	if err := wb.registry.restore(entries); err != nil {
		return nil, err
	}
	for _, sm := range m.Worksheets {
		ws, err := wb.AddWorksheet(sm.Name)
		if err != nil {
			return nil, err
		}
		if err := ws.ImportPlacements(sm.Media); err != nil {
			return nil, err
		}
	}
	return wb, nil
}
