package xlmedia

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PlacementType discriminates the two kinds of placement.
type PlacementType string

const (
	TypeImage      PlacementType = "image"      // anchored to the grid
	TypeBackground PlacementType = "background" // tiled behind the sheet, no geometry
)

// EditAs controls how an image follows the cells it is anchored to.
type EditAs string

const (
	TwoCell  EditAs = "twoCell"  // moves and resizes with cells
	OneCell  EditAs = "oneCell"  // moves with cells, keeps its size
	Absolute EditAs = "absolute" // fixed on the page
)

// Valid reports whether e is one of the known modes.
func (e EditAs) Valid() bool {
	switch e {
	case TwoCell, OneCell, Absolute:
		return true
	}
	return false
}

// MovesWithCells reports whether the image follows inserted/deleted rows and columns.
func (e EditAs) MovesWithCells() bool { return e == TwoCell || e == OneCell }

// ResizesWithCells reports whether the image stretches with its cells.
func (e EditAs) ResizesWithCells() bool { return e == TwoCell }

// Extent is an absolute image size in pixels.
type Extent struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Range is the transferable geometry of an image placement. It is either a
// textual cell range (Address, e.g. "C3:E6") or a structured anchor.
type Range struct {
	Address    string
	TL         Position
	BR         *Position
	Ext        *Extent
	EditAs     EditAs
	Hyperlinks *Hyperlinks
}

type rangeJSON struct {
	TL         Position    `json:"tl"`
	BR         *Position   `json:"br,omitempty"`
	Ext        *Extent     `json:"ext,omitempty"`
	EditAs     EditAs      `json:"editAs,omitempty"`
	Hyperlinks *Hyperlinks `json:"hyperlinks,omitempty"`
}

// MarshalJSON writes a textual range as a string and a structured one as an object.
func (r Range) MarshalJSON() ([]byte, error) {
	if r.Address != "" {
		return json.Marshal(r.Address)
	}
	return json.Marshal(rangeJSON{TL: r.TL, BR: r.BR, Ext: r.Ext, EditAs: r.EditAs, Hyperlinks: r.Hyperlinks})
}

// UnmarshalJSON accepts either "C3:E6" or {"tl":...,"br":...}.
func (r *Range) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*r = Range{}
		return json.Unmarshal(data, &r.Address)
	}
	var v rangeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Range{TL: v.TL, BR: v.BR, Ext: v.Ext, EditAs: v.EditAs, Hyperlinks: v.Hyperlinks}
	return nil
}

// Geometry is the resolved, in-memory anchor of an image placement.
type Geometry struct {
	TL         Anchor
	BR         *Anchor
	Ext        *Extent
	EditAs     EditAs
	Hyperlinks *Hyperlinks
}

// Validate checks that exactly one of BR or Ext is set and that it matches EditAs.
func (g Geometry) Validate() error {
	switch {
	case !g.EditAs.Valid():
		return fmt.Errorf("%w: unknown editAs %q", ErrInvalidGeometry, g.EditAs)
	case g.BR == nil && g.Ext == nil:
		return fmt.Errorf("%w: one of br or ext is required", ErrInvalidGeometry)
	case g.BR != nil && g.Ext != nil:
		return fmt.Errorf("%w: br and ext are mutually exclusive", ErrInvalidGeometry)
	case g.EditAs == TwoCell && g.BR == nil:
		return fmt.Errorf("%w: twoCell requires br", ErrInvalidGeometry)
	case g.EditAs == Absolute && g.Ext == nil:
		return fmt.Errorf("%w: absolute requires ext", ErrInvalidGeometry)
	case g.Ext != nil && (g.Ext.Width < 0 || g.Ext.Height < 0):
		return fmt.Errorf("%w: negative extent", ErrInvalidGeometry)
	}
	return nil
}

func (g Geometry) clone() Geometry {
	c := g
	if g.BR != nil {
		br := *g.BR
		c.BR = &br
	}
	if g.Ext != nil {
		ext := *g.Ext
		c.Ext = &ext
	}
	c.Hyperlinks = g.Hyperlinks.clone()
	return c
}

// Placement is one occurrence of a registered image on a worksheet.
// It is implemented only by *ImagePlacement and *BackgroundPlacement.
type Placement interface {
	// Type returns the discriminator used in the model form.
	Type() PlacementType
	// ID returns the sheetImageId, empty until the worksheet assigns one.
	ID() string
	// ImageRef returns the registry entry the placement shows.
	ImageRef() ImageID
	placement()
}

// ImagePlacement is an image anchored to the grid.
type ImagePlacement struct {
	SheetImageID string
	ImageID      ImageID
	Range        Geometry
}

// Type returns TypeImage.
func (p *ImagePlacement) Type() PlacementType { return TypeImage }

// ID returns the sheetImageId.
func (p *ImagePlacement) ID() string { return p.SheetImageID }

// ImageRef returns the referenced registry entry.
func (p *ImagePlacement) ImageRef() ImageID { return p.ImageID }

func (p *ImagePlacement) placement() {}

// BackgroundPlacement is the worksheet's background image. It has no geometry.
type BackgroundPlacement struct {
	SheetImageID string
	ImageID      ImageID
}

// Type returns TypeBackground.
func (p *BackgroundPlacement) Type() PlacementType { return TypeBackground }

// ID returns the sheetImageId.
func (p *BackgroundPlacement) ID() string { return p.SheetImageID }

// ImageRef returns the referenced registry entry.
func (p *BackgroundPlacement) ImageRef() ImageID { return p.ImageID }

func (p *BackgroundPlacement) placement() {}

// Model is the transfer form of a placement exchanged with the container layer.
type Model struct {
	Type         PlacementType `json:"type"`
	ImageID      ImageID       `json:"imageId"`
	Hyperlinks   *Hyperlinks   `json:"hyperlinks,omitempty"`
	SheetImageID string        `json:"sheetImageId"`
	Range        *Range        `json:"range,omitempty"`
}

// ToModel exports a placement. Background placements carry no range.
func ToModel(p Placement) (Model, error) {
	switch v := p.(type) {
	case *BackgroundPlacement:
		if v == nil {
			break
		}
		return Model{Type: TypeBackground, ImageID: v.ImageID, SheetImageID: v.SheetImageID}, nil
	case *ImagePlacement:
		if v == nil {
			break
		}
		g := v.Range
		r := &Range{TL: g.TL.Model(), EditAs: g.EditAs}
		if g.BR != nil {
			br := g.BR.Model()
			r.BR = &br
		}
		if g.Ext != nil {
			ext := *g.Ext
			r.Ext = &ext
		}
		return Model{
			Type:         TypeImage,
			ImageID:      v.ImageID,
			Hyperlinks:   g.Hyperlinks.clone(),
			SheetImageID: v.SheetImageID,
			Range:        r,
		}, nil
	}
	return Model{}, fmt.Errorf("%w: %T", ErrInvalidImageType, p)
}

// FromModel rebuilds a placement from its transfer form. A textual range is
// decoded with dec (A1Decoder when nil) and always yields a oneCell anchor.
func FromModel(m Model, dec RangeDecoder) (Placement, error) {
	switch m.Type {
	case TypeBackground:
		return &BackgroundPlacement{SheetImageID: m.SheetImageID, ImageID: m.ImageID}, nil
	case TypeImage:
		if m.Range == nil {
			return nil, fmt.Errorf("%w: image placement without range", ErrInvalidGeometry)
		}
		g, err := geometryFromRange(*m.Range, m.Hyperlinks, dec)
		if err != nil {
			return nil, err
		}
		return &ImagePlacement{SheetImageID: m.SheetImageID, ImageID: m.ImageID, Range: g}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidImageType, m.Type)
	}
}

func geometryFromRange(r Range, links *Hyperlinks, dec RangeDecoder) (Geometry, error) {
	if links == nil {
		links = r.Hyperlinks
	}
	if r.Address != "" {
		if dec == nil {
			dec = A1Decoder{}
		}
		b, err := dec.Decode(r.Address)
		if err != nil {
			return Geometry{}, fmt.Errorf("decode range %q: %w", r.Address, err)
		}
		tl, br := AnchorsFromBounds(b)
		return Geometry{TL: tl, BR: &br, EditAs: OneCell, Hyperlinks: links.clone()}, nil
	}

	g := Geometry{
		TL:         NewAnchor(r.TL, EdgeNone),
		EditAs:     r.EditAs,
		Hyperlinks: links.clone(),
	}
	if r.BR != nil {
		br := NewAnchor(*r.BR, EdgeNone)
		g.BR = &br
	}
	if r.Ext != nil {
		ext := *r.Ext
		g.Ext = &ext
	}
	return g, nil
}
