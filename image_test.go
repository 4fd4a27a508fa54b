package xlmedia

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToModel_Background(t *testing.T) {
	m, err := ToModel(&BackgroundPlacement{SheetImageID: "bg", ImageID: 3})
	require.NoError(t, err)
	assert.Equal(t, Model{Type: TypeBackground, ImageID: 3, SheetImageID: "bg"}, m)
	assert.Nil(t, m.Range)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"background","imageId":3,"sheetImageId":"bg"}`, string(raw))
}

func TestToModel_Image(t *testing.T) {
	br := Anchor{Col: 5, Row: 6}
	p := &ImagePlacement{
		SheetImageID: "a",
		ImageID:      1,
		Range: Geometry{
			TL:         Anchor{Col: 2, Row: 2, Edge: EdgeStart},
			BR:         &br,
			EditAs:     OneCell,
			Hyperlinks: &Hyperlinks{Hyperlink: "https://example.com", Tooltip: "go"},
		},
	}
	m, err := ToModel(p)
	require.NoError(t, err)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "image",
		"imageId": 1,
		"hyperlinks": {"hyperlink": "https://example.com", "tooltip": "go"},
		"sheetImageId": "a",
		"range": {"tl": {"col": 2, "row": 2}, "br": {"col": 5, "row": 6}, "editAs": "oneCell"}
	}`, string(raw))
}

func TestToModel_OmitsBRWhenAbsent(t *testing.T) {
	p := &ImagePlacement{
		SheetImageID: "a",
		Range:        Geometry{TL: Anchor{}, Ext: &Extent{Width: 100, Height: 100}, EditAs: Absolute},
	}
	m, err := ToModel(p)
	require.NoError(t, err)
	require.NotNil(t, m.Range)
	assert.Nil(t, m.Range.BR)
	assert.Equal(t, &Extent{Width: 100, Height: 100}, m.Range.Ext)
}

func TestToModel_InvalidType(t *testing.T) {
	var nilImage *ImagePlacement
	for _, p := range []Placement{nil, nilImage} {
		_, err := ToModel(p)
		assert.True(t, errors.Is(err, ErrInvalidImageType))
	}
}

func TestFromModel_TextualRange(t *testing.T) {
	p, err := FromModel(Model{
		Type:  TypeImage,
		Range: &Range{Address: "C3:E6", EditAs: TwoCell},
	}, nil)
	require.NoError(t, err)

	img, ok := p.(*ImagePlacement)
	require.True(t, ok)
	assert.Equal(t, OneCell, img.Range.EditAs)
	assert.Equal(t, Position{Col: 2, Row: 2}, img.Range.TL.Model())
	require.NotNil(t, img.Range.BR)
	assert.Equal(t, Position{Col: 5, Row: 6}, img.Range.BR.Model())
	assert.Nil(t, img.Range.Ext)
}

func TestFromModel_StructuredRange(t *testing.T) {
	rangeLinks := &Hyperlinks{Hyperlink: "https://range.example"}
	m := Model{
		Type:         TypeImage,
		ImageID:      4,
		SheetImageID: "x",
		Range: &Range{
			TL:         Position{Col: 0.1125, Row: 0.4},
			BR:         pos(2.101046875, 3.4),
			EditAs:     OneCell,
			Hyperlinks: rangeLinks,
		},
	}

	p, err := FromModel(m, nil)
	require.NoError(t, err)
	img := p.(*ImagePlacement)
	assert.Equal(t, "x", img.SheetImageID)
	assert.Equal(t, ImageID(4), img.ImageID)
	assert.Equal(t, 0.1125, img.Range.TL.Col)
	assert.Equal(t, 2.101046875, img.Range.BR.Col)
	assert.Equal(t, EdgeNone, img.Range.TL.Edge)
	assert.Equal(t, rangeLinks, img.Range.Hyperlinks)

	// A top-level hyperlink wins over the one nested in the range.
	m.Hyperlinks = &Hyperlinks{Hyperlink: "https://top.example"}
	p, err = FromModel(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://top.example", p.(*ImagePlacement).Range.Hyperlinks.Hyperlink)
}

func TestFromModel_Background(t *testing.T) {
	p, err := FromModel(Model{Type: TypeBackground, ImageID: 2, SheetImageID: "bg"}, nil)
	require.NoError(t, err)
	bg, ok := p.(*BackgroundPlacement)
	require.True(t, ok)
	assert.Equal(t, ImageID(2), bg.ImageRef())
	assert.Equal(t, TypeBackground, bg.Type())
}

func TestFromModel_Errors(t *testing.T) {
	_, err := FromModel(Model{Type: "sticker", Range: &Range{Address: "A1"}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidImageType))

	_, err = FromModel(Model{Type: TypeImage, Range: &Range{Address: "nope"}}, nil)
	assert.True(t, errors.Is(err, ErrMalformedRange))

	_, err = FromModel(Model{Type: TypeImage}, nil)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestModel_RoundTrip(t *testing.T) {
	br := Anchor{Col: 2.101046875, Row: 3.4}
	placements := []Placement{
		&BackgroundPlacement{SheetImageID: "bg", ImageID: 0},
		&ImagePlacement{SheetImageID: "two", ImageID: 1, Range: Geometry{
			TL: Anchor{Col: 0.1125, Row: 0.4}, BR: &br, EditAs: TwoCell,
		}},
		&ImagePlacement{SheetImageID: "abs", ImageID: 1, Range: Geometry{
			TL: Anchor{Col: 0.1125, Row: 0.4}, Ext: &Extent{Width: 100, Height: 100}, EditAs: Absolute,
			Hyperlinks: &Hyperlinks{Hyperlink: "http://www.somewhere.com", Tooltip: "www.somewhere.com"},
		}},
	}

	for _, d := range placements {
		first, err := ToModel(d)
		require.NoError(t, err)

		// Through JSON as well, the way the container layer exchanges it.
		raw, err := json.Marshal(first)
		require.NoError(t, err)
		var decoded Model
		require.NoError(t, json.Unmarshal(raw, &decoded))

		back, err := FromModel(decoded, nil)
		require.NoError(t, err)
		second, err := ToModel(back)
		require.NoError(t, err)
		assert.Equal(t, first, second, d.ID())
	}
}

func TestRange_UnmarshalJSON(t *testing.T) {
	var r Range
	require.NoError(t, json.Unmarshal([]byte(`"C3:E6"`), &r))
	assert.Equal(t, Range{Address: "C3:E6"}, r)

	require.NoError(t, json.Unmarshal([]byte(`{"tl":{"col":1,"row":2},"ext":{"width":10,"height":20},"editAs":"absolute"}`), &r))
	assert.Equal(t, "", r.Address)
	assert.Equal(t, Position{Col: 1, Row: 2}, r.TL)
	assert.Equal(t, &Extent{Width: 10, Height: 20}, r.Ext)
	assert.Equal(t, Absolute, r.EditAs)

	raw, err := json.Marshal(Range{Address: "A1:B2"})
	require.NoError(t, err)
	assert.Equal(t, `"A1:B2"`, string(raw))
}

func TestGeometry_Validate(t *testing.T) {
	br := &Anchor{Col: 3, Row: 3}
	ext := &Extent{Width: 10, Height: 10}
	tests := []struct {
		name string
		g    Geometry
		ok   bool
	}{
		{"twoCell with br", Geometry{BR: br, EditAs: TwoCell}, true},
		{"oneCell with br", Geometry{BR: br, EditAs: OneCell}, true},
		{"oneCell with ext", Geometry{Ext: ext, EditAs: OneCell}, true},
		{"absolute with ext", Geometry{Ext: ext, EditAs: Absolute}, true},
		{"twoCell without br", Geometry{Ext: ext, EditAs: TwoCell}, false},
		{"absolute without ext", Geometry{BR: br, EditAs: Absolute}, false},
		{"neither", Geometry{EditAs: OneCell}, false},
		{"both", Geometry{BR: br, Ext: ext, EditAs: OneCell}, false},
		{"unknown editAs", Geometry{BR: br, EditAs: "floating"}, false},
		{"negative extent", Geometry{Ext: &Extent{Width: -1, Height: 1}, EditAs: OneCell}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidGeometry), "%v", err)
			}
		})
	}
}

func TestEditAs_Behaviour(t *testing.T) {
	assert.True(t, TwoCell.MovesWithCells())
	assert.True(t, TwoCell.ResizesWithCells())
	assert.True(t, OneCell.MovesWithCells())
	assert.False(t, OneCell.ResizesWithCells())
	assert.False(t, Absolute.MovesWithCells())
	assert.False(t, Absolute.ResizesWithCells())
}
