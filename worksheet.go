package xlmedia

import (
	"fmt"
	"log/slog"
)

// maxIDAttempts bounds how often a generator may repeat an issued id before AddImage gives up.
const maxIDAttempts = 64

// Worksheet tracks the image placements of one sheet: an ordered list of
// anchored images plus a single background slot. A Worksheet is not safe
// for concurrent mutation.
type Worksheet struct {
	name       string
	opts       *Options
	images     []*ImagePlacement
	background *BackgroundPlacement
	issued     map[string]struct{} // every sheetImageId ever used here
}

func newWorksheet(name string, opts *Options) *Worksheet {
	return &Worksheet{
		name:   name,
		opts:   opts,
		issued: make(map[string]struct{}),
	}
}

// Name returns the worksheet name.
func (ws *Worksheet) Name() string {
	return ws.name
}

func (ws *Worksheet) log() *slog.Logger {
	return ws.opts.logger.With("sheet", ws.name)
}

// nextID returns a sheetImageId that was never issued on this worksheet
// and records it as issued.
func (ws *Worksheet) nextID() (string, error) {
	id, err := ws.freshID(nil)
	if err != nil {
		return "", err
	}
	ws.issued[id] = struct{}{}
	return id, nil
}

// freshID draws a candidate that is neither issued nor in pending. It does
// not record the result.
func (ws *Worksheet) freshID(pending map[string]struct{}) (string, error) {
	for range maxIDAttempts {
		id := ws.opts.newID()
		if id == "" {
			continue
		}
		_, taken := ws.issued[id]
		_, held := pending[id]
		if !taken && !held {
			return id, nil
		}
	}
	return "", fmt.Errorf("sheet %q: id generator keeps returning issued ids", ws.name)
}

// resolve turns a caller-supplied range into validated geometry.
func (ws *Worksheet) resolve(r Range) (Geometry, error) {
	if r.Address == "" && r.EditAs == "" {
		if r.BR != nil {
			r.EditAs = TwoCell
		} else {
			r.EditAs = ws.opts.defaultEditAs
		}
	}
	g, err := geometryFromRange(r, nil, ws.opts.rangeDecoder)
	if err != nil {
		return Geometry{}, err
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// AddImage anchors a registered image and returns the new placement's
// sheetImageId. r may be a textual range such as "C3:E6", which always
// resolves to a oneCell anchor, or a structured anchor.
func (ws *Worksheet) AddImage(id ImageID, r Range) (string, error) {
	g, err := ws.resolve(r)
	if err != nil {
		return "", fmt.Errorf("add image to sheet %q: %w", ws.name, err)
	}
	sid, err := ws.nextID()
	if err != nil {
		return "", err
	}
	ws.images = append(ws.images, &ImagePlacement{SheetImageID: sid, ImageID: id, Range: g})
	ws.log().Debug("image placed", "sheetImageId", sid, "imageId", int(id), "editAs", string(g.EditAs))
	return sid, nil
}

// SetBackground makes id the worksheet background, discarding any previous one.
func (ws *Worksheet) SetBackground(id ImageID) (string, error) {
	sid, err := ws.nextID()
	if err != nil {
		return "", err
	}
	if ws.background != nil {
		ws.log().Debug("background replaced", "previous", ws.background.SheetImageID)
	}
	ws.background = &BackgroundPlacement{SheetImageID: sid, ImageID: id}
	return sid, nil
}

// BackgroundImageID returns the background image reference, if one is set.
func (ws *Worksheet) BackgroundImageID() (ImageID, bool) {
	if ws.background == nil {
		return 0, false
	}
	return ws.background.ImageID, true
}

// Background returns the background placement, or nil.
func (ws *Worksheet) Background() *BackgroundPlacement {
	if ws.background == nil {
		return nil
	}
	b := *ws.background
	return &b
}

// RemoveImage removes the placement with the given sheetImageId from the
// image list or the background slot. Unknown ids are ignored. The registry
// entry and any other placement of the same image are untouched.
func (ws *Worksheet) RemoveImage(sheetImageID string) bool {
	if ws.background != nil && ws.background.SheetImageID == sheetImageID {
		ws.background = nil
		ws.log().Debug("background removed", "sheetImageId", sheetImageID)
		return true
	}
	for i, p := range ws.images {
		if p.SheetImageID == sheetImageID {
			ws.images = append(ws.images[:i], ws.images[i+1:]...)
			ws.log().Debug("image removed", "sheetImageId", sheetImageID)
			return true
		}
	}
	return false
}

// Images returns copies of the anchored placements in insertion order.
func (ws *Worksheet) Images() []ImagePlacement {
	out := make([]ImagePlacement, len(ws.images))
	for i, p := range ws.images {
		out[i] = ImagePlacement{SheetImageID: p.SheetImageID, ImageID: p.ImageID, Range: p.Range.clone()}
	}
	return out
}

// Image returns a copy of the anchored placement with the given sheetImageId.
func (ws *Worksheet) Image(sheetImageID string) (ImagePlacement, bool) {
	for _, p := range ws.images {
		if p.SheetImageID == sheetImageID {
			return ImagePlacement{SheetImageID: p.SheetImageID, ImageID: p.ImageID, Range: p.Range.clone()}, true
		}
	}
	return ImagePlacement{}, false
}

// Len returns the number of anchored placements, not counting the background.
func (ws *Worksheet) Len() int {
	return len(ws.images)
}

// ExportPlacements returns the models of all anchored placements in order.
func (ws *Worksheet) ExportPlacements() ([]Model, error) {
	models := make([]Model, 0, len(ws.images))
	for _, p := range ws.images {
		m, err := ToModel(p)
		if err != nil {
			return nil, &PlacementError{Sheet: ws.name, SheetImageID: p.SheetImageID, Err: err}
		}
		models = append(models, m)
	}
	return models, nil
}

// ExportBackground returns the background model, or nil when none is set.
func (ws *Worksheet) ExportBackground() (*Model, error) {
	if ws.background == nil {
		return nil, nil
	}
	m, err := ToModel(ws.background)
	if err != nil {
		return nil, &PlacementError{Sheet: ws.name, SheetImageID: ws.background.SheetImageID, Err: err}
	}
	return &m, nil
}

// SheetModel is the transfer form of a worksheet's placements. The
// background, when set, is part of Media like any other placement.
type SheetModel struct {
	Name  string  `json:"name"`
	Media []Model `json:"media"`
}

// Model exports the worksheet, background first.
func (ws *Worksheet) Model() (SheetModel, error) {
	sm := SheetModel{Name: ws.name, Media: []Model{}}
	bg, err := ws.ExportBackground()
	if err != nil {
		return SheetModel{}, err
	}
	if bg != nil {
		sm.Media = append(sm.Media, *bg)
	}
	images, err := ws.ExportPlacements()
	if err != nil {
		return SheetModel{}, err
	}
	sm.Media = append(sm.Media, images...)
	return sm, nil
}

// ImportPlacements appends placements rebuilt from models. Either every
// model is imported or none is. Incoming sheetImageIds are kept; missing
// ones are generated. A background model replaces the current background.
func (ws *Worksheet) ImportPlacements(models []Model) error {
	var (
		images     []*ImagePlacement
		background *BackgroundPlacement
		batch      = make(map[string]struct{}, len(models))
	)
	for _, m := range models {
		p, err := FromModel(m, ws.opts.rangeDecoder)
		if err != nil {
			return &PlacementError{Sheet: ws.name, SheetImageID: m.SheetImageID, Err: err}
		}
		if sid := p.ID(); sid != "" {
			_, seen := batch[sid]
			_, issued := ws.issued[sid]
			if seen || issued {
				return &PlacementError{Sheet: ws.name, SheetImageID: sid, Err: ErrDuplicateSheetImageID}
			}
			batch[sid] = struct{}{}
		}
		switch v := p.(type) {
		case *ImagePlacement:
			images = append(images, v)
		case *BackgroundPlacement:
			background = v
		}
	}

	// Draw missing ids before touching the worksheet so a failure leaves it unchanged.
	assign := func(sid *string) error {
		if *sid != "" {
			return nil
		}
		id, err := ws.freshID(batch)
		if err != nil {
			return err
		}
		batch[id] = struct{}{}
		*sid = id
		return nil
	}
	for _, p := range images {
		if err := assign(&p.SheetImageID); err != nil {
			return &PlacementError{Sheet: ws.name, Err: err}
		}
	}
	if background != nil {
		if err := assign(&background.SheetImageID); err != nil {
			return &PlacementError{Sheet: ws.name, Err: err}
		}
	}

	for sid := range batch {
		ws.issued[sid] = struct{}{}
	}
	if background != nil {
		ws.background = background
	}
	ws.images = append(ws.images, images...)
	ws.log().Debug("placements imported", "images", len(images), "background", background != nil)
	return nil
}
