package xlmedia

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the registry and every
// worksheet's placements. Useful for debugging imports.
func (wb *Workbook) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Images: %d\n", wb.registry.Len())
	for _, m := range wb.registry.List() {
		fmt.Fprintf(&b, "  #%d %s %d bytes %s\n", m.ID, m.Extension, len(m.Data), shortDigest(m.Digest))
	}
	for _, ws := range wb.sheets {
		describeSheet(&b, ws, ws.images)
	}
	return b.String()
}

// describeSheet writes one worksheet block listing the given placements.
func describeSheet(b *strings.Builder, ws *Worksheet, images []*ImagePlacement) {
	fmt.Fprintf(b, "Sheet %s (%d images)\n", ws.name, len(images))
	if ws.background != nil {
		fmt.Fprintf(b, "  background #%d [%s]\n", ws.background.ImageID, ws.background.SheetImageID)
	}
	for _, p := range images {
		fmt.Fprintf(b, "  image #%d [%s] %s\n", p.ImageID, p.SheetImageID, describeGeometry(p.Range))
	}
}

// describeGeometry formats an anchor as "oneCell C3+(0.00,0.00) → F7" or
// "absolute A1+(0.11,0.40) 100x100px".
func describeGeometry(g Geometry) string {
	var parts []string
	parts = append(parts, string(g.EditAs), describeAnchor(g.TL))
	if g.BR != nil {
		parts = append(parts, "→", describeAnchor(*g.BR))
	}
	if g.Ext != nil {
		parts = append(parts, fmt.Sprintf("%gx%gpx", g.Ext.Width, g.Ext.Height))
	}
	if g.Hyperlinks != nil && g.Hyperlinks.Hyperlink != "" {
		parts = append(parts, fmt.Sprintf("link=%q", g.Hyperlinks.Hyperlink))
		if g.Hyperlinks.Tooltip != "" {
			parts = append(parts, fmt.Sprintf("tooltip=%q", g.Hyperlinks.Tooltip))
		}
	}
	return strings.Join(parts, " ")
}

func describeAnchor(a Anchor) string {
	col, row := int(a.Col), int(a.Row)
	cell := NewCellRef("", row, col).CellName()
	colOff, rowOff := a.Col-float64(col), a.Row-float64(row)
	if colOff == 0 && rowOff == 0 {
		return cell
	}
	return fmt.Sprintf("%s+(%.2f,%.2f)", cell, colOff, rowOff)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
