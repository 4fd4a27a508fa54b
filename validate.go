package xlmedia

import (
	"fmt"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // The container layer cannot write this placement
	SeverityWarning                 // Written, but probably not what was intended
)

// ValidationIssue is a single problem found in a workbook's placements.
type ValidationIssue struct {
	Severity     Severity
	Sheet        string
	SheetImageID string
	Message      string
}

// String formats the issue as "[ERROR] Sheet1/<id>: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s/%s: %s", sev, v.Sheet, v.SheetImageID, v.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate cross-checks every worksheet against the registry and the
// geometry rules. It never modifies the workbook.
func (wb *Workbook) Validate() []ValidationIssue {
	var issues []ValidationIssue
	for _, ws := range wb.sheets {
		issues = append(issues, wb.validateBackground(ws)...)
		issues = append(issues, wb.validateImages(ws)...)
	}
	return issues
}

func (wb *Workbook) validateBackground(ws *Worksheet) []ValidationIssue {
	bg := ws.background
	if bg == nil || wb.registry.Has(bg.ImageID) {
		return nil
	}
	return []ValidationIssue{{
		Severity:     SeverityError,
		Sheet:        ws.name,
		SheetImageID: bg.SheetImageID,
		Message:      fmt.Sprintf("background references unregistered image %d", bg.ImageID),
	}}
}

func (wb *Workbook) validateImages(ws *Worksheet) []ValidationIssue {
	var issues []ValidationIssue
	add := func(sev Severity, p *ImagePlacement, format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Severity:     sev,
			Sheet:        ws.name,
			SheetImageID: p.SheetImageID,
			Message:      fmt.Sprintf(format, args...),
		})
	}

	for _, p := range ws.images {
		if !wb.registry.Has(p.ImageID) {
			add(SeverityError, p, "references unregistered image %d", p.ImageID)
		}
		g := p.Range
		if err := g.Validate(); err != nil {
			add(SeverityError, p, "%v", err)
			continue
		}
		if g.TL.Col < 0 || g.TL.Row < 0 {
			add(SeverityError, p, "top-left anchor (%g,%g) is outside the sheet", g.TL.Col, g.TL.Row)
		}
		if g.BR != nil && (g.BR.Col <= g.TL.Col || g.BR.Row <= g.TL.Row) {
			add(SeverityWarning, p, "bottom-right anchor (%g,%g) does not lie below and right of top-left (%g,%g)",
				g.BR.Col, g.BR.Row, g.TL.Col, g.TL.Row)
		}
		if g.Ext != nil && (g.Ext.Width == 0 || g.Ext.Height == 0) {
			add(SeverityWarning, p, "extent %gx%g has zero area", g.Ext.Width, g.Ext.Height)
		}
		if g.Hyperlinks != nil && g.Hyperlinks.Hyperlink == "" && g.Hyperlinks.Tooltip != "" {
			add(SeverityWarning, p, "tooltip without hyperlink is not shown")
		}
	}
	return issues
}
