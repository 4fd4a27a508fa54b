package xlmedia

import "strings"

// Hyperlinks is the click target attached to an image placement.
type Hyperlinks struct {
	Hyperlink string `json:"hyperlink,omitempty" yaml:"hyperlink,omitempty"`
	Tooltip   string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

// IsInternal reports whether the target is a location inside the workbook
// ("#Sheet2!A1") rather than an external URL.
func (h Hyperlinks) IsInternal() bool {
	return strings.HasPrefix(h.Hyperlink, "#")
}

// Location returns the in-workbook target without its leading '#'.
func (h Hyperlinks) Location() string {
	return strings.TrimPrefix(h.Hyperlink, "#")
}

func (h *Hyperlinks) clone() *Hyperlinks {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}
