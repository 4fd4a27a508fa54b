package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/javajack/xlmedia"
)

// Manifest describes a workbook to build: the images to register and,
// per sheet, where to place them.
type Manifest struct {
	Images []ManifestImage `yaml:"images"`
	Sheets []ManifestSheet `yaml:"sheets"`
}

// ManifestImage names an image payload, read from Path or given inline as
// base64 / data URL in Data. Extension defaults to the extension of Path.
type ManifestImage struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Data      string `yaml:"data"`
	Extension string `yaml:"extension"`
}

type ManifestSheet struct {
	Name       string              `yaml:"name"`
	Background string              `yaml:"background"`
	Placements []ManifestPlacement `yaml:"placements"`
}

type ManifestPlacement struct {
	Image     string        `yaml:"image"`
	Range     ManifestRange `yaml:"range"`
	Hyperlink string        `yaml:"hyperlink"`
	Tooltip   string        `yaml:"tooltip"`
}

// ManifestRange accepts either an A1 range ("C3:E6") or a mapping with
// tl, br, ext and editAs.
type ManifestRange struct {
	xlmedia.Range
}

func (r *ManifestRange) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Range = xlmedia.Range{Address: node.Value}
		return nil
	case yaml.MappingNode:
		var raw struct {
			TL     xlmedia.Position  `yaml:"tl"`
			BR     *xlmedia.Position `yaml:"br"`
			Ext    *xlmedia.Extent   `yaml:"ext"`
			EditAs string            `yaml:"editAs"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		r.Range = xlmedia.Range{TL: raw.TL, BR: raw.BR, Ext: raw.Ext, EditAs: xlmedia.EditAs(raw.EditAs)}
		return nil
	default:
		return fmt.Errorf("line %d: range must be a string or a mapping", node.Line)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// buildWorkbook registers the manifest images and places them. Relative
// image paths are resolved against baseDir.
func buildWorkbook(m *Manifest, baseDir string, opts ...xlmedia.Option) (*xlmedia.Workbook, error) {
	wb := xlmedia.NewWorkbook(opts...)
	ids := make(map[string]xlmedia.ImageID, len(m.Images))
	for i, img := range m.Images {
		if img.Name == "" {
			return nil, fmt.Errorf("images[%d]: name is required", i)
		}
		if _, dup := ids[img.Name]; dup {
			return nil, fmt.Errorf("images[%d]: duplicate name %q", i, img.Name)
		}
		id, err := registerManifestImage(wb, img, baseDir)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", img.Name, err)
		}
		ids[img.Name] = id
	}

	lookup := func(name string) (xlmedia.ImageID, error) {
		id, ok := ids[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", xlmedia.ErrNotFound, name)
		}
		return id, nil
	}

	for _, s := range m.Sheets {
		ws, err := wb.AddWorksheet(s.Name)
		if err != nil {
			return nil, err
		}
		if s.Background != "" {
			id, err := lookup(s.Background)
			if err != nil {
				return nil, fmt.Errorf("sheet %q background: %w", s.Name, err)
			}
			if _, err := ws.SetBackground(id); err != nil {
				return nil, err
			}
		}
		for i, p := range s.Placements {
			id, err := lookup(p.Image)
			if err != nil {
				return nil, fmt.Errorf("sheet %q placements[%d]: %w", s.Name, i, err)
			}
			r := p.Range.Range
			if p.Hyperlink != "" || p.Tooltip != "" {
				r.Hyperlinks = &xlmedia.Hyperlinks{Hyperlink: p.Hyperlink, Tooltip: p.Tooltip}
			}
			if _, err := ws.AddImage(id, r); err != nil {
				return nil, fmt.Errorf("placements[%d]: %w", i, err)
			}
		}
	}
	return wb, nil
}

func registerManifestImage(wb *xlmedia.Workbook, img ManifestImage, baseDir string) (xlmedia.ImageID, error) {
	ext := img.Extension
	switch {
	case img.Path != "" && img.Data != "":
		return 0, errors.New("path and data are mutually exclusive")
	case img.Path != "":
		path := img.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		if ext == "" {
			ext = filepath.Ext(path)
		}
		if xlmedia.NormalizeExtension(ext) == "" {
			return 0, fmt.Errorf("cannot infer extension of %s", img.Path)
		}
		return wb.AddImage(data, ext), nil
	case img.Data != "":
		if ext == "" {
			return 0, errors.New("extension is required for inline data")
		}
		return wb.AddImageBase64(img.Data, ext)
	default:
		return 0, errors.New("one of path or data is required")
	}
}
