package xlmedia

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// ImageID references an image registered with a workbook. IDs are allocated
// from 0 in registration order and stay valid for the life of the workbook.
type ImageID int

// Media is one registered image payload.
type Media struct {
	ID        ImageID
	Data      []byte
	Extension string // lower-case, no leading dot
	Digest    string // hex SHA-256 over extension and data
}

// clone copies the payload so callers cannot reach the stored bytes.
func (m Media) clone() Media {
	m.Data = bytes.Clone(m.Data)
	return m
}

// Registry stores image payloads for a workbook, deduplicated by content.
// Worksheets refer to entries by ImageID and never hold the bytes.
type Registry struct {
	entries []Media
	index   map[string]ImageID // digest → id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]ImageID)}
}

// NormalizeExtension lower-cases an image extension and strips a leading dot,
// so "PNG", ".png" and "png" name the same type.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func mediaDigest(data []byte, ext string) string {
	h := sha256.New()
	h.Write([]byte(ext))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Register stores data under ext and returns its ID. Registering identical
// bytes with the same extension again returns the existing ID.
func (r *Registry) Register(data []byte, ext string) ImageID {
	id, _ := r.register(data, ext)
	return id
}

// register reports whether the payload was already present.
func (r *Registry) register(data []byte, ext string) (ImageID, bool) {
	ext = NormalizeExtension(ext)
	digest := mediaDigest(data, ext)
	if id, ok := r.index[digest]; ok {
		return id, true
	}
	id := ImageID(len(r.entries))
	r.entries = append(r.entries, Media{
		ID:        id,
		Data:      bytes.Clone(data),
		Extension: ext,
		Digest:    digest,
	})
	r.index[digest] = id
	return id, false
}

// RegisterBase64 decodes a base64 payload, optionally given as a data URL
// ("data:image/png;base64,..."), and registers it.
func (r *Registry) RegisterBase64(s, ext string) (ImageID, error) {
	if i := strings.Index(s, "base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("decode base64 image: %w", err)
	}
	return r.Register(data, ext), nil
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id ImageID) (Media, error) {
	if id < 0 || int(id) >= len(r.entries) {
		return Media{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r.entries[id].clone(), nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id ImageID) bool {
	return id >= 0 && int(id) < len(r.entries)
}

// List returns copies of all entries in allocation order.
func (r *Registry) List() []Media {
	out := make([]Media, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of distinct payloads.
func (r *Registry) Len() int {
	return len(r.entries)
}

// restore replaces the registry content with entries loaded from a model.
// IDs must be dense and in order so that references stay valid.
func (r *Registry) restore(entries []Media) error {
	fresh := NewRegistry()
	for i, m := range entries {
		if int(m.ID) != i {
			return fmt.Errorf("restore registry: entry %d has id %d", i, m.ID)
		}
		id, dup := fresh.register(m.Data, m.Extension)
		if dup {
			return fmt.Errorf("restore registry: entry %d duplicates entry %d", i, id)
		}
	}
	*r = *fresh
	return nil
}
