package models

import "strings"

// Color is an uploaded automotive color swatch.
type Color struct {
	Slug           string
	DisplayName    string
	AutomotiveType AutomotiveType
	RemoteFileID   string
}

// ColorRef points a scene at a registered color.
type ColorRef struct {
	ID   string
	Slug string
	Name string
}

// ColorMap holds the colors uploaded for one tour, one ordered namespace per
// automotive type.
type ColorMap struct {
	order  map[AutomotiveType][]string
	colors map[AutomotiveType]map[string]Color
}

// NewColorMap creates an empty ColorMap.
func NewColorMap() *ColorMap {
	return &ColorMap{
		order:  make(map[AutomotiveType][]string),
		colors: make(map[AutomotiveType]map[string]Color),
	}
}

// Add registers a color. A slug already present in the namespace is ignored.
func (m *ColorMap) Add(c Color) {
	ns, ok := m.colors[c.AutomotiveType]
	if !ok {
		ns = make(map[string]Color)
		m.colors[c.AutomotiveType] = ns
	}
	if _, exists := ns[c.Slug]; exists {
		return
	}
	ns[c.Slug] = c
	m.order[c.AutomotiveType] = append(m.order[c.AutomotiveType], c.Slug)
}

// Lookup finds a color by exact slug, then by the slug lowercased with whitespace
// replaced by dashes.
func (m *ColorMap) Lookup(t AutomotiveType, slug string) (*ColorRef, bool) {
	if m == nil {
		return nil, false
	}
	ns := m.colors[t]
	c, ok := ns[slug]
	if !ok {
		c, ok = ns[strings.Join(strings.Fields(strings.ToLower(slug)), "-")]
	}
	if !ok {
		return nil, false
	}
	return &ColorRef{ID: c.RemoteFileID, Slug: c.Slug, Name: c.DisplayName}, true
}

// IDs returns the remote ids of a namespace in upload order.
func (m *ColorMap) IDs(t AutomotiveType) []string {
	ids := make([]string, 0)
	if m == nil {
		return ids
	}
	for _, slug := range m.order[t] {
		ids = append(ids, m.colors[t][slug].RemoteFileID)
	}
	return ids
}

// Len returns the number of colors across all namespaces.
func (m *ColorMap) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, ns := range m.colors {
		n += len(ns)
	}
	return n
}
