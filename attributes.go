package osmfusion

import (
	"sort"
)

// Attributes is a key/value storage attached to points, curves and lanelets
type Attributes map[string]string

// Has returns true if key is present
func (attrs Attributes) Has(key string) bool {
	_, ok := attrs[key]
	return ok
}

// Get returns value for given key or empty string if key is absent
func (attrs Attributes) Get(key string) string {
	return attrs[key]
}

// Clone returns independent copy of attributes
func (attrs Attributes) Clone() Attributes {
	cp := make(Attributes, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return cp
}

// Keys returns sorted keys
func (attrs Attributes) Keys() []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	// Keys which are auto-generated by map builders and become invalid after transformation
	generatedPointKeys = []string{"local_x", "local_y", "mgrs_code"}

	// See ref.: https://wiki.openstreetmap.org/wiki/Key:shoulder
	shoulderOneSide = map[string]struct{}{
		"yes":   {},
		"left":  {},
		"right": {},
	}
	shoulderBothSides = map[string]struct{}{
		"both": {},
	}
)

// RemoveGeneratedTags removes attributes from map points that are no longer valid after alignment/conflation
func RemoveGeneratedTags(m *Map) {
	for _, pt := range m.Points() {
		for _, key := range generatedPointKeys {
			delete(pt.Attributes, key)
		}
	}
}
