package types

// ScanEntry is one directory entry accepted by the folder scan
type ScanEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ImageRecord holds a successfully loaded image and its fingerprint.
// Records are created once while indexing and never mutated afterwards.
type ImageRecord struct {
	Path        string      `json:"path"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// DuplicateEntry holds one member of a duplicate group and its similarity
// to the group reference
type DuplicateEntry struct {
	Path       string  `json:"path"`
	Similarity float64 `json:"similarity"`
}

// DuplicateGroup is an ordered list of similar images. The first entry is
// always the reference image at 100%.
type DuplicateGroup []DuplicateEntry

// Reference returns the group's reference entry
func (g DuplicateGroup) Reference() DuplicateEntry {
	if len(g) == 0 {
		return DuplicateEntry{}
	}
	return g[0]
}

// Paths returns the member paths in group order
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g))
	for i, entry := range g {
		paths[i] = entry.Path
	}
	return paths
}
