package iidmxml

import (
	"slices"
)

// CompatibilityTable lists, for each core version, the extension versions a
// document of that core version may carry.
//
//	table := iidmxml.NewCompatibilityTable().
//		Put(iidmxml.V1_0, "1.0").
//		Put(iidmxml.V1_5, "1.0", "1.1")
type CompatibilityTable struct {
	allowed map[Version][]string
}

// NewCompatibilityTable returns an empty table.
func NewCompatibilityTable() *CompatibilityTable {
	return &CompatibilityTable{allowed: make(map[Version][]string)}
}

// Put allows extension versions for core. Repeated calls for the same core
// version accumulate.
func (t *CompatibilityTable) Put(core Version, extensionVersions ...string) *CompatibilityTable {
	for _, v := range extensionVersions {
		if !slices.Contains(t.allowed[core], v) {
			t.allowed[core] = append(t.allowed[core], v)
		}
	}
	slices.SortFunc(t.allowed[core], compareExtensionVersions)
	return t
}

// PutRange allows extension versions for every supported core version
// between from and to, inclusive.
func (t *CompatibilityTable) PutRange(from, to Version, extensionVersions ...string) *CompatibilityTable {
	for _, core := range supportedVersions {
		if core.AtLeast(from) && to.AtLeast(core) {
			t.Put(core, extensionVersions...)
		}
	}
	return t
}

// Allows reports whether extensionVersion may be combined with core.
func (t *CompatibilityTable) Allows(core Version, extensionVersion string) bool {
	return slices.Contains(t.allowed[core], extensionVersion)
}

// Allowed returns the extension versions allowed with core, oldest first.
func (t *CompatibilityTable) Allowed(core Version) []string {
	return slices.Clone(t.allowed[core])
}

// Latest returns the newest extension version allowed with core.
func (t *CompatibilityTable) Latest(core Version) (string, bool) {
	versions := t.allowed[core]
	if len(versions) == 0 {
		return "", false
	}
	return versions[len(versions)-1], true
}
