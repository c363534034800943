// Package iidmxml reads and writes networks in the IIDM XML format and
// dispatches extension elements to versioned serializers.
package iidmxml

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/toolink/iidm"
)

// NamespacePrefix is the prefix of the core IIDM namespace.
const NamespacePrefix = "iidm"

const namespaceBase = "http://www.powsybl.org/schema/iidm/"

// ErrUnsupportedVersion is returned for a core version outside V1_0..V1_5.
var ErrUnsupportedVersion = fmt.Errorf("%w: unsupported IIDM version", iidm.ErrVersionIncompatible)

// Version is a core schema version.
type Version struct {
	Major int
	Minor int
}

// Supported core versions.
var (
	V1_0 = Version{1, 0}
	V1_1 = Version{1, 1}
	V1_2 = Version{1, 2}
	V1_3 = Version{1, 3}
	V1_4 = Version{1, 4}
	V1_5 = Version{1, 5}

	CurrentVersion = V1_5
)

var supportedVersions = []Version{V1_0, V1_1, V1_2, V1_3, V1_4, V1_5}

// SupportedVersions returns the core versions, oldest first.
func SupportedVersions() []Version {
	return append([]Version(nil), supportedVersions...)
}

// ParseVersion accepts both "1.5" and "1_5".
func ParseVersion(s string) (Version, error) {
	for _, v := range supportedVersions {
		if s == v.String() || s == v.underscored() {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, s)
}

// VersionFromNamespaceURI returns the core version whose namespace is uri.
func VersionFromNamespaceURI(uri string) (Version, error) {
	suffix, ok := strings.CutPrefix(uri, namespaceBase)
	if !ok {
		return Version{}, fmt.Errorf("%w: namespace %q", ErrUnsupportedVersion, uri)
	}
	return ParseVersion(suffix)
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

func (v Version) underscored() string {
	return strconv.Itoa(v.Major) + "_" + strconv.Itoa(v.Minor)
}

// NamespaceURI returns the core namespace of the version.
func (v Version) NamespaceURI() string {
	return namespaceBase + v.underscored()
}

// Compare returns -1, 0 or +1 depending on whether v is older than, equal
// to, or newer than o.
func (v Version) Compare(o Version) int {
	if v.Major != o.Major {
		return cmp.Compare(v.Major, o.Major)
	}
	return cmp.Compare(v.Minor, o.Minor)
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// compareExtensionVersions orders extension versions by semantic version, so
// that "1.10" sorts after "1.9". Unparsable versions compare as strings.
func compareExtensionVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
