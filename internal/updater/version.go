package updater

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a four-component build version (major.minor.patch.build).
type Version struct {
	Major int
	Minor int
	Patch int
	Build int
}

// versionPattern finds the first X.Y.Z or X.Y.Z.W run anywhere in a string,
// so "AdminDashboard-1.2.0.exe" and "v1.2.0" both parse.
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts a version from free text such as a file name or a
// release tag. The second return value is false when no version is present.
func ParseVersion(s string) (Version, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}

	var parts [4]int
	for i := 0; i < 4; i++ {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			// Only reachable on overflow.
			return Version{}, false
		}
		parts[i] = n
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2], Build: parts[3]}, true
}

// String returns the dot-joined four components, e.g. "1.2.0.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Compare compares two versions component by component.
// Returns: -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	a := [4]int{v.Major, v.Minor, v.Patch, v.Build}
	b := [4]int{other.Major, other.Minor, other.Patch, other.Build}
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// IsNewerThan returns true if v is newer than other.
func (v Version) IsNewerThan(other Version) bool {
	return v.Compare(other) > 0
}

// compareOptional orders absent versions below every present one.
func compareOptional(a, b *Version) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
