// Package version provides platform release version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the Homeline platform version this tree builds.
const Current = "1.1.0"

// Version represents a parsed "major.minor.patch" release version.
// The patch component is optional in the string form and defaults to 0.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor" or "major.minor.patch" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor[.patch]", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	var patch uint64
	if len(parts) == 3 {
		patch, err = strconv.ParseUint(parts[2], 10, 16)
		if err != nil || parts[2] == "" {
			return Version{}, fmt.Errorf("invalid version %q: bad patch component", s)
		}
	}

	return Version{Major: uint16(major), Minor: uint16(minor), Patch: uint16(patch)}, nil
}

// MustParse parses a version string and panics on failure.
// Intended for compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// AtOrAfter reports whether v is the same as or newer than other.
func (v Version) AtOrAfter(other Version) bool {
	return !v.Less(other)
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}
