package domain

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Workflow versions are exactly three dot-separated integers. The semver
// parser alone is too lenient here: it accepts partial forms ("1.2") and
// pre-release suffixes, neither of which is a legal branch version.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateVersion reports whether s is an acceptable workflow version.
func ValidateVersion(s string) bool {
	return versionPattern.MatchString(s)
}

// Version wraps semver.Version restricted to the MAJOR.MINOR.PATCH form.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	if !ValidateVersion(s) {
		return nil, NewInvalidInput("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, NewInvalidInput("invalid version %q: %v", s, err)
	}
	return &Version{v}, nil
}

// BumpMajor increments the major version.
func (v *Version) BumpMajor() *Version {
	newVer := v.IncMajor()
	return &Version{&newVer}
}

// BumpMinor increments the minor version.
func (v *Version) BumpMinor() *Version {
	newVer := v.IncMinor()
	return &Version{&newVer}
}

// BumpPatch increments the patch version.
func (v *Version) BumpPatch() *Version {
	newVer := v.IncPatch()
	return &Version{&newVer}
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the bare MAJOR.MINOR.PATCH form, as stored in manifests.
func (v *Version) String() string {
	return v.Version.String()
}

// TagName returns the production tag form, vMAJOR.MINOR.PATCH.
func (v *Version) TagName() string {
	return "v" + v.Version.String()
}

// RcTagName returns the release-candidate tag form for number n.
func (v *Version) RcTagName(n int) string {
	return fmt.Sprintf("%s-rc.%d", v.TagName(), n)
}
