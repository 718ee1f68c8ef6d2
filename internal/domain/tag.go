package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var rcTagPattern = regexp.MustCompile(`^v(\d+\.\d+\.\d+)-rc\.([1-9]\d*)$`)

// RcTag is a release-candidate tag: a version plus a positive candidate
// number, rendered vMAJOR.MINOR.PATCH-rc.N.
type RcTag struct {
	Version *Version
	Number  int
}

// String renders the tag name.
func (t RcTag) String() string {
	return t.Version.RcTagName(t.Number)
}

// ParseRcTag parses a tag name of the form vM.N.P-rc.N. Returns false for
// anything else, including production tags and rc.0.
func ParseRcTag(s string) (RcTag, bool) {
	m := rcTagPattern.FindStringSubmatch(s)
	if m == nil {
		return RcTag{}, false
	}
	version, err := NewVersion(m[1])
	if err != nil {
		return RcTag{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return RcTag{}, false
	}
	return RcTag{Version: version, Number: n}, true
}

// NextRcNumber returns the next free candidate number for version given the
// existing tag names: one more than the highest existing number, or 1 when
// the version has no candidates yet. Tags of other versions are ignored.
func NextRcNumber(tags []string, version *Version) int {
	highest := 0
	for _, tag := range tags {
		rc, ok := ParseRcTag(tag)
		if !ok {
			continue
		}
		if rc.Version.Compare(version) != 0 {
			continue
		}
		if rc.Number > highest {
			highest = rc.Number
		}
	}
	return highest + 1
}

// ParseReleaseTag parses a production tag name of the form vM.N.P.
func ParseReleaseTag(s string) (*Version, bool) {
	if len(s) < 2 || s[0] != 'v' {
		return nil, false
	}
	version, err := NewVersion(s[1:])
	if err != nil {
		return nil, false
	}
	return version, true
}

// RcTagsFor filters tags down to the release candidates of version, in
// ascending candidate order.
func RcTagsFor(tags []string, version *Version) []RcTag {
	var out []RcTag
	for _, tag := range tags {
		rc, ok := ParseRcTag(tag)
		if !ok || rc.Version.Compare(version) != 0 {
			continue
		}
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// TagRef renders the fully qualified ref name for a tag.
func TagRef(name string) string {
	return fmt.Sprintf("refs/tags/%s", name)
}
