package domain

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Version is a bundle or capability version in major.minor.micro[.qualifier] form.
type Version struct {
	Major     int
	Minor     int
	Micro     int
	Qualifier string
}

// EmptyVersion is the lowest possible version, 0.0.0.
var EmptyVersion = Version{}

// ParseVersion parses a version string. Missing segments default to zero and
// an empty string yields EmptyVersion.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EmptyVersion, nil
	}

	parts := strings.SplitN(s, ".", 4)
	nums := [3]int{}
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "parse version"), "version", s)
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Micro: nums[2]}
	if len(parts) == 4 {
		if parts[3] == "" {
			return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "parse version"), "version", s)
		}
		v.Qualifier = parts[3]
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for tests and constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 depending on whether v sorts before, equal to or after o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Micro, o.Micro); c != 0 {
		return c
	}
	return cmp.Compare(v.Qualifier, o.Qualifier)
}

// String renders the version in canonical form.
func (v Version) String() string {
	if v.Qualifier != "" {
		return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Micro, v.Qualifier)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// VersionRange is an interval of versions. A range without a maximum is unbounded above.
type VersionRange struct {
	Min          Version
	Max          *Version
	MinExclusive bool
	MaxExclusive bool
}

// AnyVersion matches every version.
var AnyVersion = VersionRange{}

// ParseVersionRange parses "[1.0,2.0)" style intervals or a bare version,
// which means "at least this version".
func ParseVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnyVersion, nil
	}

	first, last := s[0], s[len(s)-1]
	if first != '[' && first != '(' {
		v, err := ParseVersion(s)
		if err != nil {
			return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
		}
		return VersionRange{Min: v}, nil
	}

	if last != ']' && last != ')' {
		return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
	}

	bounds := strings.Split(s[1:len(s)-1], ",")
	if len(bounds) != 2 {
		return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
	}

	minV, err := ParseVersion(bounds[0])
	if err != nil {
		return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
	}
	maxV, err := ParseVersion(bounds[1])
	if err != nil {
		return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
	}
	if maxV.Compare(minV) < 0 {
		return VersionRange{}, zerr.With(zerr.Wrap(ErrInvalidVersionRange, "parse version range"), "range", s)
	}

	return VersionRange{
		Min:          minV,
		Max:          &maxV,
		MinExclusive: first == '(',
		MaxExclusive: last == ')',
	}, nil
}

// Includes reports whether v lies inside the range.
func (r VersionRange) Includes(v Version) bool {
	c := v.Compare(r.Min)
	if c < 0 || (c == 0 && r.MinExclusive) {
		return false
	}
	if r.Max == nil {
		return true
	}
	c = v.Compare(*r.Max)
	return c < 0 || (c == 0 && !r.MaxExclusive)
}

// String renders the range in interval notation, or as a floor version when unbounded.
func (r VersionRange) String() string {
	if r.Max == nil && !r.MinExclusive {
		return r.Min.String()
	}
	open, closing := "[", "]"
	if r.MinExclusive {
		open = "("
	}
	if r.MaxExclusive {
		closing = ")"
	}
	upper := ""
	if r.Max != nil {
		upper = r.Max.String()
	}
	return open + r.Min.String() + "," + upper + closing
}
