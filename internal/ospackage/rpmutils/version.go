package rpmutils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gorpm "github.com/sassoftware/go-rpmutils"
)

// ErrMalformedVersion is matched by every *VersionParseError.
var ErrMalformedVersion = errors.New("malformed version")

// majorMinorRe requires the dot after the minor number, so "4.2" does not match.
var majorMinorRe = regexp.MustCompile(`^(\d+)\.(\d+)\.`)

// VersionParseError reports a version string without a leading major.minor. prefix.
type VersionParseError struct {
	Version string
	Err     error
}

func (e *VersionParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot extract major/minor from version %q: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("cannot extract major/minor from version %q", e.Version)
}

func (e *VersionParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedVersion, e.Err}
	}
	return []error{ErrMalformedVersion}
}

// Version is an [epoch:]version[-release] string split into its ordered parts.
type Version struct {
	Epoch   string
	Version string
	Release string
}

// ParseVersion splits s into epoch, version and release. It never fails;
// missing parts are left empty.
func ParseVersion(s string) Version {
	var v Version
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ":"); i >= 0 {
		v.Epoch = s[:i]
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "-"); i >= 0 {
		v.Release = s[i+1:]
		s = s[:i]
	}
	v.Version = s
	return v
}

func (v Version) String() string {
	s := v.Version
	if v.Epoch != "" {
		s = v.Epoch + ":" + s
	}
	if v.Release != "" {
		s += "-" + v.Release
	}
	return s
}

func (v Version) epoch() string {
	if v.Epoch == "" {
		return "0"
	}
	return v.Epoch
}

// Compare orders v against o: -1 when older, 0 when equal, 1 when newer.
// Each part is compared segment by segment, numerically where both
// segments are numeric ("10" > "9").
func (v Version) Compare(o Version) int {
	if c := gorpm.Vercmp(v.epoch(), o.epoch()); c != 0 {
		return c
	}
	if c := gorpm.Vercmp(v.Version, o.Version); c != 0 {
		return c
	}
	return gorpm.Vercmp(v.Release, o.Release)
}

// CompareVersions compares two version strings: -1 if a is older than b,
// 0 if they are equal, 1 if a is newer.
func CompareVersions(a, b string) int {
	return ParseVersion(a).Compare(ParseVersion(b))
}

// MajorMinor extracts the leading major and minor numbers of version,
// e.g. 4 and 2 from "4.2.37-1.1".
func MajorMinor(version string) (int, int, error) {
	m := majorMinorRe.FindStringSubmatch(version)
	if m == nil {
		return 0, 0, &VersionParseError{Version: version}
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, &VersionParseError{Version: version, Err: err}
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, &VersionParseError{Version: version, Err: err}
	}
	return major, minor, nil
}
