package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version. The schema version is its minor part.
var Version = "0.1.0"

func GetCurrentVersion() string {
	return Version
}

// GetMinorVersion returns "major.minor" of a "major.minor.patch" version.
func GetMinorVersion(version string) string {
	return strings.TrimPrefix(semver.MajorMinor(canonical(version)), "v")
}

// GetSchemaVersion drops the patch number: patches never change the schema.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}

// SortVersion orders versions ascending.
type SortVersion []string

func (s SortVersion) Len() int      { return len(s) }
func (s SortVersion) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s SortVersion) Less(i, j int) bool {
	return semver.Compare(canonical(s[i]), canonical(s[j])) < 0
}

func canonical(version string) string {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		panic(fmt.Sprintf("invalid version %q", version))
	}
	return v
}
