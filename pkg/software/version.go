// pkg/software/version.go
// Package software implements the passive software-identity model: structured
// version records, the banner parsing heuristic, and the observation type
// carried between analyzers, the registry, and the observation sinks.
package software

import (
	"fmt"
	"strings"
)

// Version is a structured software version. The three numeric components
// compare numerically; Addl holds whatever trailed them (patch letters,
// pre-release tags, distro suffixes) and compares as plain text.
// The zero value means "no version information".
type Version struct {
	Major  uint64 `json:"major"`
	Minor  uint64 `json:"minor"`
	Minor2 uint64 `json:"minor2"`
	Addl   string `json:"addl"`
}

// Compare returns -1, 0 or 1 ordering v against other. The order is
// lexicographic over (Major, Minor, Minor2, Addl); Addl is compared byte-wise
// only when the numeric prefix is equal, so "rc10" sorts before "rc2". That
// matches how these suffixes are logged on the wire and is kept as-is rather
// than second-guessed with semantic version rules.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpUint(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint(v.Minor, other.Minor)
	}
	if v.Minor2 != other.Minor2 {
		return cmpUint(v.Minor2, other.Minor2)
	}
	return strings.Compare(v.Addl, other.Addl)
}

// Equal reports whether both versions compare equal.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// String renders the version as "major.minor.minor2" with a "-addl" suffix
// when the additional component is present.
func (v Version) String() string {
	if v.Addl == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Minor2)
	}
	return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Minor2, v.Addl)
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	return 1
}
