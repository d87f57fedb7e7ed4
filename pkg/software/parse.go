// pkg/software/parse.go
package software

import (
	"regexp"
	"strconv"
)

var (
	// versionRun matches a candidate version-number blob: a run of two or
	// more digits and common version separators.
	versionRun = regexp.MustCompile(`[0-9._-]{2,}`)
	// versionSep splits a version blob into its components.
	versionSep = regexp.MustCompile(`[-._\s]`)
)

// ParseBanner turns a raw text banner such as "Apache/2.4.10-beta1" into an
// Observation carrying the software name and a structured version. It is a
// best-effort heuristic and never fails: a banner with no recognizable
// version blob yields an empty name and an all-zero version, with the raw
// text preserved in Unparsed either way.
func ParseBanner(raw string) Observation {
	obs := NewObservation("", Version{}, raw)

	loc := versionRun.FindStringIndex(raw)
	if loc == nil {
		// No name/version boundary found.
		return obs
	}

	// The text before the version blob is the software name plus exactly one
	// trailing separator character ("Apache/", "nginx ").
	if loc[0] > 0 {
		obs.Name = raw[:loc[0]-1]
	}

	obs.Version = ParseVersion(raw[loc[0]:])
	return obs
}

// ParseVersion splits bare version text ("2.4.10-beta1") into at most four
// components mapped positionally onto major, minor, minor2 and addl. The
// fourth component absorbs any remainder unsplit, so distro suffixes like
// "1+deb10u1" survive intact. A non-numeric value in one of the three
// numeric positions leaves that field at its zero default rather than
// failing the whole parse.
func ParseVersion(text string) Version {
	var v Version
	for i, part := range versionSep.Split(text, 4) {
		switch i {
		case 0:
			v.Major = parseComponent(part)
		case 1:
			v.Minor = parseComponent(part)
		case 2:
			v.Minor2 = parseComponent(part)
		case 3:
			v.Addl = part
		}
	}
	return v
}

func parseComponent(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
