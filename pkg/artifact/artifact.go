/*
artifact defines the remote file record and the naming rules used to map
version selectors onto PolarionALM_<version>.zip archives
*/
package artifact

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	// Prefix is the leading portion of every Polarion archive name
	Prefix = "PolarionALM_"
	// Suffix is the trailing portion of every Polarion archive name
	Suffix = ".zip"
)

// File is a remote file as returned by a source's list operation
type File struct {
	// ID is the source-specific identifier used to download the file
	ID string
	// Name is the file's display name
	Name string
}

// Candidate pairs a File with the version number parsed from its name
type Candidate struct {
	File
	Version int64
}

// ParseSelector reports whether the provided version selector requests an exact
// version (ie - "v2512") and, if so, returns the digits following the 'v'
func ParseSelector(selector string) (digits string, exact bool) {
	digits, found := strings.CutPrefix(selector, "v")
	if !found || !isDigits(digits) {
		return "", false
	}
	return digits, true
}

// FileName builds the archive name for the given version digits
func FileName(digits string) string {
	return fmt.Sprintf("%s%s%s", Prefix, digits, Suffix)
}

// ExtractVersion returns the version number embedded in names like "PolarionALM_2512.zip".
// Names that don't follow that format exactly yield -1
func ExtractVersion(name string) int64 {
	base := path.Base(name)
	middle, found := strings.CutPrefix(base, Prefix)
	if !found {
		return -1
	}
	middle, found = strings.CutSuffix(middle, Suffix)
	if !found || !isDigits(middle) {
		return -1
	}
	version, err := strconv.ParseInt(middle, 10, 64)
	if err != nil {
		return -1
	}
	return version
}

// Candidates parses the version of each file and returns only those with a usable version,
// preserving the order they were provided in
func Candidates(files []File) []Candidate {
	candidates := []Candidate{}
	for _, file := range files {
		version := ExtractVersion(file.Name)
		if version < 0 {
			continue
		}
		candidates = append(candidates, Candidate{File: file, Version: version})
	}
	return candidates
}

// SelectLatest returns the candidate with the highest version. When several candidates
// share the highest version, the first one wins. found is false if no candidates were given
func SelectLatest(candidates []Candidate) (latest Candidate, found bool) {
	for i, candidate := range candidates {
		if i == 0 || candidate.Version > latest.Version {
			latest = candidate
		}
	}
	return latest, len(candidates) > 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
