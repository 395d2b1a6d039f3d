/*
locator determines which remote Polarion archive should be fetched for a given version selector
*/
package locator

import (
	"context"
	"fmt"
	"sort"

	"github.com/openshift/polarion-fetch/pkg/artifact"
)

const (
	// exactPageSize limits the results requested when looking up a single, exactly-named archive
	exactPageSize = 1
	// latestPageSize limits the results requested when scanning the folder for all archives
	latestPageSize = 1000
)

// Source is a remote folder that can be searched for files
type Source interface {
	// Location returns a human-readable identifier of the folder being searched
	Location() string

	// FindByName returns at most limit untrashed files whose name matches exactly
	FindByName(ctx context.Context, name string, limit int64) ([]artifact.File, error)

	// FindContaining returns at most limit untrashed files whose name contains every term provided
	FindContaining(ctx context.Context, terms []string, limit int64) ([]artifact.File, error)
}

// LookupError is returned when the folder doesn't contain a file satisfying the request.
// Its message is meant to be shown to the user as-is
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string {
	return e.Message
}

func lookupErrorf(format string, args ...any) *LookupError {
	return &LookupError{Message: fmt.Sprintf(format, args...)}
}

// Locator maps version selectors onto files within a Source
type Locator struct {
	source Source
	// Strict disables the fallback to the latest archive for selectors that aren't
	// of the form "v<digits>"
	Strict bool
}

// New creates a Locator searching the provided Source
func New(source Source, strict bool) *Locator {
	return &Locator{
		source: source,
		Strict: strict,
	}
}

// Locate returns the file matching the version selector. Selectors like "v2512" request
// PolarionALM_2512.zip exactly; any other selector requests the highest version available,
// unless the Locator is Strict
func (l *Locator) Locate(ctx context.Context, selector string) (artifact.File, error) {
	digits, exact := artifact.ParseSelector(selector)
	if exact {
		return l.FindExact(ctx, digits)
	}
	if l.Strict {
		return artifact.File{}, lookupErrorf("No Polarion mapping for non-version branch %s", selector)
	}
	latest, err := l.FindLatest(ctx)
	if err != nil {
		return artifact.File{}, err
	}
	return latest.File, nil
}

// FindExact looks up the archive for the given version digits by name
func (l *Locator) FindExact(ctx context.Context, digits string) (artifact.File, error) {
	name := artifact.FileName(digits)
	files, err := l.source.FindByName(ctx, name, exactPageSize)
	if err != nil {
		return artifact.File{}, fmt.Errorf("failed to search for '%s': %w", name, err)
	}
	if len(files) == 0 {
		return artifact.File{}, lookupErrorf("No file named %s found in folder %s", name, l.source.Location())
	}
	return artifact.File{ID: files[0].ID, Name: name}, nil
}

// FindLatest returns the archive with the highest parsable version in the folder
func (l *Locator) FindLatest(ctx context.Context) (artifact.Candidate, error) {
	candidates, err := l.candidates(ctx)
	if err != nil {
		return artifact.Candidate{}, err
	}
	latest, _ := artifact.SelectLatest(candidates)
	return latest, nil
}

// List returns every archive with a parsable version in the folder, highest version first
func (l *Locator) List(ctx context.Context) ([]artifact.Candidate, error) {
	candidates, err := l.candidates(ctx)
	if err != nil {
		return []artifact.Candidate{}, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Version > candidates[j].Version
	})
	return candidates, nil
}

// candidates lists the folder's archives and returns those with a parsable version, in listing order.
// A LookupError is returned if there are none
func (l *Locator) candidates(ctx context.Context) ([]artifact.Candidate, error) {
	files, err := l.source.FindContaining(ctx, []string{artifact.Prefix, artifact.Suffix}, latestPageSize)
	if err != nil {
		return []artifact.Candidate{}, fmt.Errorf("failed to list Polarion ZIPs: %w", err)
	}
	if len(files) == 0 {
		return []artifact.Candidate{}, lookupErrorf("No Polarion ZIPs found in folder %s", l.source.Location())
	}

	candidates := artifact.Candidates(files)
	if len(candidates) == 0 {
		return []artifact.Candidate{}, lookupErrorf("No Polarion ZIPs with parsable version in folder %s", l.source.Location())
	}
	return candidates, nil
}
