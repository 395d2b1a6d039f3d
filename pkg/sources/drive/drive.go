/*
drive provides the capability to locate and retrieve files stored in a Google Drive folder
*/
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openshift/polarion-fetch/pkg/artifact"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// listFields restricts list responses to the attributes needed to download a file
const listFields = "files(id,name)"

type Source struct {
	// FolderID identifies the Drive folder files are retrieved from
	FolderID string

	// service is used to interact with the Drive API
	service *gdrive.Service
}

// NewSource creates a Source for the given folder, authenticated as the service account
// described by the provided JSON key. Access is restricted to read-only
func NewSource(ctx context.Context, serviceAccountKey []byte, folderID string) (*Source, error) {
	creds, err := google.CredentialsFromJSON(ctx, serviceAccountKey, gdrive.DriveReadonlyScope)
	if err != nil {
		return &Source{}, fmt.Errorf("failed to parse service account key: %w", err)
	}
	return NewSourceWithOptions(ctx, folderID, option.WithCredentials(creds))
}

// NewSourceWithOptions creates a Source for the given folder using arbitrary client options
func NewSourceWithOptions(ctx context.Context, folderID string, opts ...option.ClientOption) (*Source, error) {
	service, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return &Source{}, fmt.Errorf("failed to create Drive client: %w", err)
	}
	s := &Source{
		FolderID: folderID,
		service:  service,
	}
	return s, nil
}

// Location returns the ID of the folder being searched
func (s *Source) Location() string {
	return s.FolderID
}

// FindByName returns up to limit untrashed files in the folder named exactly name
func (s *Source) FindByName(ctx context.Context, name string, limit int64) ([]artifact.File, error) {
	query := fmt.Sprintf("%s in parents and name = %s and trashed = false", quote(s.FolderID), quote(name))
	return s.list(ctx, query, limit)
}

// FindContaining returns up to limit untrashed files in the folder whose name contains all terms
func (s *Source) FindContaining(ctx context.Context, terms []string, limit int64) ([]artifact.File, error) {
	clauses := []string{fmt.Sprintf("%s in parents", quote(s.FolderID))}
	for _, term := range terms {
		clauses = append(clauses, fmt.Sprintf("name contains %s", quote(term)))
	}
	clauses = append(clauses, "trashed = false")
	return s.list(ctx, strings.Join(clauses, " and "), limit)
}

// list issues a single files.list request. Only the first page is retrieved
func (s *Source) list(ctx context.Context, query string, limit int64) ([]artifact.File, error) {
	resp, err := s.service.Files.List().
		Context(ctx).
		Q(query).
		Fields(listFields).
		PageSize(limit).
		Do()
	if err != nil {
		return []artifact.File{}, fmt.Errorf("failed to list files in folder '%s': %w", s.FolderID, err)
	}

	files := make([]artifact.File, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, artifact.File{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

// Open starts a media download of the given file. size is the length reported by the
// server, or -1 if it's unknown. It is the callers responsibility to Close() the reader
func (s *Source) Open(ctx context.Context, file artifact.File) (reader io.ReadCloser, size int64, err error) {
	resp, err := s.service.Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return nil, -1, fmt.Errorf("failed to download '%s' (%s): %w", file.Name, file.ID, err)
	}
	return resp.Body, resp.ContentLength, nil
}

// quote formats a value as a Drive query string literal
func quote(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
