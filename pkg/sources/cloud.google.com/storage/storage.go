package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/openshift/polarion-fetch/pkg/artifact"
	"github.com/openshift/polarion-fetch/pkg/utils"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type Source struct {
	// location is the "<bucket>[/<prefix>]" string the Source was configured with
	location string
	// bucketName defines the name of the bucket to retrieve files from
	bucketName string
	// prefix restricts the objects considered to those beneath this path in the bucket
	prefix string
	// client defines the component which will retrieve files from a gcloud bucket
	client *storage.Client
}

// NewSource creates a Source given a location of the form "<bucket>[/<prefix>]". When no
// service account key is provided, the bucket is accessed anonymously
func NewSource(ctx context.Context, serviceAccountKey []byte, location string) (*Source, error) {
	opts := []option.ClientOption{option.WithoutAuthentication()}
	if len(serviceAccountKey) > 0 {
		opts = []option.ClientOption{
			option.WithCredentialsJSON(serviceAccountKey),
			option.WithScopes(storage.ScopeReadOnly),
		}
	}
	return NewSourceWithOptions(ctx, location, opts...)
}

// NewSourceWithOptions creates a Source for the given location using arbitrary client options
func NewSourceWithOptions(ctx context.Context, location string, opts ...option.ClientOption) (*Source, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return &Source{}, fmt.Errorf("failed to create storage client: %w", err)
	}
	bucketName, prefix := SplitLocation(location)
	s := &Source{
		location:   location,
		bucketName: bucketName,
		prefix:     prefix,
		client:     client,
	}
	return s, nil
}

// SplitLocation separates "<bucket>/<prefix>" into its bucket name and object prefix.
// A non-empty prefix always ends with '/'
func SplitLocation(location string) (bucketName, prefix string) {
	location = strings.TrimPrefix(location, "gs://")
	bucketName, prefix, _ = strings.Cut(location, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return bucketName, prefix
}

func (s *Source) bucket() *storage.BucketHandle {
	return s.client.Bucket(s.bucketName)
}

// Location returns the bucket and prefix being searched, as configured
func (s *Source) Location() string {
	return s.location
}

// FindByName returns the object directly beneath the Source's prefix with the given name, if it exists
func (s *Source) FindByName(ctx context.Context, name string, limit int64) ([]artifact.File, error) {
	if limit < 1 {
		return []artifact.File{}, nil
	}
	attrs, err := s.bucket().Object(s.prefix + name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return []artifact.File{}, nil
	}
	if err != nil {
		return []artifact.File{}, fmt.Errorf("failed to retrieve object '%s' from bucket '%s': %w", s.prefix+name, s.bucketName, err)
	}
	return []artifact.File{objectFile(attrs)}, nil
}

// FindContaining returns up to limit objects directly beneath the Source's prefix whose
// name contains all of the given terms. Objects are returned in lexicographical order
func (s *Source) FindContaining(ctx context.Context, terms []string, limit int64) ([]artifact.File, error) {
	query := storage.Query{
		Prefix:    s.prefix,
		Delimiter: "/",
	}
	err := query.SetAttrSelection([]string{"Name"})
	if err != nil {
		return []artifact.File{}, fmt.Errorf("failed to set attribute selection for query: %w", err)
	}
	it := s.bucket().Objects(ctx, &query)

	files := []artifact.File{}
	for int64(len(files)) < limit {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return []artifact.File{}, fmt.Errorf("error while listing bucket objects: %w", err)
		}
		file := objectFile(attrs)
		// Synthetic directory entries have no name
		if file.ID == "" || !utils.ContainsAll(file.Name, terms) {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

// Open returns a reader for the given object along with its size.
// It is the callers responsibility to Close() the reader
func (s *Source) Open(ctx context.Context, file artifact.File) (io.ReadCloser, int64, error) {
	objReader, err := s.bucket().Object(file.ID).NewReader(ctx)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to create reader for object '%s': %w", file.ID, err)
	}
	return objReader, objReader.Attrs.Size, nil
}

// objectFile converts bucket object attributes into an artifact.File
func objectFile(attrs *storage.ObjectAttrs) artifact.File {
	return artifact.File{
		ID:   attrs.Name,
		Name: path.Base(attrs.Name),
	}
}
