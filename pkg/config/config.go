/*
config gathers the settings required to locate and fetch an archive
*/
package config

import (
	"fmt"
	"os"

	"github.com/openshift/polarion-fetch/pkg/download"
)

const (
	// ServiceAccountKeyEnv holds the JSON-encoded service account credential
	ServiceAccountKeyEnv = "GOOGLE_SERVICE_ACCOUNT_KEY"
	// FolderIDEnv holds the identifier of the folder (or bucket) to search
	FolderIDEnv = "GOOGLE_DRIVE_FOLDER_ID"
	// VersionEnv holds the version selector
	VersionEnv = "VERSION"
)

const (
	// SourceDrive fetches from a Google Drive folder
	SourceDrive = "drive"
	// SourceGCS fetches from a Cloud Storage bucket, optionally beneath a prefix
	SourceGCS = "gcs"
)

// Sources lists the supported values of Config.Source
var Sources = []string{SourceDrive, SourceGCS}

// Config defines a single fetch
type Config struct {
	// ServiceAccountKey is the JSON credential used to authenticate with the source
	ServiceAccountKey []byte
	// FolderID identifies the folder to search
	FolderID string
	// Version selects which archive to fetch: "v<digits>" for an exact version, anything else for the latest
	Version string

	// Source names the storage backend, one of Sources
	Source string
	// Output is the local path the archive is written to
	Output string
	// Strict rejects selectors that don't name an exact version instead of falling back to the latest archive
	Strict bool
	// ChunkSize is the number of bytes read between progress reports
	ChunkSize int64

	// SHA256 is the expected hex-encoded checksum of the archive, if any
	SHA256 string
	// SignatureFile is the path of an armored detached signature of the archive, if any
	SignatureFile string
	// KeyRingFile is the path of the armored public keys the signature is checked against
	KeyRingFile string
	// ExtractDir is the directory the archive is unzipped into, if any
	ExtractDir string
}

// New returns a Config populated with default values
func New() *Config {
	return &Config{
		Source:    SourceDrive,
		Output:    download.DefaultOutput,
		ChunkSize: download.DefaultChunkSize,
	}
}

// LoadEnv populates the Config from the environment. VERSION is only read when requireVersion is true.
// An error is returned if a required variable isn't set
func (c *Config) LoadEnv(requireVersion bool) error {
	key, err := lookupEnv(ServiceAccountKeyEnv)
	if err != nil {
		return err
	}
	c.ServiceAccountKey = []byte(key)

	c.FolderID, err = lookupEnv(FolderIDEnv)
	if err != nil {
		return err
	}

	if requireVersion {
		c.Version, err = lookupEnv(VersionEnv)
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the combination of settings provided
func (c *Config) Validate() error {
	if c.Source != SourceDrive && c.Source != SourceGCS {
		return fmt.Errorf("unsupported source '%s': expected one of %v", c.Source, Sources)
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if (c.SignatureFile == "") != (c.KeyRingFile == "") {
		return fmt.Errorf("a signature and a keyring must be provided together")
	}
	return nil
}

func lookupEnv(name string) (string, error) {
	value, found := os.LookupEnv(name)
	if !found {
		return "", fmt.Errorf("environment variable %q is not set", name)
	}
	return value, nil
}
