/*
sources builds the storage backend selected by a Config
*/
package sources

import (
	"context"
	"fmt"

	"github.com/openshift/polarion-fetch/pkg/config"
	"github.com/openshift/polarion-fetch/pkg/download"
	"github.com/openshift/polarion-fetch/pkg/locator"
	"github.com/openshift/polarion-fetch/pkg/sources/cloud.google.com/storage"
	"github.com/openshift/polarion-fetch/pkg/sources/drive"
)

// Source can both be searched for and stream files
type Source interface {
	locator.Source
	download.Source
}

// New creates the Source named by cfg.Source, authenticated with cfg.ServiceAccountKey
func New(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.Source {
	case config.SourceDrive:
		return drive.NewSource(ctx, cfg.ServiceAccountKey, cfg.FolderID)
	case config.SourceGCS:
		return storage.NewSource(ctx, cfg.ServiceAccountKey, cfg.FolderID)
	default:
		return nil, fmt.Errorf("unsupported source '%s'", cfg.Source)
	}
}
