package fetch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openshift/polarion-fetch/pkg/artifact"
	"github.com/openshift/polarion-fetch/pkg/config"
	"github.com/openshift/polarion-fetch/pkg/download"
	"github.com/openshift/polarion-fetch/pkg/locator"
	"github.com/openshift/polarion-fetch/pkg/sources"
	"github.com/openshift/polarion-fetch/pkg/utils"
	"github.com/spf13/cobra"
)

// Cmd returns the Command used to invoke the fetch logic
func Cmd() *cobra.Command {
	cfg := config.New()
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Args:  cobra.NoArgs,
		Short: "Download a Polarion archive",
		Long: fmt.Sprintf("Downloads PolarionALM_<version>.zip from the folder named by $%s. If $%s has the form 'v<digits>', "+
			"that exact version is fetched; otherwise the highest version in the folder is fetched, unless --strict is set.",
			config.FolderIDEnv, config.VersionEnv),
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := cfg.LoadEnv(true)
			if err != nil {
				return err
			}
			return Fetch(cmd.Context(), cfg)
		},
	}

	flags := fetchCmd.Flags()
	flags.StringVar(&cfg.Source, "source", cfg.Source, fmt.Sprintf("storage backend to fetch from, one of %v", config.Sources))
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "path the archive is written to")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail instead of fetching the latest archive when the version isn't of the form 'v<digits>'")
	flags.Int64Var(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "number of bytes read between progress reports")
	flags.StringVar(&cfg.SHA256, "sha256", "", "expected sha256 checksum of the archive")
	flags.StringVar(&cfg.SignatureFile, "signature", "", "armored detached GPG signature to verify the archive with")
	flags.StringVar(&cfg.KeyRingFile, "keyring", "", "armored GPG public keys used to check --signature")
	flags.StringVar(&cfg.ExtractDir, "extract-dir", "", "directory to unzip the archive into")
	return fetchCmd
}

// Fetch locates the archive selected by cfg.Version and downloads it to cfg.Output
func Fetch(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := cfg.Validate()
	if err != nil {
		return err
	}

	src, err := sources.New(ctx, cfg)
	if err != nil {
		return err
	}
	return Run(ctx, cfg, src)
}

// Run performs the fetch against an already-built source
func Run(ctx context.Context, cfg *config.Config, src sources.Source) error {
	file, err := locator.New(src, cfg.Strict).Locate(ctx, cfg.Version)
	if err != nil {
		return err
	}

	dl := download.New(src)
	dl.ChunkSize = cfg.ChunkSize
	dl.Verify = verifier(cfg)
	err = dl.Download(ctx, file, cfg.Output)
	if err != nil {
		return err
	}

	if cfg.ExtractDir != "" {
		err = utils.Unzip(cfg.Output, cfg.ExtractDir)
		if err != nil {
			return fmt.Errorf("failed to extract '%s': %w", cfg.Output, err)
		}
		fmt.Printf("Extracted %s to %s\n", cfg.Output, cfg.ExtractDir)
	}
	return nil
}

// verifier returns the checks requested by cfg, run against the downloaded contents before
// they're written. nil is returned if no checks were requested
func verifier(cfg *config.Config) func(artifact.File, []byte) error {
	if cfg.SHA256 == "" && cfg.SignatureFile == "" {
		return nil
	}
	return func(file artifact.File, contents []byte) error {
		if cfg.SHA256 != "" {
			err := utils.VerifySha256sum(contents, cfg.SHA256)
			if err != nil {
				return err
			}
			fmt.Printf("Verified sha256 checksum of %s\n", file.Name)
		}

		if cfg.SignatureFile != "" {
			err := utils.VerifyGPGSignature(bytes.NewReader(contents), cfg.SignatureFile, cfg.KeyRingFile)
			if err != nil {
				return err
			}
			fmt.Printf("Verified signature of %s\n", file.Name)
		}
		return nil
	}
}
