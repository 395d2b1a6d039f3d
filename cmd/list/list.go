package list

import (
	"context"
	"fmt"

	"github.com/openshift/polarion-fetch/pkg/config"
	"github.com/openshift/polarion-fetch/pkg/locator"
	"github.com/openshift/polarion-fetch/pkg/sources"
	"github.com/spf13/cobra"
)

// Cmd returns the Command used to list the archives available in a folder
func Cmd() *cobra.Command {
	cfg := config.New()
	listCmd := &cobra.Command{
		Use:     "list",
		Args:    cobra.NoArgs,
		Aliases: []string{"available"},
		Short:   "List Polarion archives",
		Long:    "List the Polarion archives with a parsable version in the configured folder, highest version first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := cfg.LoadEnv(false)
			if err != nil {
				return err
			}
			err = cfg.Validate()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			src, err := sources.New(ctx, cfg)
			if err != nil {
				return err
			}
			return List(ctx, src)
		},
	}
	listCmd.Flags().StringVar(&cfg.Source, "source", cfg.Source, fmt.Sprintf("storage backend to list, one of %v", config.Sources))
	return listCmd
}

// List prints every archive with a parsable version found in the source
func List(ctx context.Context, src locator.Source) error {
	candidates, err := locator.New(src, false).List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("The following Polarion archives are available in %s:\n", src.Location())
	for _, candidate := range candidates {
		fmt.Printf("%d\t%s\t%s\n", candidate.Version, candidate.Name, candidate.ID)
	}
	return nil
}
