package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/openshift/polarion-fetch/cmd/fetch"
	"github.com/openshift/polarion-fetch/cmd/list"
	"github.com/openshift/polarion-fetch/pkg/locator"
	"github.com/spf13/cobra"
)

var cmd = cobra.Command{
	Use:           "polarion-fetch",
	Short:         "A Polarion archive fetcher",
	Long:          "This application downloads versioned Polarion ALM archives from cloud storage for use in build pipelines",
	RunE:          help,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func help(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// Add subcommands
func init() {
	cmd.AddCommand(fetch.Cmd())
	cmd.AddCommand(list.Cmd())
}

func main() {
	err := cmd.Execute()
	if err != nil {
		os.Exit(report(err, os.Stderr))
	}
}

// report writes err to w and returns the exit code for it. Lookup failures are
// written verbatim, anything else is prefixed with "Error: "
func report(err error, w io.Writer) int {
	var lookupErr *locator.LookupError
	if errors.As(err, &lookupErr) {
		fmt.Fprintln(w, lookupErr.Error())
		return 1
	}
	log.New(w, "", 0).Printf("Error: %v", err)
	return 1
}
