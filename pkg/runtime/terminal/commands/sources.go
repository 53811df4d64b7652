package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type SourcesCmd struct {
	open     Opener
	reporter *export.Reporter
}

func NewSourcesCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	sc := &SourcesCmd{open: open, reporter: reporter}
	return &cobra.Command{
		Use:   "sources",
		Short: "List catalogue sources and their stored canonical tables",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
}

func (sc *SourcesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := sc.open(ctx)
	if err != nil {
		return err
	}

	stored, err := a.Tables.Sources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored sources: %w", err)
	}
	return sc.reporter.Sources(a.Catalogue.Sources, stored)
}
