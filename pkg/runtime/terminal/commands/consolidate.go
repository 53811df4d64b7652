package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fidc-atlas/pkg/store/csvfile"
	"github.com/spf13/cobra"
)

type ConsolidateCmd struct {
	date     dateFlag
	sources  []string
	write    bool
	open     Opener
	reporter *export.Reporter
}

func NewConsolidateCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	cc := &ConsolidateCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Build the monthly snapshot from stored canonical tables",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}
	cc.date.register(cmd)
	cmd.Flags().StringSliceVar(&cc.sources, "source", nil, "Sources to consolidate (default: every stored source)")
	cmd.Flags().BoolVar(&cc.write, "export", false, "Write the snapshot CSV into the export directory")
	return cmd
}

func (cc *ConsolidateCmd) run(cmd *cobra.Command, _ []string) error {
	date, err := cc.date.parse()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := cc.open(ctx)
	if err != nil {
		return err
	}

	snap, err := a.Runner.Consolidate(ctx, date, cc.sources)
	if err != nil {
		return fmt.Errorf("failed to consolidate: %w", err)
	}
	if err := cc.reporter.Snapshot(snap); err != nil {
		return err
	}
	if !cc.write {
		return nil
	}
	path, err := csvfile.ExportSnapshot(a.Settings.ExportDir, snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", path)
	return nil
}
