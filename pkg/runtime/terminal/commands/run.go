package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fidc-atlas/pkg/store/csvfile"
	"github.com/spf13/cobra"
)

type RunCmd struct {
	date     dateFlag
	sources  []string
	write    bool
	open     Opener
	reporter *export.Reporter
}

func NewRunCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	rc := &RunCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reshape every source of a month and consolidate the snapshot",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
	rc.date.register(cmd)
	cmd.Flags().StringSliceVar(&rc.sources, "source", nil, "Sources to process (default: every workbook found)")
	cmd.Flags().BoolVar(&rc.write, "export", false, "Write the snapshot CSV into the export directory")
	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	date, err := rc.date.parse()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := rc.open(ctx)
	if err != nil {
		return err
	}

	report, runErr := a.Runner.Run(ctx, date, rc.sources)
	if report == nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	if err := rc.reporter.Runs(report); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", report.RunID, runErr)
	}

	if err := rc.reporter.Snapshot(report.Snapshot); err != nil {
		return err
	}
	if !rc.write {
		return nil
	}
	path, err := csvfile.ExportSnapshot(a.Settings.ExportDir, report.Snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", path)
	return nil
}
