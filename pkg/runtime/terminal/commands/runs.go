package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/adapters"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type RunsCmd struct {
	date     dateFlag
	open     Opener
	reporter *export.Reporter
}

func NewRunsCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	rc := &RunsCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the recorded runs of a month",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
	rc.date.register(cmd)
	return cmd
}

func (rc *RunsCmd) run(cmd *cobra.Command, _ []string) error {
	date, err := rc.date.parse()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := rc.open(ctx)
	if err != nil {
		return err
	}

	runs, err := a.Snapshots.GetRuns(ctx, domain.MonthStart(date))
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	reports := make([]*domain.RunReport, 0, len(runs))
	for _, r := range runs {
		reports = append(reports, adapters.MapStoreRunToDomain(r))
	}
	return rc.reporter.Runs(reports...)
}
