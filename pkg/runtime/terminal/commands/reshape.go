package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type ReshapeCmd struct {
	date     dateFlag
	open     Opener
	reporter *export.Reporter
}

func NewReshapeCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	rc := &ReshapeCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "reshape <source>...",
		Short: "Reshape source workbooks into stored canonical tables",
		Args:  cobra.MinimumNArgs(1),
		RunE:  rc.run,
	}
	rc.date.register(cmd)
	return cmd
}

func (rc *ReshapeCmd) run(cmd *cobra.Command, args []string) error {
	date, err := rc.date.parse()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := rc.open(ctx)
	if err != nil {
		return err
	}

	for _, name := range args {
		res, err := a.Runner.Reshape(ctx, date, name)
		if err != nil {
			return fmt.Errorf("failed to reshape %s: %w", name, err)
		}
		if len(res.Diagnostics) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d values coerced to missing\n", res.Table.Source, len(res.Diagnostics))
		}
		if err := rc.reporter.Table(res.Table, date); err != nil {
			return err
		}
	}
	return nil
}
