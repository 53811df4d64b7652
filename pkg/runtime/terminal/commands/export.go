package commands

import (
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/adapters"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/store/csvfile"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	date    dateFlag
	sources []string
	dir     string
	open    Opener
}

func NewExportCmd(open Opener) *cobra.Command {
	ec := &ExportCmd{open: open}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a stored snapshot, or stored canonical tables, as CSV",
		Args:  cobra.NoArgs,
		RunE:  ec.run,
	}
	ec.date.register(cmd)
	cmd.Flags().StringSliceVar(&ec.sources, "source", nil, "Export these canonical tables instead of the snapshot")
	cmd.Flags().StringVar(&ec.dir, "dir", "", "Output directory (default: export_dir setting)")
	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	date, err := ec.date.parse()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := ec.open(ctx)
	if err != nil {
		return err
	}
	dir := ec.dir
	if dir == "" {
		dir = a.Settings.ExportDir
	}

	var paths []string
	if len(ec.sources) == 0 {
		month := domain.MonthStart(date)
		values, err := a.Snapshots.GetSnapshot(ctx, month)
		if err != nil {
			return fmt.Errorf("failed to load snapshot %s: %w", month.Format(domain.DateLayout), err)
		}
		path, err := csvfile.ExportSnapshot(dir, adapters.MapStoreSnapshotValuesToDomain(month, values))
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}
	for _, name := range ec.sources {
		values, err := a.Tables.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
		path, err := csvfile.ExportTable(dir, adapters.MapStoreCanonicalValuesToDomain(name, values), date.Format("2006_01_02"))
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
