package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/runtime/app"
	"github.com/spf13/cobra"
)

// Opener returns the application shared by every command of one invocation.
type Opener func(ctx context.Context) (*app.App, error)

type dateFlag struct {
	value string
}

func (d *dateFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.value, "date", "", "Reporting date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
}

func (d *dateFlag) parse() (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, d.value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", d.value)
	}
	return t, nil
}
