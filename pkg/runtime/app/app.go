package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/services/config"
	"github.com/de-tools/fidc-atlas/pkg/services/consolidate"
	"github.com/de-tools/fidc-atlas/pkg/services/reshape"
	"github.com/de-tools/fidc-atlas/pkg/services/workflow"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/canonical"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/snapshot"
	"github.com/de-tools/fidc-atlas/pkg/store/source"
	"github.com/rs/zerolog"
)

const profilesFile = ".fidcatlas"

// Options override the settings file for one process.
type Options struct {
	ConfigPath string
	LogLevel   string
	Profile    string
	LogOutput  io.Writer
}

// App holds the wired services shared by the CLI and the web server.
type App struct {
	Settings  *config.Settings
	Catalogue *domain.Catalogue
	Logger    zerolog.Logger
	Tables    canonical.Store
	Snapshots snapshot.Store
	Provider  source.Provider
	Runner    *workflow.Runner

	db *sql.DB
}

func New(ctx context.Context, opts Options) (*App, error) {
	settings, err := config.LoadSettings(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
	if opts.Profile != "" {
		settings.Profile = opts.Profile
	}

	logger, err := newLogger(opts.LogOutput, settings.LogLevel)
	if err != nil {
		return nil, err
	}

	catalogue, err := config.LoadCatalogue(settings.Catalogue)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, settings)
	if err != nil {
		return nil, err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Database})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	a := &App{
		Settings:  settings,
		Catalogue: catalogue,
		Logger:    logger,
		Provider:  provider,
		db:        db,
	}
	if err := a.wire(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug().
		Str("catalogue", settings.Catalogue).
		Str("database", settings.Database).
		Int("sources", len(catalogue.Sources)).
		Msg("application initialised")
	return a, nil
}

func (a *App) wire() error {
	tables, err := canonical.NewStore(a.db)
	if err != nil {
		return fmt.Errorf("failed to create canonical store: %w", err)
	}
	snapshots, err := snapshot.NewStore(a.db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	consolidator, err := consolidate.NewConsolidator(a.Catalogue, a.Logger)
	if err != nil {
		return err
	}

	a.Tables = tables
	a.Snapshots = snapshots
	a.Runner = workflow.NewRunner(
		a.Provider,
		reshape.NewReshaper(a.Catalogue, reshape.DefaultRegistry(), a.Logger),
		consolidator,
		tables,
		snapshots,
		workflow.RunnerConfig{Workers: a.Settings.Workers},
		a.Logger,
	)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newLogger(out io.Writer, level string) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// newProvider resolves the named acquisition profile, falling back to the
// local input directory when none is configured.
func newProvider(ctx context.Context, settings *config.Settings) (source.Provider, error) {
	if settings.Profile == "" {
		return source.NewLocal(settings.InputDir), nil
	}

	path := settings.ProfilesPath
	if path == "" {
		usr, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(usr.HomeDir, profilesFile)
	}

	registry, err := config.NewRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile registry: %w", err)
	}
	profile, err := registry.GetProfile(ctx, settings.Profile)
	if err != nil {
		return nil, err
	}
	return source.NewProvider(ctx, *profile)
}
