package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/handlers/snapshot"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	fidcmiddleware "github.com/de-tools/fidc-atlas/pkg/server/middleware"
	"github.com/de-tools/fidc-atlas/pkg/store/duckdb/canonical"
	snapshotstore "github.com/de-tools/fidc-atlas/pkg/store/duckdb/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	logger          zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Catalogue *domain.Catalogue
	Tables    canonical.Store
	Snapshots snapshotstore.Store
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	h := snapshot.NewHandler(config.Dependencies.Catalogue, config.Dependencies.Tables, config.Dependencies.Snapshots)

	router := chi.NewRouter()

	router.Use(fidcmiddleware.Logger(&config.Dependencies.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/sources", h.ListSources)
		r.Get("/sources/{source}/table", h.GetTable)
		r.Get("/snapshots", h.ListSnapshots)
		r.Get("/snapshots/{date}", h.GetSnapshot)
		r.Get("/runs/{date}", h.GetRuns)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	return &WebAPI{
		logger:          config.Dependencies.Logger,
		shutdownTimeout: config.ShutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           ConfigureRouter(config),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
