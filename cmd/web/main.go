package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/fidc-atlas/pkg/runtime/app"
	"github.com/de-tools/fidc-atlas/pkg/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve canonical tables, snapshots and run reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	a, err := app.New(cmd.Context(), app.Options{
		ConfigPath: cfgPath,
		LogLevel:   logLevel,
		LogOutput:  os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise application: %w", err)
	}
	defer a.Close()

	a.Logger.Info().Msgf("Catalogue `%s` loaded with %d sources.", a.Settings.Catalogue, len(a.Catalogue.Sources))

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(a.Settings.Server.Host, a.Settings.Server.Port),
		Dependencies: server.Dependencies{
			Catalogue: a.Catalogue,
			Tables:    a.Tables,
			Snapshots: a.Snapshots,
			Logger:    a.Logger,
		},
	})
	return api.Start()
}
