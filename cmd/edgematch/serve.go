package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancomm/edgematch-server/internal/app"
	"github.com/vancomm/edgematch-server/internal/config"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE:  runServe,
	}

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Bool("dev", false, "development mode: debug logs, in-memory store without a database")
	cobra.CheckErr(config.BindFlag("APP_PORT", serveCmd.Flags().Lookup("addr")))
	cobra.CheckErr(config.BindFlag("DEVELOPMENT", serveCmd.Flags().Lookup("dev")))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log, migrations).Start(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		return err
	}
	log.Info("server stopped")
	return nil
}
