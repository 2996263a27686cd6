package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PinjariAbdul/smart-task-analyser/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Starts the HTTP API:

  POST /api/tasks/analyze   rank a batch
  POST /api/tasks/suggest   top-N suggestions
  GET  /api/strategies      supported strategies
  GET  /healthz             liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	srv := server.New(e.svc,
		server.WithLogger(e.log.WithName("server")),
		server.WithTelemetry(e.events),
		server.WithBodyLimit(e.cfg.Server.BodyLimit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(e.cfg.Server.Addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
