package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/rhythmdrill/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default from config or PORT)")
	serveCmd.Flags().Int("keep", store.DefaultCapacity, "number of exercises kept in memory")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves exercises and playback sessions",
	Long:  `Serves exercises over HTTP and metronome playback sessions over WebSocket.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Transport.Listen
		if cmd.Flags().Changed("listen") {
			addr, _ = cmd.Flags().GetString("listen")
		}
		keep, _ := cmd.Flags().GetInt("keep")

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		return serve(ctx, addr, NewServer(store.New(keep), logger, cfg.Transport.Systems))
	},
}

func serve(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdown)
}
