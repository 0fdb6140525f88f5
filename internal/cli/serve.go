package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/api"
	"github.com/rshade/openfootprint/internal/logging"
	"github.com/rshade/openfootprint/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		noUI  bool
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and web UI",
		Long: `Serves the JSON API under /api, the web UI under /ui and Prometheus metrics at
/metrics. The database is seeded with demo records on start unless storage.seed
is false. The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  openfootprint serve
  openfootprint serve --addr 127.0.0.1:9000 --no-ui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if delay < 0 {
				return fmt.Errorf("--mock-delay must not be negative, got %s", delay)
			}
			return withSession(cmd, func(s *session) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				log := logging.FromContext(ctx)
				serverCfg := s.cfg.Server
				if addr != "" {
					serverCfg.Addr = addr
				}

				opts := []api.Option{api.WithLogger(logging.ComponentLogger(*log, "api"))}
				if !noUI {
					ui, err := web.New(s.svc,
						web.WithDateLayout(s.cfg.Display.DateLayout),
						web.WithLogger(logging.ComponentLogger(*log, "web")),
					)
					if err != nil {
						return err
					}
					opts = append(opts, api.WithUI(ui))
				}

				srv, err := api.New(s.svc, serverCfg, opts...)
				if err != nil {
					return err
				}
				log.Info().Str("addr", serverCfg.Addr).Bool("ui", !noUI).Str("db", s.cfg.Storage.Path).Msg("starting server")
				return srv.ListenAndServe(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "serve only the JSON API")
	cmd.Flags().DurationVar(&delay, "mock-delay", 0, "artificial storage latency such as 200ms (overrides storage.mock_delay)")
	return cmd
}
