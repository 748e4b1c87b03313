package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the funnel over HTTP",
		Long: "Serve the funnel for a local front end. Settings come from\n" +
			"FUNNEL_HTTP_ADDR, FUNNEL_HTTP_READ_TIMEOUT and FUNNEL_HTTP_SHUTDOWN_TIMEOUT;\n" +
			"--addr overrides the address.",
		Args: cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			cfg, err := httpapi.LoadConfig()
			if err != nil {
				return userErr(err)
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "serving on http://%s\n", cfg.Addr)
			return httpapi.New(a.funnel, cfg, a.logger).Run(ctx)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FUNNEL_HTTP_ADDR)")
	return cmd
}
