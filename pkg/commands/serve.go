package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kako-rgb/djnoday/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	var addr string
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference request server",
		Example: `
noday serve
noday serve --addr :8080 --retention 12h
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := serve.Serve{
				Addr:      addr,
				Retention: retention,
			}
			return s.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "Address to listen on.")
	cmd.Flags().DurationVar(&retention, "retention", 0, "How long requests live before they expire.")

	topLevel.AddCommand(cmd)
}
