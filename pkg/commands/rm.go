package commands

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/kako-rgb/djnoday/pkg/commands/options"
	"github.com/kako-rgb/djnoday/pkg/runner/rm"
)

func addRm(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	ro := &options.RemoveOptions{}

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a request after a hold countdown",
		Example: `
noday rm <request id>
noday rm --id <request id> --now
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				if io.ID == "" {
					return errors.New("requires a request id")
				}
				return nil
			}
			io.ID = strings.Join(args, " ")

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			e, _, err := loadEngine()
			if err != nil {
				return err
			}
			// ctrl-c during the countdown cancels the delete.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := rm.Rm{
				ID:     io.ID,
				Now:    ro.Now,
				ShowID: io.ShowID,
				Engine: e,
			}
			err = s.Do(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return output.HandleError(err)
		},
	}

	options.AddIDArgs(cmd, io)
	options.AddShowIDArgs(cmd, io)
	options.AddNowArgs(cmd, ro)
	base.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
