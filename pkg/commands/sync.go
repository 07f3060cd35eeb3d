package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/kako-rgb/djnoday/pkg/commands/options"
	"github.com/kako-rgb/djnoday/pkg/runner/sync"
)

func addSync(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push pending requests, pull the latest list and expire old entries",
		Example: `
noday sync
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := loadEngine()
			if err != nil {
				return err
			}
			s := sync.Sync{
				ShowID: io.ShowID,
				Engine: e,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
