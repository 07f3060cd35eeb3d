package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/kako-rgb/djnoday/pkg/commands/options"
	"github.com/kako-rgb/djnoday/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	do := &options.DisplayOptions{}

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"list", "ls"},
		Short:   "Get the current requests",
		Example: `
noday get
noday get --table --show-id
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := loadEngine()
			if err != nil {
				return err
			}
			s := get.Get{
				ShowID: io.ShowID,
				Table:  do.Table,
				Engine: e,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddTableArgs(cmd, do)
	base.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
